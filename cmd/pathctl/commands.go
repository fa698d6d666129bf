package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/pathsolver/internal/config"
	"github.com/gyaneshwarpardhi/pathsolver/internal/engine"
	"github.com/gyaneshwarpardhi/pathsolver/internal/ingest"
	"github.com/gyaneshwarpardhi/pathsolver/internal/logging"
)

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:          "pathctl",
		Short:        "Solve shortest paths over a graph file without running the server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug | info | warn | error")

	root.AddCommand(newSolveCmd(&logLevel), newDistancesCmd(&logLevel))
	return root
}

func newSolveCmd(logLevel *string) *cobra.Command {
	var graphPath, from, to, output string
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print the cheapest path between two nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "text" {
				return fmt.Errorf("--output must be json or text, got %q", output)
			}
			eng, stop, err := loadEngine(cmd, graphPath, *logLevel)
			if err != nil {
				return err
			}
			defer stop()

			res, err := eng.FindPath(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if !res.Found() {
				fmt.Fprintf(cmd.OutOrStdout(), "no path from %s to %s\n", from, to)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (distance %g)\n", strings.Join(res.Path, " -> "), *res.TotalDistance)
			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "Graph file (.json, .yaml, .yml)")
	cmd.Flags().StringVar(&from, "from", "", "Source node id")
	cmd.Flags().StringVar(&to, "to", "", "Target node id")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "json | text")
	for _, name := range []string{"graph", "from", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newDistancesCmd(logLevel *string) *cobra.Command {
	var graphPath, from string
	cmd := &cobra.Command{
		Use:   "distances",
		Short: "Print the distance from one node to every node (unreachable = null)",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, stop, err := loadEngine(cmd, graphPath, *logLevel)
			if err != nil {
				return err
			}
			defer stop()

			res, info, err := eng.Distances(cmd.Context(), from)
			if err != nil {
				return err
			}
			out := struct {
				GraphID   string              `json:"graph_id"`
				Source    string              `json:"source"`
				Distances map[string]*float64 `json:"distances"`
			}{GraphID: info.ID, Source: res.Source, Distances: make(map[string]*float64, len(res.Dist))}
			for id, d := range res.Dist {
				if math.IsInf(d, 1) {
					out.Distances[id] = nil
					continue
				}
				d := d
				out.Distances[id] = &d
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "Graph file (.json, .yaml, .yml)")
	cmd.Flags().StringVar(&from, "from", "", "Source node id")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// loadEngine reads the graph file into a fresh engine. The returned func
// releases the engine's workers.
func loadEngine(cmd *cobra.Command, path, level string) (*engine.Engine, func(), error) {
	logger := logging.New(level, "text", cmd.ErrOrStderr())
	p, err := ingest.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	conf := config.Default().Engine
	conf.Workers = 1
	eng := engine.New(ctx, conf, logger)
	stop := func() {
		eng.Shutdown()
		cancel()
	}
	if _, err := eng.LoadGraph(ctx, "file", p.Edges, p.BuildOptions()...); err != nil {
		stop()
		return nil, nil, err
	}
	return eng, stop, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
