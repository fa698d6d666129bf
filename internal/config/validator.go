package config

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks the config for out-of-range values and unknown enum
// settings, reporting every problem at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	for name, v := range map[string]int{
		"server.read_timeout_ms":  cfg.Server.ReadTimeoutMs,
		"server.write_timeout_ms": cfg.Server.WriteTimeoutMs,
		"server.idle_timeout_ms":  cfg.Server.IdleTimeoutMs,
		"engine.workers":          cfg.Engine.Workers,
		"engine.queue_depth":      cfg.Engine.QueueDepth,
		"engine.query_timeout_ms": cfg.Engine.QueryTimeoutMs,
		"engine.max_batch":        cfg.Engine.MaxBatch,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative (got %d)", name, v))
		}
	}
	if cfg.Graph.MaxUploadBytes < 0 {
		errs = append(errs, fmt.Sprintf("graph.max_upload_bytes must not be negative (got %d)", cfg.Graph.MaxUploadBytes))
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not one of text, json", cfg.Log.Format))
	}
	if cfg.Graph.Watch && cfg.Graph.Path == "" {
		errs = append(errs, "graph.watch requires graph.path")
	}

	if len(errs) > 0 {
		// Map iteration above is unordered; keep messages stable.
		sort.Strings(errs)
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
