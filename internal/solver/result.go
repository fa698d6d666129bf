package solver

import "math"

// Result is the outcome of one ShortestPaths run.
type Result struct {
	Source string
	// Dist maps every node of the graph to its distance from Source
	// (+Inf when unreached).
	Dist map[string]float64
	// Prev maps each reached node other than Source to its predecessor on a
	// shortest path.
	Prev map[string]string
}

// Distance returns the shortest distance to id, or false if id is unknown or
// unreached.
func (r *Result) Distance(id string) (float64, bool) {
	d, ok := r.Dist[id]
	if !ok || math.IsInf(d, 1) {
		return 0, false
	}
	return d, true
}

// PathTo reconstructs the path from Source to target.
func (r *Result) PathTo(target string) ([]string, bool) {
	if _, ok := r.Distance(target); !ok {
		return nil, false
	}
	return Reconstruct(r.Prev, r.Source, target)
}

// Reconstruct walks prev backwards from target to source and returns the path
// in source→target order. It returns false instead of a partial path when the
// chain ends, or loops, before reaching source. source == target always
// yields the single-element path.
func Reconstruct(prev map[string]string, source, target string) ([]string, bool) {
	if source == target {
		return []string{source}, true
	}
	path := []string{target}
	seen := map[string]bool{target: true}
	for cur := target; cur != source; {
		p, ok := prev[cur]
		if !ok || seen[p] {
			return nil, false
		}
		seen[p] = true
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
