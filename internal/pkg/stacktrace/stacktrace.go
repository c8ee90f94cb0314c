package stacktrace

import "strings"

// InternalPaths returns the "internal/...go:line" frames of a raw stack trace
// as produced by runtime/debug.Stack. Frames outside internal/ are dropped.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "/internal/") {
			continue
		}

		loc, _, _ := strings.Cut(line, " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.Index(loc, "/internal/")
		paths = append(paths, loc[idx+1:])
	}
	return paths
}
