package patch

import (
	"fmt"
	"strings"
)

// ValidatePatchOperations checks every op path against patterns. A "*" or "-"
// segment in a pattern matches any single segment. No patterns allows all.
func ValidatePatchOperations(ops []Operation, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	for i, op := range ops {
		if !pathAllowed(op.Path, patterns) {
			return fmt.Errorf("operation %d: %w: %q", i, ErrPathNotAllowed, op.Path)
		}
	}
	return nil
}

func pathAllowed(path string, patterns []string) bool {
	segments := strings.Split(path, "/")
	for _, pattern := range patterns {
		if matchSegments(segments, strings.Split(pattern, "/")) {
			return true
		}
	}
	return false
}

func matchSegments(path, pattern []string) bool {
	if len(path) != len(pattern) {
		return false
	}
	for i, seg := range pattern {
		if seg == "*" || seg == "-" {
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}
