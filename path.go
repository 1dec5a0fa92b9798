package gosfs

import (
	"fmt"
	"strings"

	"github.com/aligator/gosfs/checkpoint"
)

// SplitPath splits p at "/" into its segments. Empty segments are dropped,
// so "/", "" and "//" all name the root directory.
// Paths deeper than MaxDepth and segments longer than MaxNameLen are rejected
// with ErrInvalidPath instead of being truncated.
func SplitPath(p string) ([]string, error) {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s == "" {
			continue
		}
		if err := validName(s); err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}

	if len(segments) > MaxDepth {
		return nil, checkpoint.Wrap(ErrInvalidPath, fmt.Errorf("%q has %d segments, at most %d are allowed", p, len(segments), MaxDepth))
	}
	return segments, nil
}

func validName(name string) error {
	switch {
	case name == "":
		return checkpoint.Wrap(ErrInvalidPath, fmt.Errorf("empty name"))
	case len(name) > MaxNameLen:
		return checkpoint.Wrap(ErrInvalidPath, fmt.Errorf("name %q is longer than %d bytes", name, MaxNameLen))
	case strings.ContainsAny(name, "/\x00"):
		return checkpoint.Wrap(ErrInvalidPath, fmt.Errorf("name %q contains '/' or NUL", name))
	}
	return nil
}
