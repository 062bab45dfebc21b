// Package argv locates known tokens inside command-line argument vectors.
package argv

import (
	"strings"

	"github.com/samber/lo"
)

// NotFound is returned by Locate when no element matches.
const NotFound = -1

// MatchMode selects how a search token is compared against vector elements.
type MatchMode int

const (
	// Exact matches an element equal to the token.
	Exact MatchMode = iota
	// Substring matches an element containing the token, e.g. "VM-" matches "VM-17".
	Substring
)

func (m MatchMode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Substring:
		return "substring"
	default:
		return "unknown"
	}
}

// Vector is an ordered argument list. Index 0 is the program name.
type Vector []string

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Locate returns the index of the first element of v matching token under mode,
// or NotFound. The scan starts at index 0, so the program name is eligible.
func Locate(v Vector, token string, mode MatchMode) int {
	_, idx, _ := lo.FindIndexOf(v, func(arg string) bool {
		return matches(arg, token, mode)
	})
	return idx
}

func matches(arg, token string, mode MatchMode) bool {
	if mode == Substring {
		return strings.Contains(arg, token)
	}
	return arg == token
}
