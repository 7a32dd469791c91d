package scanner

import (
	"cmp"
	"net"
	"slices"
	"strconv"
)

// Target is a single address/port pair proposed for probing.
type Target struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// String renders the target as host:port.
func (t Target) String() string {
	return net.JoinHostPort(t.Address, strconv.Itoa(t.Port))
}

// BaseURL returns the plain-HTTP root of the target.
func (t Target) BaseURL() string {
	return "http://" + t.String()
}

// URL joins path onto the target's base URL.
func (t Target) URL(path string) string {
	return t.BaseURL() + path
}

// Compare orders targets by address (lexicographically), then port.
func (t Target) Compare(other Target) int {
	if c := cmp.Compare(t.Address, other.Address); c != 0 {
		return c
	}
	return cmp.Compare(t.Port, other.Port)
}

// SortUnique returns a sorted copy of targets with duplicates removed.
// Applying it to its own output is a no-op.
func SortUnique(targets []Target) []Target {
	out := slices.Clone(targets)
	slices.SortFunc(out, Target.Compare)
	return slices.Compact(out)
}
