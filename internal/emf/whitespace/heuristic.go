// Package whitespace guesses the separator between two decoded text
// fragments from the non-text records that were enumerated between them.
package whitespace

import (
	"sort"

	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

// Decision is the separator chosen before a text fragment
type Decision int

const (
	None Decision = iota
	LineBreak
	Space
)

// String returns the decision name
func (d Decision) String() string {
	switch d {
	case LineBreak:
		return "line_break"
	case Space:
		return "space"
	default:
		return "none"
	}
}

// Text returns the characters to insert for the decision
func (d Decision) Text() string {
	switch d {
	case LineBreak:
		return "\n"
	case Space:
		return " "
	default:
		return ""
	}
}

// TagSet is an unordered set of record tags. A nil or empty set disables the
// rule it configures.
type TagSet map[record.Tag]struct{}

// NewTagSet builds a set from tags
func NewTagSet(tags ...record.Tag) TagSet {
	if len(tags) == 0 {
		return nil
	}
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// ParseTagSet builds a set from catalog names
func ParseTagSet(names []string) (TagSet, error) {
	tags, err := record.ParseTags(names)
	if err != nil {
		return nil, err
	}
	return NewTagSet(tags...), nil
}

// Contains reports whether tag is in the set
func (s TagSet) Contains(tag record.Tag) bool {
	_, ok := s[tag]
	return ok
}

// Tags returns the members sorted by value
func (s TagSet) Tags() []record.Tag {
	tags := make([]record.Tag, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Config holds the four candidate sets. Rules are checked in field order and
// the first match wins.
type Config struct {
	// LineBreakAny: any member seen since the last fragment inserts "\n"
	LineBreakAny TagSet
	// LineBreakAll: every member seen since the last fragment inserts "\n"
	LineBreakAll TagSet
	// SpaceAny: any member seen since the last fragment inserts " "
	SpaceAny TagSet
	// SpaceAll: every member seen since the last fragment inserts " "
	SpaceAll TagSet
}

// IsZero reports whether no rule is configured
func (c Config) IsZero() bool {
	return len(c.LineBreakAny) == 0 && len(c.LineBreakAll) == 0 &&
		len(c.SpaceAny) == 0 && len(c.SpaceAll) == 0
}

// Decide picks the separator for the given pending tags
func Decide(pending []record.Tag, cfg Config) Decision {
	switch {
	case intersects(pending, cfg.LineBreakAny):
		return LineBreak
	case subsetOf(cfg.LineBreakAll, pending):
		return LineBreak
	case intersects(pending, cfg.SpaceAny):
		return Space
	case subsetOf(cfg.SpaceAll, pending):
		return Space
	default:
		return None
	}
}

// intersects is false for an empty set
func intersects(pending []record.Tag, set TagSet) bool {
	if len(set) == 0 {
		return false
	}
	for _, tag := range pending {
		if set.Contains(tag) {
			return true
		}
	}
	return false
}

// subsetOf is false for an empty set
func subsetOf(set TagSet, pending []record.Tag) bool {
	if len(set) == 0 {
		return false
	}
	seen := make(map[record.Tag]struct{}, len(pending))
	for _, tag := range pending {
		seen[tag] = struct{}{}
	}
	for tag := range set {
		if _, ok := seen[tag]; !ok {
			return false
		}
	}
	return true
}

// Heuristic accumulates the tags seen since the last text fragment
type Heuristic struct {
	config  Config
	pending []record.Tag
}

// New creates a heuristic with the given configuration
func New(cfg Config) *Heuristic {
	return &Heuristic{config: cfg}
}

// Config returns the configured candidate sets
func (h *Heuristic) Config() Config {
	return h.config
}

// Observe records a non-text tag
func (h *Heuristic) Observe(tag record.Tag) {
	h.pending = append(h.pending, tag)
}

// Next decides the separator for the upcoming fragment and clears the
// pending tags whatever the outcome.
func (h *Heuristic) Next() Decision {
	d := Decide(h.pending, h.config)
	h.pending = h.pending[:0]
	return d
}

// Pending returns a copy of the tags seen since the last decision
func (h *Heuristic) Pending() []record.Tag {
	out := make([]record.Tag, len(h.pending))
	copy(out, h.pending)
	return out
}

// Reset clears the pending tags
func (h *Heuristic) Reset() {
	h.pending = nil
}
