// Package nametag composes stable, human-readable names for LP variables
// and constraints, per spec §4.2. Names are optional (only built when
// named-problems output is requested) and are stable across runs for the
// same inputs so two exports of the same week can be diffed.
package nametag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tagger appends composed names to a growing name vector. It holds no
// solve-relevant state; it exists purely to keep the name-composition rule
// in one place and to avoid allocating a name string when naming is
// disabled.
type Tagger struct {
	enabled bool
	names   []string
	runID   string // optional correlation id; not part of composed names
}

// New creates a Tagger. When enabled is false, Append is a cheap no-op that
// still advances the vector with empty strings so names.len stays aligned
// with the column/row count (spec §8 "Name/index alignment").
func New(enabled bool) *Tagger {
	return &Tagger{enabled: enabled}
}

// WithRunID stores a correlation id on the tagger and returns it for
// chaining. Name and Append do not include the id in the names they
// compose.
func (t *Tagger) WithRunID(id uuid.UUID) *Tagger {
	t.runID = id.String()
	return t
}

// Name composes "<kind>::<area>::<cluster>::<reserve>::<year>-<week>-<hourInYear>".
// Empty segments are carried through as "" so the shape stays predictable
// for diffing tools; callers pass "" for segments that don't apply (e.g. no
// cluster for an area-level balance constraint).
func Name(kind, area, cluster, reserve string, year, week, hourInYear int) string {
	return fmt.Sprintf("%s::%s::%s::%s::%d-%d-%d", kind, area, cluster, reserve, year, week, hourInYear)
}

// Append composes the name (unless naming is disabled) and appends it at
// index idx, growing the backing slice as needed so it always holds
// exactly idx+1 entries after the call — matching the columns/rows it
// tracks one-for-one.
func (t *Tagger) Append(idx int, kind, area, cluster, reserve string, year, week, hourInYear int) {
	for len(t.names) <= idx {
		t.names = append(t.names, "")
	}
	if !t.enabled {
		return
	}
	t.names[idx] = Name(kind, area, cluster, reserve, year, week, hourInYear)
}

// Names returns the accumulated name vector.
func (t *Tagger) Names() []string {
	return t.names
}

// Reset clears the tagger for the next week, keeping its enabled flag.
func (t *Tagger) Reset() {
	t.names = t.names[:0]
}

// UniqueWithinKind reports whether every non-empty name sharing the given
// kind prefix is unique — the "each name is unique within its kind"
// property from spec §8.
func (t *Tagger) UniqueWithinKind(kind string) bool {
	prefix := kind + "::"
	seen := make(map[string]struct{})
	for _, n := range t.names {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		if _, dup := seen[n]; dup {
			return false
		}
		seen[n] = struct{}{}
	}
	return true
}
