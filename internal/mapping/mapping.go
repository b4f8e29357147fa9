// Package mapping defines Strokes, Mappings and the ordered Mapping Table
// (spec §3, §4.B).
package mapping

import "github.com/leonard/keyremap/internal/vkey"

// Stroke is a primary key plus the set of modifiers that must be held
// concurrently with it. Strokes are immutable once captured; the zero value
// is not a valid stroke (use NewStroke).
type Stroke struct {
	primary   vkey.Code
	modifiers map[vkey.Code]struct{}
}

// NewStroke builds a Stroke from a primary key and the modifier set held at
// capture time. primary is removed from modifiers if present, maintaining
// the invariant primary ∉ modifiers.
func NewStroke(primary vkey.Code, modifiers []vkey.Code) Stroke {
	set := make(map[vkey.Code]struct{}, len(modifiers))
	for _, m := range modifiers {
		if m == primary {
			continue
		}
		set[m] = struct{}{}
	}
	return Stroke{primary: primary, modifiers: set}
}

// Primary returns the stroke's triggering key.
func (s Stroke) Primary() vkey.Code { return s.primary }

// Modifiers returns the stroke's required modifier set, as a slice.
func (s Stroke) Modifiers() []vkey.Code {
	out := make([]vkey.Code, 0, len(s.modifiers))
	for m := range s.modifiers {
		out = append(out, m)
	}
	return out
}

// HasModifier reports whether m is part of the stroke's modifier set.
func (s Stroke) HasModifier(m vkey.Code) bool {
	_, ok := s.modifiers[m]
	return ok
}

// heldChecker is satisfied by *shadow.Keyboard; declared locally to avoid
// mapping depending on shadow's package (engine composes both — keeping this
// package a leaf lets Table.Lookup be tested with a bare map).
type heldChecker interface {
	Contains(key vkey.Code) bool
}

// matchesModifiers reports whether every modifier in s is held per shadow, honoring
// generic-vs-sided semantics (spec §4.A/§9).
func (s Stroke) matchesModifiers(shadow heldChecker) bool {
	for m := range s.modifiers {
		if !shadow.Contains(m) {
			return false
		}
	}
	return true
}

// Side identifies which half of a Mapping an operation targets.
type Side int

const (
	Input Side = iota
	Output
)

// Mapping is a record pairing an input stroke with an output stroke. Either
// side may be absent during editing.
type Mapping struct {
	input  *Stroke
	output *Stroke
}

// IsEmpty reports whether both sides are absent.
func (m Mapping) IsEmpty() bool {
	return m.input == nil && m.output == nil
}

// IsComplete reports whether both sides are present.
func (m Mapping) IsComplete() bool {
	return m.input != nil && m.output != nil
}

// Get returns the stroke on the given side, or ok=false if absent.
func (m Mapping) Get(side Side) (Stroke, bool) {
	var s *Stroke
	if side == Input {
		s = m.input
	} else {
		s = m.output
	}
	if s == nil {
		return Stroke{}, false
	}
	return *s, true
}

// Set assigns side to a value-copy of stroke.
func (m *Mapping) Set(side Side, stroke Stroke) {
	cp := stroke
	if side == Input {
		m.input = &cp
	} else {
		m.output = &cp
	}
}

// Clear removes the stroke on the given side.
func (m *Mapping) Clear(side Side) {
	if side == Input {
		m.input = nil
	} else {
		m.output = nil
	}
}

// status classifies an incoming primary key against this mapping's input
// side. Returns (matched=false, ...) if this mapping isn't a match at all;
// (matched=true, hasOutput=false) for an input-only mapping (suppress with
// no substitution); (matched=true, hasOutput=true, out) otherwise.
func (m Mapping) status(shadow heldChecker, primary vkey.Code) (matched, hasOutput bool, out Stroke) {
	if m.input == nil || m.input.primary != primary {
		return false, false, Stroke{}
	}
	if !m.input.matchesModifiers(shadow) {
		return false, false, Stroke{}
	}
	if m.output == nil {
		return true, false, Stroke{}
	}
	return true, true, *m.output
}

// Table is the ordered collection of Mappings (spec §4.B). Order determines
// match priority: Lookup returns the first matching mapping. A Table always
// holds at least one trailing empty mapping as an editing slot.
type Table struct {
	rows []Mapping
}

// NewTable returns a Table with a single trailing empty mapping, matching
// process-start state (spec §3 "Mapping Table").
func NewTable() *Table {
	return &Table{rows: []Mapping{{}}}
}

// Len returns the number of rows, including the trailing empty one.
func (t *Table) Len() int { return len(t.rows) }

// At returns a copy of the row at idx. The zero Mapping is returned if idx
// is out of range.
func (t *Table) At(idx int) Mapping {
	if idx < 0 || idx >= len(t.rows) {
		return Mapping{}
	}
	return t.rows[idx]
}

// AppendEmpty appends a new empty editing slot.
func (t *Table) AppendEmpty() {
	t.rows = append(t.rows, Mapping{})
}

// Update sets side of the row at idx to stroke. Out-of-range idx is a no-op.
func (t *Table) Update(idx int, side Side, stroke Stroke) {
	if idx < 0 || idx >= len(t.rows) {
		return
	}
	t.rows[idx].Set(side, stroke)
}

// ClearSide clears side of the row at idx. Out-of-range idx is a no-op.
func (t *Table) ClearSide(idx int, side Side) {
	if idx < 0 || idx >= len(t.rows) {
		return
	}
	t.rows[idx].Clear(side)
}

// Delete removes the row at idx. Out-of-range idx is logged by the caller
// (spec §4.C "Failure semantics" — a defensive log, not an error surface)
// and is a silent no-op here.
func (t *Table) Delete(idx int) bool {
	if idx < 0 || idx >= len(t.rows) {
		return false
	}
	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	return true
}

// EnsureTrailingEmpty re-establishes the trailing-empty invariant: after any
// mutation that could violate it, append an empty row if the last one isn't
// empty or the table is empty (spec §4.B, Testable Property 1).
func (t *Table) EnsureTrailingEmpty() {
	if len(t.rows) == 0 || !t.rows[len(t.rows)-1].IsEmpty() {
		t.AppendEmpty()
	}
}

// ReplaceAll replaces the table contents wholesale (used by import), then
// re-establishes the trailing-empty invariant.
func (t *Table) ReplaceAll(rows []Mapping) {
	t.rows = append([]Mapping(nil), rows...)
	t.EnsureTrailingEmpty()
}

// Snapshot returns a copy of all rows (used by export and UI refresh).
func (t *Table) Snapshot() []Mapping {
	return append([]Mapping(nil), t.rows...)
}

// LookupResult is the outcome of a Lookup call.
type LookupResult struct {
	Matched   bool
	HasOutput bool
	Output    Stroke
}

// Lookup returns the first mapping whose input stroke matches primary under
// shadow (spec §4.B "Lookup"). Result.Matched is false for no match;
// Matched && !HasOutput means an input-only mapping (suppress without
// substitution); Matched && HasOutput carries the output stroke to
// synthesize.
func (t *Table) Lookup(shadow heldChecker, primary vkey.Code) LookupResult {
	for _, row := range t.rows {
		if matched, hasOutput, out := row.status(shadow, primary); matched {
			return LookupResult{Matched: true, HasOutput: hasOutput, Output: out}
		}
	}
	return LookupResult{}
}
