package mapping

import "github.com/leonard/keyremap/internal/vkey"

// StrokeRecord is the wire schema for a Stroke (spec §6 "Persistence
// format"): opaque to the core beyond this shape — internal/persistence
// owns the actual encoding.
type StrokeRecord struct {
	Primary   uint16   `yaml:"primary"`
	Modifiers []uint16 `yaml:"modifiers"`
}

// MappingRecord is the wire schema for a Mapping.
type MappingRecord struct {
	Input  *StrokeRecord `yaml:"input,omitempty"`
	Output *StrokeRecord `yaml:"output,omitempty"`
}

// ToRecord converts a Stroke to its wire form.
func (s Stroke) ToRecord() StrokeRecord {
	mods := s.Modifiers()
	out := make([]uint16, len(mods))
	for i, m := range mods {
		out[i] = uint16(m)
	}
	return StrokeRecord{Primary: uint16(s.primary), Modifiers: out}
}

// FromRecord converts a wire StrokeRecord back into a Stroke.
func FromRecord(r StrokeRecord) Stroke {
	mods := make([]vkey.Code, len(r.Modifiers))
	for i, m := range r.Modifiers {
		mods[i] = vkey.Code(m)
	}
	return NewStroke(vkey.Code(r.Primary), mods)
}

// ToRecord converts a Mapping to its wire form.
func (m Mapping) ToRecord() MappingRecord {
	var rec MappingRecord
	if m.input != nil {
		r := m.input.ToRecord()
		rec.Input = &r
	}
	if m.output != nil {
		r := m.output.ToRecord()
		rec.Output = &r
	}
	return rec
}

// MappingFromRecord converts a wire MappingRecord back into a Mapping.
func MappingFromRecord(r MappingRecord) Mapping {
	var m Mapping
	if r.Input != nil {
		s := FromRecord(*r.Input)
		m.input = &s
	}
	if r.Output != nil {
		s := FromRecord(*r.Output)
		m.output = &s
	}
	return m
}

// RecordsFromTable snapshots t as wire records, in order, for export.
func RecordsFromTable(t *Table) []MappingRecord {
	rows := t.Snapshot()
	out := make([]MappingRecord, len(rows))
	for i, row := range rows {
		out[i] = row.ToRecord()
	}
	return out
}

// TableFromRecords builds mapping rows from wire records, for import.
// Callers pass the result to Table.ReplaceAll.
func TableFromRecords(records []MappingRecord) []Mapping {
	out := make([]Mapping, len(records))
	for i, r := range records {
		out[i] = MappingFromRecord(r)
	}
	return out
}
