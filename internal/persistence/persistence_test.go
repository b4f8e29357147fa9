package persistence

import (
	"testing"

	"github.com/leonard/keyremap/internal/mapping"
	"github.com/leonard/keyremap/internal/vkey"
)

func TestYAMLCodec_RoundTrip(t *testing.T) {
	tbl := mapping.NewTable()
	tbl.Update(0, mapping.Input, mapping.NewStroke(vkey.A, []vkey.Code{vkey.Shift}))
	tbl.Update(0, mapping.Output, mapping.NewStroke(vkey.B, nil))
	records := mapping.RecordsFromTable(tbl)

	var codec YAMLCodec
	data, err := codec.Encode(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("record count mismatch: got %d want %d", len(got), len(records))
	}

	restored := mapping.NewTable()
	restored.ReplaceAll(mapping.TableFromRecords(got))
	in, ok := restored.At(0).Get(mapping.Input)
	if !ok || in.Primary() != vkey.A || !in.HasModifier(vkey.Shift) {
		t.Fatalf("round-tripped input stroke wrong: %+v", in)
	}
}

func TestYAMLCodec_DecodeMalformed(t *testing.T) {
	var codec YAMLCodec
	if _, err := codec.Decode([]byte("mappings: [")); err == nil {
		t.Fatal("expected an error decoding malformed YAML")
	}
}
