package stdlib

import (
	"testing"
)

func TestLoadCoreManifest(t *testing.T) {
	table, err := New("testdata", nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tok, ok := table["token"]
	if !ok {
		t.Fatal(`missing "token" entry`)
	}

	if tok.Class != "Morphism" {
		t.Errorf("token.Class = %q, want Morphism", tok.Class)
	}

	if tok.Source == nil || tok.Source.String() != "String * String" {
		t.Errorf("token.Source = %v, want String * String", tok.Source)
	}

	advance, ok := table["advance_pos"]
	if !ok {
		t.Fatal(`missing "advance_pos" entry`)
	}

	alias, ok := table["advance"]
	if !ok {
		t.Fatal(`missing alias "advance" for advance_pos`)
	}

	if alias != advance {
		t.Error("alias \"advance\" should point at the same Entry as advance_pos")
	}

	measurement, ok := table["Measurement"]
	if !ok {
		t.Fatal(`missing "Measurement" entry`)
	}

	if measurement.Effect != "Collapse_Wavefunction" {
		t.Errorf("Measurement.Effect = %q, want Collapse_Wavefunction", measurement.Effect)
	}

	circle, ok := table["UnitCircle"]
	if !ok {
		t.Fatal(`missing "UnitCircle" entry`)
	}

	dim, ok := circle.IntProperty("dimension")
	if !ok || dim != 1 {
		t.Errorf("UnitCircle.dimension = %v (ok=%v), want 1", dim, ok)
	}

	fg, ok := circle.StringProperty("fundamental_group")
	if !ok || fg != "Z" {
		t.Errorf("UnitCircle.fundamental_group = %q (ok=%v), want Z", fg, ok)
	}

	orientable, ok := circle.BoolProperty("is_orientable")
	if !ok || !orientable {
		t.Errorf("UnitCircle.is_orientable = %v (ok=%v), want true", orientable, ok)
	}
}

func TestLoadMissingDirectoryIsEmpty(t *testing.T) {
	table, err := New("testdata/does-not-exist", nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil (no matches is not an error)", err)
	}

	if len(table) != 0 {
		t.Errorf("got %d entries, want 0", len(table))
	}
}
