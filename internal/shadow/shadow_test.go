package shadow

import (
	"testing"

	"github.com/leonard/keyremap/internal/vkey"
)

func TestCanonicalization(t *testing.T) {
	tests := []struct {
		name    string
		actions func(k *Keyboard)
		want    []vkey.Code
	}{
		{
			name: "press left alone",
			actions: func(k *Keyboard) {
				k.Press(vkey.LShift)
			},
			want: []vkey.Code{vkey.LShift},
		},
		{
			name: "press right then left promotes to generic",
			actions: func(k *Keyboard) {
				k.Press(vkey.RShift)
				k.Press(vkey.LShift)
			},
			want: []vkey.Code{vkey.Shift},
		},
		{
			name: "release one side of generic demotes to other side",
			actions: func(k *Keyboard) {
				k.Press(vkey.LShift)
				k.Press(vkey.RShift)
				k.Release(vkey.LShift)
			},
			want: []vkey.Code{vkey.RShift},
		},
		{
			name: "release sided while only that side held clears family",
			actions: func(k *Keyboard) {
				k.Press(vkey.LControl)
				k.Release(vkey.LControl)
			},
			want: nil,
		},
		{
			name: "menu release never touches control (the fixed bug)",
			actions: func(k *Keyboard) {
				k.Press(vkey.LControl)
				k.Press(vkey.LMenu)
				k.Release(vkey.LMenu)
			},
			want: []vkey.Code{vkey.LControl},
		},
		{
			name: "double press of same side while canonicalized is a no-op",
			actions: func(k *Keyboard) {
				k.Press(vkey.LShift)
				k.Press(vkey.RShift)
				k.Press(vkey.LShift)
			},
			want: []vkey.Code{vkey.Shift},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New()
			tt.actions(k)
			got := k.Snapshot()
			if !sameSet(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains_GenericVsSided(t *testing.T) {
	k := New()
	k.Press(vkey.LShift)
	k.Press(vkey.RShift) // canonicalizes to generic Shift

	if !k.Contains(vkey.Shift) {
		t.Error("generic Shift should be satisfied when both sides held")
	}
	if k.Contains(vkey.LShift) {
		t.Error("sided LShift must not be satisfied once canonicalized to generic (spec §9 Open Question 2)")
	}
}

func TestInvariant_NeverBothSidedAndGenericAbsent(t *testing.T) {
	// Invariant 2: whenever both sided keys are held, only the generic is stored.
	k := New()
	k.Press(vkey.LControl)
	k.Press(vkey.RControl)
	if k.has(vkey.LControl) || k.has(vkey.RControl) {
		t.Error("sided keys must not remain once both are held")
	}
	if !k.has(vkey.Control) {
		t.Error("generic must be present once both sides are held")
	}
}

func TestNonModifierPressRelease(t *testing.T) {
	k := New()
	k.Press(vkey.A)
	if !k.Contains(vkey.A) {
		t.Fatal("A should be held after press")
	}
	k.Release(vkey.A)
	if k.Contains(vkey.A) {
		t.Fatal("A should not be held after release")
	}
}

func sameSet(a, b []vkey.Code) bool {
	if len(a) != len(b) {
		return false
	}
	m := make(map[vkey.Code]bool, len(a))
	for _, k := range a {
		m[k] = true
	}
	for _, k := range b {
		if !m[k] {
			return false
		}
	}
	return true
}
