// Package shadow tracks the set of virtual keys the interception engine
// believes to be physically held, collapsing left/right modifier pairs into
// their canonical generic form.
package shadow

import "github.com/leonard/keyremap/internal/vkey"

// Keyboard is the engine's held-key set. The zero value is an empty
// keyboard, ready to use.
//
// Representation is a set of VKs rather than a 256-entry bitmap: |set| is
// bounded (a handful of modifiers plus the few other keys held at once), so
// membership is cheap, and a set sidesteps the bitmap's two-way ambiguity
// where one bit position would have to mean either a sided or a generic key.
type Keyboard struct {
	held map[vkey.Code]struct{}
}

// New returns an empty shadow keyboard.
func New() *Keyboard {
	return &Keyboard{held: make(map[vkey.Code]struct{}, 8)}
}

// Press records k as held, applying modifier-family canonicalization.
func (k *Keyboard) Press(key vkey.Code) {
	fam, ok := vkey.FamilyOf(key)
	if !ok {
		k.set(key)
		return
	}
	switch key {
	case fam.Generic:
		k.set(fam.Generic)
	case fam.Left:
		k.pressSide(fam, fam.Left, fam.Right)
	case fam.Right:
		k.pressSide(fam, fam.Right, fam.Left)
	}
}

// pressSide implements one half of the press table in spec §4.A: pressing a
// sided key either starts the sided form (nothing else of the family held),
// or — if the partner side is already held — promotes the pair to the
// generic form.
func (k *Keyboard) pressSide(fam vkey.Family, side, partner vkey.Code) {
	if k.has(partner) {
		k.clear(partner)
		k.clear(side)
		k.set(fam.Generic)
		return
	}
	if k.has(fam.Generic) || k.has(side) {
		return
	}
	k.set(side)
}

// Release records k as no longer held, applying modifier-family
// canonicalization.
//
// This is the one helper both sided keys of every family route through —
// sharing it is what avoids the original implementation's bug (spec §9,
// Open Question 1) where the Menu family's release branches ended up
// mutating Control's state because each family had been hand-written
// separately instead of sharing one symmetric table.
func (k *Keyboard) Release(key vkey.Code) {
	fam, ok := vkey.FamilyOf(key)
	if !ok {
		k.clear(key)
		return
	}
	switch key {
	case fam.Generic:
		k.clear(fam.Generic)
		k.clear(fam.Left)
		k.clear(fam.Right)
	case fam.Left:
		k.releaseSide(fam, fam.Left, fam.Right)
	case fam.Right:
		k.releaseSide(fam, fam.Right, fam.Left)
	}
}

// releaseSide implements one half of the release table in spec §4.A:
// releasing a sided key while the pair was canonicalized to generic demotes
// the shadow to the other side; releasing it while only it was held clears
// the family entirely; releasing it while only the other side was held is a
// no-op (OS would never send this, but it must not corrupt state if it did).
func (k *Keyboard) releaseSide(fam vkey.Family, side, partner vkey.Code) {
	switch {
	case k.has(fam.Generic):
		k.clear(fam.Generic)
		k.set(partner)
	case k.has(side):
		k.clear(side)
	}
}

// Contains reports whether key is held. For a generic modifier query it
// reports true if the generic form or either sided variant is present; for a
// sided query it reports true only for the exact sided VK (spec §9, Open
// Question 2 — this is what makes a mapping that demands specifically
// LShift not fire while the shadow has canonicalized both shifts to Shift).
func (k *Keyboard) Contains(key vkey.Code) bool {
	fam, ok := vkey.FamilyOf(key)
	if !ok {
		return k.has(key)
	}
	if key == fam.Generic {
		return k.has(fam.Generic) || k.has(fam.Left) || k.has(fam.Right)
	}
	return k.has(key)
}

// Snapshot returns an immutable copy of the held set, suitable for
// attaching to a captured Stroke.
func (k *Keyboard) Snapshot() []vkey.Code {
	out := make([]vkey.Code, 0, len(k.held))
	for key := range k.held {
		out = append(out, key)
	}
	return out
}

func (k *Keyboard) has(key vkey.Code) bool {
	_, ok := k.held[key]
	return ok
}

func (k *Keyboard) set(key vkey.Code) {
	if k.held == nil {
		k.held = make(map[vkey.Code]struct{}, 8)
	}
	k.held[key] = struct{}{}
}

func (k *Keyboard) clear(key vkey.Code) {
	delete(k.held, key)
}
