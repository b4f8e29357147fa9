// Package vkey defines Windows virtual-key codes and the sided/generic
// modifier families the shadow keyboard model canonicalizes over.
package vkey

import "fmt"

// Code is a Windows virtual-key identifier (the vkCode field of
// KBDLLHOOKSTRUCT, and the wVk field of KEYBDINPUT).
type Code uint16

// Modifier families. Each sided pair collapses into its generic form in the
// shadow keyboard model (see internal/shadow).
const (
	Shift   Code = 0x10
	Control Code = 0x11
	Menu    Code = 0x12 // Alt

	LShift   Code = 0xA0
	RShift   Code = 0xA1
	LControl Code = 0xA2
	RControl Code = 0xA3
	LMenu    Code = 0xA4
	RMenu    Code = 0xA5
)

const (
	Back      Code = 0x08
	Tab       Code = 0x09
	Return    Code = 0x0D
	Capital   Code = 0x14 // CapsLock
	Escape    Code = 0x1B
	Space     Code = 0x20
	Prior     Code = 0x21
	Next      Code = 0x22
	End       Code = 0x23
	Home      Code = 0x24
	Left      Code = 0x25
	Up        Code = 0x26
	Right     Code = 0x27
	Down      Code = 0x28
	Delete    Code = 0x2E
	LWin      Code = 0x5B
	RWin      Code = 0x5C
)

const (
	Key0 Code = 0x30 + iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
)

const (
	A Code = 0x41 + iota
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
)

const (
	F1 Code = 0x70 + iota
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
)

const (
	Oem1      Code = 0xBA // ;:
	OemPlus   Code = 0xBB // =+
	OemComma  Code = 0xBC // ,<
	OemMinus  Code = 0xBD // -_
	OemPeriod Code = 0xBE // .>
	Oem2      Code = 0xBF // /?
	Oem3      Code = 0xC0 // `~
	Oem4      Code = 0xDB // [{
	Oem5      Code = 0xDC // \|
	Oem6      Code = 0xDD // ]}
	Oem7      Code = 0xDE // '"
)

// Family describes one generic/sided modifier triple.
type Family struct {
	Generic Code
	Left    Code
	Right   Code
}

// Families lists the three modifier families the shadow model canonicalizes.
// Order doesn't matter; all three are always checked.
var Families = [3]Family{
	{Generic: Shift, Left: LShift, Right: RShift},
	{Generic: Control, Left: LControl, Right: RControl},
	{Generic: Menu, Left: LMenu, Right: RMenu},
}

// FamilyOf returns the Family a code belongs to (generic or sided), and
// whether it belongs to any.
func FamilyOf(k Code) (Family, bool) {
	for _, f := range Families {
		if k == f.Generic || k == f.Left || k == f.Right {
			return f, true
		}
	}
	return Family{}, false
}

// IsModifier reports whether k is any generic or sided modifier key.
func IsModifier(k Code) bool {
	_, ok := FamilyOf(k)
	return ok
}

// names maps a handful of keys to lowercase debug names. Not exhaustive —
// it exists for log lines and the console front end, not for round-tripping.
var names = map[Code]string{
	Shift: "shift", Control: "control", Menu: "menu",
	LShift: "lshift", RShift: "rshift",
	LControl: "lcontrol", RControl: "rcontrol",
	LMenu: "lmenu", RMenu: "rmenu",
	Back: "backspace", Tab: "tab", Return: "enter", Capital: "capslock",
	Escape: "escape", Space: "space", Delete: "delete",
	LWin: "lwin", RWin: "rwin",
	Key0: "0", Key1: "1", Key2: "2", Key3: "3", Key4: "4",
	Key5: "5", Key6: "6", Key7: "7", Key8: "8", Key9: "9",
	A: "a", B: "b", C: "c", D: "d", E: "e", F: "f", G: "g", H: "h",
	I: "i", J: "j", K: "k", L: "l", M: "m", N: "n", O: "o", P: "p",
	Q: "q", R: "r", S: "s", T: "t", U: "u", V: "v", W: "w", X: "x",
	Y: "y", Z: "z",
}

// Name returns a debug name for k, or a hex fallback if unknown.
func Name(k Code) string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("vk_%#02x", uint16(k))
}
