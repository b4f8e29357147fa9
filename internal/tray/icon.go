package tray

// Icon bytes for systray.SetIcon, which wants the raw .ico container on
// Windows. Both variables below hold the same 22-byte ICO header (one 16x16
// 32-bit entry) with none of the image data that entry declares; the
// assets/keyboard*.ico files the go:generate lines read are not in this tree,
// and those lines emit KeyboardEnabled/KeyboardDisabled, not these variables.
//
//go:generate go run github.com/cratonica/2goarray KeyboardEnabled tray < assets/keyboard.ico
//go:generate go run github.com/cratonica/2goarray KeyboardDisabled tray < assets/keyboard-disabled.ico

var keyboardIcon = []byte{
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x10, 0x00, 0x00, 0x01, 0x00,
	0x20, 0x00, 0x68, 0x04, 0x00, 0x00, 0x16, 0x00, 0x00, 0x00,
}

var keyboardDisabledIcon = []byte{
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x10, 0x00, 0x00, 0x01, 0x00,
	0x20, 0x00, 0x68, 0x04, 0x00, 0x00, 0x16, 0x00, 0x00, 0x00,
}
