package action

import (
	"fmt"
	"strings"
)

// Key identifies a keyboard key on every backend: the Windows virtual-key
// and set-1 scan codes for SendInput, and the robotgo key name elsewhere.
type Key struct {
	Name  string
	VK    uint16
	Scan  uint16
	Robot string
}

var keyTable = map[string]Key{}

func init() {
	letterScan := map[byte]uint16{
		'q': 0x10, 'w': 0x11, 'e': 0x12, 'r': 0x13, 't': 0x14, 'y': 0x15, 'u': 0x16, 'i': 0x17, 'o': 0x18, 'p': 0x19,
		'a': 0x1E, 's': 0x1F, 'd': 0x20, 'f': 0x21, 'g': 0x22, 'h': 0x23, 'j': 0x24, 'k': 0x25, 'l': 0x26,
		'z': 0x2C, 'x': 0x2D, 'c': 0x2E, 'v': 0x2F, 'b': 0x30, 'n': 0x31, 'm': 0x32,
	}
	for c, scan := range letterScan {
		name := string(c)
		keyTable[name] = Key{Name: name, VK: uint16(c - 'a' + 'A'), Scan: scan, Robot: name}
	}
	for d := byte('0'); d <= '9'; d++ {
		scan := uint16(d-'0') + 0x01
		if d == '0' {
			scan = 0x0B
		}
		name := string(d)
		keyTable[name] = Key{Name: name, VK: uint16(d), Scan: scan, Robot: name}
	}
	for i := 1; i <= 12; i++ {
		scan := uint16(0x3A + i)
		switch i {
		case 11:
			scan = 0x57
		case 12:
			scan = 0x58
		}
		name := fmt.Sprintf("f%d", i)
		keyTable[name] = Key{Name: name, VK: uint16(0x6F + i), Scan: scan, Robot: name}
	}
	for _, k := range []Key{
		{Name: "space", VK: 0x20, Scan: 0x39, Robot: "space"},
		{Name: "enter", VK: 0x0D, Scan: 0x1C, Robot: "enter"},
		{Name: "esc", VK: 0x1B, Scan: 0x01, Robot: "esc"},
		{Name: "tab", VK: 0x09, Scan: 0x0F, Robot: "tab"},
		{Name: "alt", VK: 0x12, Scan: 0x38, Robot: "alt"},
		{Name: "ctrl", VK: 0x11, Scan: 0x1D, Robot: "ctrl"},
		{Name: "shift", VK: 0x10, Scan: 0x2A, Robot: "shift"},
	} {
		keyTable[k.Name] = k
	}
	keyTable["escape"] = keyTable["esc"]
	keyTable["return"] = keyTable["enter"]
	keyTable["control"] = keyTable["ctrl"]
}

// LookupKey resolves a configured key name, case-insensitively.
func LookupKey(name string) (Key, error) {
	k, ok := keyTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return k, nil
}
