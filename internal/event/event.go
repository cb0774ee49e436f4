package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is a bitmask describing what happened to an item. A task's interest
// mask uses the same bits.
type Kind uint16

const (
	Added Kind = 1 << iota
	Removed
	Dirty
	Flushed
	Modified
	Exists
	Moved
	Attrib

	// KindAll is every kind the engine knows about. Masks with bits outside
	// it are rejected.
	KindAll = Added | Removed | Dirty | Flushed | Modified | Exists | Moved | Attrib
)

var kindNames = [...]string{
	"Added",
	"Removed",
	"Dirty",
	"Flushed",
	"Modified",
	"Exists",
	"Moved",
	"Attrib",
}

func (k Kind) String() string {
	if k == 0 {
		return "None"
	}
	var parts []string
	for i, name := range kindNames {
		if k&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if rest := k &^ KindAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint16(rest)))
	}
	return strings.Join(parts, "|")
}

// Valid reports whether k is non-empty and uses only known bits.
func (k Kind) Valid() bool {
	return k != 0 && k&^KindAll == 0
}

// ParseKind parses a mask written either as a hex number ("0x13" or "13")
// or as kind names joined by "," or "|" ("added,modified").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty event mask")
	}

	hex := strings.TrimPrefix(strings.ToLower(s), "0x")
	if n, err := strconv.ParseUint(hex, 16, 16); err == nil {
		return Kind(n), nil
	}

	var k Kind
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		name := strings.TrimSpace(field)
		if strings.EqualFold(name, "all") {
			k |= KindAll
			continue
		}
		found := false
		for i, known := range kindNames {
			if strings.EqualFold(name, known) {
				k |= 1 << i
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown event kind %q", name)
		}
	}
	return k, nil
}

// UUID identifies a changed item: the namespace entry number in the low 32
// bits and a generation counter in the high 32 bits.
type UUID uint64

// NewUUID packs an entry number and generation.
func NewUUID(entry, generation uint32) UUID {
	return UUID(uint64(generation)<<32 | uint64(entry))
}

// Entry returns the namespace entry number (e.g. inode number).
func (u UUID) Entry() uint32 { return uint32(u) } //nolint:gosec // G115: low 32 bits by layout

// Generation returns the entry's generation counter.
func (u UUID) Generation() uint32 { return uint32(u >> 32) }

func (u UUID) String() string {
	return fmt.Sprintf("%016x", uint64(u))
}

// ChangeEvent is one change notification. Offset is a byte offset; once
// queued for a task it is aligned down to that task's granularity.
type ChangeEvent struct {
	Path   string // producer side only, used for scope filtering
	UUID   UUID
	Offset uint64
	State  Kind
}
