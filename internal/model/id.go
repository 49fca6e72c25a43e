package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Family is the object-id family prefix: one letter per object type.
type Family byte

const (
	FamilyArea    Family = 'A'
	FamilyGoal    Family = 'G'
	FamilyProject Family = 'P'
	FamilyTask    Family = 'T'
)

// Valid reports whether f is one of the four issued families.
func (f Family) Valid() bool {
	switch f {
	case FamilyArea, FamilyGoal, FamilyProject, FamilyTask:
		return true
	}
	return false
}

// Type returns the object type that owns this family.
func (f Family) Type() ObjectType {
	switch f {
	case FamilyArea:
		return TypeArea
	case FamilyGoal:
		return TypeGoal
	case FamilyProject:
		return TypeProject
	case FamilyTask:
		return TypeTask
	}
	return ""
}

// ID is a stable object identifier: a family prefix, a top-level sequence
// number, and optional dot-separated child sequence numbers (e.g. T4.1.2).
// Once issued an ID is never reused or reassigned.
type ID struct {
	Family Family
	Parts  []int
}

// ParseID parses an identifier like "P3", "T4.1.2" or "A1".
func ParseID(s string) (ID, error) {
	if len(s) < 2 {
		return ID{}, fmt.Errorf("invalid object id %q", s)
	}
	family := Family(s[0])
	if !family.Valid() {
		return ID{}, fmt.Errorf("invalid object id %q: unknown family %q", s, s[0])
	}

	segments := strings.Split(s[1:], ".")
	parts := make([]int, 0, len(segments))
	for _, seg := range segments {
		n, err := strconv.Atoi(seg)
		if err != nil || n <= 0 {
			return ID{}, fmt.Errorf("invalid object id %q: bad sequence %q", s, seg)
		}
		parts = append(parts, n)
	}
	return ID{Family: family, Parts: parts}, nil
}

// MustParseID parses an identifier or panics. For tests and literals.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return len(id.Parts) == 0 }

func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteByte(byte(id.Family))
	for i, p := range id.Parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(p))
	}
	return b.String()
}

// Child returns the id extended with the given sibling sequence number.
func (id ID) Child(seq int) ID {
	parts := make([]int, len(id.Parts), len(id.Parts)+1)
	copy(parts, id.Parts)
	return ID{Family: id.Family, Parts: append(parts, seq)}
}

// Parent returns the structurally enclosing id, or the zero ID for a
// top-level identifier.
func (id ID) Parent() ID {
	if len(id.Parts) <= 1 {
		return ID{}
	}
	parts := make([]int, len(id.Parts)-1)
	copy(parts, id.Parts)
	return ID{Family: id.Family, Parts: parts}
}

// Equal reports whether two ids are the same identifier.
func (id ID) Equal(other ID) bool {
	if id.Family != other.Family || len(id.Parts) != len(other.Parts) {
		return false
	}
	for i, p := range id.Parts {
		if other.Parts[i] != p {
			return false
		}
	}
	return true
}

// IsDescendantOf reports whether id sits strictly below ancestor in the
// dotted-sequence hierarchy. Only ids of the same family can be related.
func (id ID) IsDescendantOf(ancestor ID) bool {
	if id.Family != ancestor.Family || len(id.Parts) <= len(ancestor.Parts) {
		return false
	}
	for i, p := range ancestor.Parts {
		if id.Parts[i] != p {
			return false
		}
	}
	return true
}

// Less orders ids family-first, then numerically segment by segment.
// Used for deterministic rendering and query output.
func (id ID) Less(other ID) bool {
	if id.Family != other.Family {
		return id.Family < other.Family
	}
	for i := 0; i < len(id.Parts) && i < len(other.Parts); i++ {
		if id.Parts[i] != other.Parts[i] {
			return id.Parts[i] < other.Parts[i]
		}
	}
	return len(id.Parts) < len(other.Parts)
}
