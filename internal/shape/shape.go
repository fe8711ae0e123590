// Package shape generates the particle distributions for each displayable shape.
package shape

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownShape is returned when a shape name does not match any Type.
var ErrUnknownShape = errors.New("unknown shape")

// Type identifies one of the predefined particle shapes.
type Type int

const (
	Text Type = iota
	Heart
	Fireworks
	Rabbit
	Snow
	Rose
)

// Order is the cycle order used when advancing to the next shape.
var Order = []Type{Text, Heart, Snow, Fireworks, Rabbit, Rose}

var names = map[Type]string{
	Text:      "TEXT",
	Heart:     "HEART",
	Fireworks: "FIREWORKS",
	Rabbit:    "RABBIT",
	Snow:      "SNOW",
	Rose:      "ROSE",
}

// labels are the menu captions shown by the viewer and the tray.
var labels = map[Type]string{
	Text:      "世界",
	Heart:     "Heart",
	Fireworks: "Firework",
	Rabbit:    "Rabbit",
	Snow:      "Snow",
	Rose:      "Rose",
}

// String returns the upper-case identifier, e.g. "HEART".
func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Label returns the human-readable menu caption.
func (t Type) Label() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return t.String()
}

// Valid reports whether t is one of the predefined shapes.
func (t Type) Valid() bool {
	_, ok := names[t]
	return ok
}

// Next returns the shape that follows t in Order, wrapping from the last back to the first.
// An invalid t yields the first shape.
func (t Type) Next() Type {
	for i, s := range Order {
		if s == t {
			return Order[(i+1)%len(Order)]
		}
	}
	return Order[0]
}

// Parse converts a case-insensitive shape name to a Type.
func Parse(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t, n := range names {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
