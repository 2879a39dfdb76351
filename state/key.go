package state

import (
	"fmt"
	"strconv"
	"strings"
)

// Quadrants is the number of hostile-presence flags in a key.
const Quadrants = 16

// Arity is the fixed number of components in every key.
const Arity = 8 + Quadrants

// Key is the discretized state used to index the learner. It is a plain
// comparable value, so it can be used directly as a map key.
type Key struct {
	v        [Arity]int32
	terminal bool
}

// Terminal marks the end of an episode; it is never produced by Encode.
var Terminal = Key{terminal: true}

const terminalText = "terminal"

func (k Key) IsTerminal() bool { return k.terminal }

// Components returns a copy of the key's values.
func (k Key) Components() [Arity]int32 { return k.v }

// String is the canonical text form, e.g. "1,2,0,...". Distinct keys always
// produce distinct strings.
func (k Key) String() string {
	if k.terminal {
		return terminalText
	}
	var b strings.Builder
	for i, c := range k.v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(c), 10))
	}
	return b.String()
}

// ParseKey inverts Key.String.
func ParseKey(s string) (Key, error) {
	if s == terminalText {
		return Terminal, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != Arity {
		return Key{}, fmt.Errorf("parse key: want %d components, got %d", Arity, len(parts))
	}
	var k Key
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return Key{}, fmt.Errorf("parse key component %d: %w", i, err)
		}
		k.v[i] = int32(n)
	}
	return k, nil
}
