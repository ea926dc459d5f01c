package ir

import (
	"fmt"
	"strconv"

	"github.com/mewmew/float"
)

// LitKind tags which field of Literal is populated.
type LitKind int

const (
	LitInt LitKind = iota
	LitBool
	LitFloat
	LitChar
)

// Literal is the tagged variant of §3: Int(i64), Bool(bool), Float(f64),
// Char(char). Float additionally remembers the exact text it was parsed
// from: LVN's constant-folding table keys float equality off the printed
// literal, not the float64 value, so that two numerically equal floats
// spelled differently never merge (§4.C, §9 Open Questions).
type Literal struct {
	Kind LitKind
	I    int64
	B    bool
	F    float64
	C    rune

	// Text is the literal exactly as printed/parsed. Always populated.
	Text string
}

// NewInt, NewBool, NewFloat, NewChar construct literals and fill in Text.
func NewInt(i int64) Literal {
	return Literal{Kind: LitInt, I: i, Text: strconv.FormatInt(i, 10)}
}

func NewBool(b bool) Literal {
	return Literal{Kind: LitBool, B: b, Text: strconv.FormatBool(b)}
}

func NewFloat(f float64) Literal {
	return Literal{Kind: LitFloat, F: f, Text: strconv.FormatFloat(f, 'g', -1, 64)}
}

func NewChar(c rune) Literal {
	return Literal{Kind: LitChar, C: c, Text: string(c)}
}

// ParseLiteral parses a literal's printed form for the given type. Float
// literals are parsed with mewmew/float's correctly-rounded parser so that
// the stored float64 is bit-exact for the text as written, matching the
// precision LLVM-style textual IRs commit to.
func ParseLiteral(t Type, text string) (Literal, error) {
	switch t.Kind {
	case KInt:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("parsing int literal %q: %w", text, err)
		}
		return Literal{Kind: LitInt, I: v, Text: text}, nil
	case KBool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return Literal{}, fmt.Errorf("parsing bool literal %q: %w", text, err)
		}
		return Literal{Kind: LitBool, B: v, Text: text}, nil
	case KFloat:
		v, err := float.ParseFloat64(text)
		if err != nil {
			return Literal{}, fmt.Errorf("parsing float literal %q: %w", text, err)
		}
		return Literal{Kind: LitFloat, F: v, Text: text}, nil
	case KChar:
		r := []rune(text)
		if len(r) != 1 {
			return Literal{}, fmt.Errorf("char literal %q must be exactly one rune", text)
		}
		return Literal{Kind: LitChar, C: r[0], Text: text}, nil
	default:
		return Literal{}, fmt.Errorf("literal has no printable form for type %s", t)
	}
}

// String renders the literal using the exact text it carries.
func (l Literal) String() string {
	return l.Text
}

// Equal compares literals the way LVN's folding table does: structurally for
// Int/Bool/Char, but textually for Float, per the deliberately conservative
// rule in §9.
func (l Literal) Equal(other Literal) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LitInt:
		return l.I == other.I
	case LitBool:
		return l.B == other.B
	case LitFloat:
		return l.Text == other.Text
	case LitChar:
		return l.C == other.C
	default:
		return false
	}
}
