// Package literal implements the typed literal values of the core
// language (Bool/Numeral/Rational/bitvector/String/Symbol) and the
// arithmetic/string/bitvector operator back-end the evaluator dispatches
// non-list EVAL_* operators to.
package literal

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/alfc-run/alfc/internal/kind"
)

// Tag is the literal's own sort, independent of which surface Kind
// (HEXADECIMAL vs BINARY) it was spelled with.
type Tag int

const (
	INVALID Tag = iota
	BOOL
	NUMERAL
	RATIONAL
	BITVEC
	STRING
	SYMBOL
)

// Literal is a typed constant value. Exactly one payload field is
// meaningful, selected by Tag.
type Literal struct {
	Tag   Tag
	Bool  bool
	Int   *big.Int // NUMERAL
	Rat   *big.Rat // RATIONAL (surface kind DECIMAL)
	Bits  []bool   // BITVEC, most-significant bit first
	Str   string   // STRING or SYMBOL spelling
	Radix int      // BITVEC only: 2 or 16, controls re-spelling
}

// ToKind returns the surface Kind a freshly computed literal should be
// packaged as when the evaluator rebuilds an expression node from it.
func (l Literal) ToKind() kind.Kind {
	switch l.Tag {
	case BOOL:
		return kind.BOOLEAN
	case NUMERAL:
		return kind.NUMERAL
	case RATIONAL:
		return kind.DECIMAL
	case BITVEC:
		if l.Radix == 16 {
			return kind.HEXADECIMAL
		}
		return kind.BINARY
	case STRING:
		return kind.STRING
	case SYMBOL:
		return kind.STRING
	}
	return kind.NONE
}

// Spelling renders the literal back to the textual form mkLiteral
// expects, so evaluation results round-trip through the factory exactly
// like parsed literals do.
func (l Literal) Spelling() string {
	switch l.Tag {
	case BOOL:
		if l.Bool {
			return "true"
		}
		return "false"
	case NUMERAL:
		return l.Int.String()
	case RATIONAL:
		return l.Rat.RatString()
	case BITVEC:
		return bitsToSpelling(l.Bits, l.Radix)
	case STRING, SYMBOL:
		return l.Str
	}
	return ""
}

// Parse builds a Literal from a surface Kind and its spelling, the
// inverse of Spelling/ToKind. This is what the factory's mkLiteral calls
// when registering a freshly constructed literal leaf.
func Parse(k kind.Kind, spelling string) (Literal, error) {
	switch k {
	case kind.BOOLEAN:
		switch spelling {
		case "true":
			return Literal{Tag: BOOL, Bool: true}, nil
		case "false":
			return Literal{Tag: BOOL, Bool: false}, nil
		}
		return Literal{}, fmt.Errorf("literal: bad boolean spelling %q", spelling)
	case kind.NUMERAL:
		i, ok := new(big.Int).SetString(spelling, 10)
		if !ok {
			return Literal{}, fmt.Errorf("literal: bad numeral spelling %q", spelling)
		}
		return Literal{Tag: NUMERAL, Int: i}, nil
	case kind.DECIMAL:
		r, ok := new(big.Rat).SetString(spelling)
		if !ok {
			return Literal{}, fmt.Errorf("literal: bad decimal spelling %q", spelling)
		}
		return Literal{Tag: RATIONAL, Rat: r}, nil
	case kind.HEXADECIMAL:
		bits, err := hexToBits(spelling)
		if err != nil {
			return Literal{}, err
		}
		return Literal{Tag: BITVEC, Bits: bits, Radix: 16}, nil
	case kind.BINARY:
		bits, err := binToBits(spelling)
		if err != nil {
			return Literal{}, err
		}
		return Literal{Tag: BITVEC, Bits: bits, Radix: 2}, nil
	case kind.STRING:
		return Literal{Tag: STRING, Str: spelling}, nil
	}
	return Literal{}, fmt.Errorf("literal: kind %s is not a literal kind", k)
}

// NewSymbol builds the literal payload for a CONST/PROGRAM_CONST/ORACLE
// leaf's registered spelling. Symbols participate in structural equality
// (EVAL_IS_EQ) but never reduce under arithmetic or string operators.
func NewSymbol(name string) Literal {
	return Literal{Tag: SYMBOL, Str: name}
}

func bitsToSpelling(bits []bool, radix int) string {
	var sb strings.Builder
	if radix == 16 {
		sb.WriteString("#x")
		for i := 0; i < len(bits); i += 4 {
			nibble := 0
			for j := 0; j < 4 && i+j < len(bits); j++ {
				nibble <<= 1
				if bits[i+j] {
					nibble |= 1
				}
			}
			sb.WriteString(strconv.FormatInt(int64(nibble), 16))
		}
		return sb.String()
	}
	sb.WriteString("#b")
	for _, b := range bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func hexToBits(s string) ([]bool, error) {
	s = strings.TrimPrefix(s, "#x")
	var bits []bool
	for _, c := range s {
		v, err := strconv.ParseInt(string(c), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("literal: bad hex digit %q", c)
		}
		for shift := 3; shift >= 0; shift-- {
			bits = append(bits, (v>>uint(shift))&1 == 1)
		}
	}
	return bits, nil
}

func binToBits(s string) ([]bool, error) {
	s = strings.TrimPrefix(s, "#b")
	bits := make([]bool, 0, len(s))
	for _, c := range s {
		switch c {
		case '0':
			bits = append(bits, false)
		case '1':
			bits = append(bits, true)
		default:
			return nil, fmt.Errorf("literal: bad binary digit %q", c)
		}
	}
	return bits, nil
}

func bitsToBig(bits []bool) *big.Int {
	v := new(big.Int)
	for _, b := range bits {
		v.Lsh(v, 1)
		if b {
			v.Or(v, big.NewInt(1))
		}
	}
	return v
}

func bigToBits(v *big.Int, width int) []bool {
	bits := make([]bool, width)
	tmp := new(big.Int).Set(v)
	for i := width - 1; i >= 0; i-- {
		bit := new(big.Int).And(tmp, big.NewInt(1))
		bits[i] = bit.Sign() != 0
		tmp.Rsh(tmp, 1)
	}
	return bits
}

// Evaluate dispatches the arithmetic/logical/string/bitvector/conversion
// EVAL_* operators (everything not special-cased directly by the
// evaluator: equality, if-then-else, requires, and the list primitives).
// Returns a Literal with Tag == INVALID when the operator does not apply
// to the given operand tags.
func Evaluate(k kind.Kind, args []Literal) Literal {
	switch k {
	case kind.EVAL_NOT:
		if args[0].Tag != BOOL {
			return Literal{Tag: INVALID}
		}
		return Literal{Tag: BOOL, Bool: !args[0].Bool}
	case kind.EVAL_AND:
		if args[0].Tag != BOOL || args[1].Tag != BOOL {
			return Literal{Tag: INVALID}
		}
		return Literal{Tag: BOOL, Bool: args[0].Bool && args[1].Bool}
	case kind.EVAL_OR:
		if args[0].Tag != BOOL || args[1].Tag != BOOL {
			return Literal{Tag: INVALID}
		}
		return Literal{Tag: BOOL, Bool: args[0].Bool || args[1].Bool}
	case kind.EVAL_ADD:
		return arith(args[0], args[1], func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) },
			func(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) })
	case kind.EVAL_MUL:
		return arith(args[0], args[1], func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) },
			func(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) })
	case kind.EVAL_NEG:
		switch args[0].Tag {
		case NUMERAL:
			return Literal{Tag: NUMERAL, Int: new(big.Int).Neg(args[0].Int)}
		case RATIONAL:
			return Literal{Tag: RATIONAL, Rat: new(big.Rat).Neg(args[0].Rat)}
		}
		return Literal{Tag: INVALID}
	case kind.EVAL_INT_DIV:
		if args[0].Tag != NUMERAL || args[1].Tag != NUMERAL || args[1].Int.Sign() == 0 {
			return Literal{Tag: INVALID}
		}
		q := new(big.Int)
		m := new(big.Int)
		q.DivMod(args[0].Int, args[1].Int, m)
		return Literal{Tag: NUMERAL, Int: q}
	case kind.EVAL_RAT_DIV:
		a, aok := toRat(args[0])
		b, bok := toRat(args[1])
		if !aok || !bok || b.Sign() == 0 {
			return Literal{Tag: INVALID}
		}
		return Literal{Tag: RATIONAL, Rat: new(big.Rat).Quo(a, b)}
	case kind.EVAL_IS_NEG:
		switch args[0].Tag {
		case NUMERAL:
			return Literal{Tag: BOOL, Bool: args[0].Int.Sign() < 0}
		case RATIONAL:
			return Literal{Tag: BOOL, Bool: args[0].Rat.Sign() < 0}
		}
		return Literal{Tag: INVALID}
	case kind.EVAL_IS_ZERO:
		switch args[0].Tag {
		case NUMERAL:
			return Literal{Tag: BOOL, Bool: args[0].Int.Sign() == 0}
		case RATIONAL:
			return Literal{Tag: BOOL, Bool: args[0].Rat.Sign() == 0}
		}
		return Literal{Tag: INVALID}
	case kind.EVAL_CONCAT:
		if args[0].Tag == STRING && args[1].Tag == STRING {
			return Literal{Tag: STRING, Str: args[0].Str + args[1].Str}
		}
		if args[0].Tag == BITVEC && args[1].Tag == BITVEC {
			bits := append(append([]bool{}, args[0].Bits...), args[1].Bits...)
			return Literal{Tag: BITVEC, Bits: bits, Radix: args[0].Radix}
		}
		return Literal{Tag: INVALID}
	case kind.EVAL_LENGTH:
		switch args[0].Tag {
		case STRING:
			return Literal{Tag: NUMERAL, Int: big.NewInt(int64(len(args[0].Str)))}
		case BITVEC:
			return Literal{Tag: NUMERAL, Int: big.NewInt(int64(len(args[0].Bits)))}
		}
		return Literal{Tag: INVALID}
	case kind.EVAL_EXTRACT:
		if args[0].Tag != BITVEC || args[1].Tag != NUMERAL || args[2].Tag != NUMERAL {
			return Literal{Tag: INVALID}
		}
		hi := int(args[1].Int.Int64())
		lo := int(args[2].Int.Int64())
		n := len(args[0].Bits)
		// Bits is MSB-first; index 0 is bit (n-1).
		if lo < 0 || hi < lo || hi >= n {
			return Literal{Tag: INVALID}
		}
		start := n - 1 - hi
		end := n - lo
		return Literal{Tag: BITVEC, Bits: append([]bool{}, args[0].Bits[start:end]...), Radix: args[0].Radix}
	case kind.EVAL_TO_BV:
		if args[0].Tag != NUMERAL || args[1].Tag != NUMERAL {
			return Literal{Tag: INVALID}
		}
		width := int(args[0].Int.Int64())
		if width <= 0 {
			return Literal{Tag: INVALID}
		}
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
		v := new(big.Int).Mod(args[1].Int, mod)
		return Literal{Tag: BITVEC, Bits: bigToBits(v, width), Radix: 2}
	case kind.EVAL_TO_INT:
		switch args[0].Tag {
		case NUMERAL:
			return args[0]
		case RATIONAL:
			q := new(big.Int).Quo(args[0].Rat.Num(), args[0].Rat.Denom())
			return Literal{Tag: NUMERAL, Int: q}
		case BITVEC:
			return Literal{Tag: NUMERAL, Int: bitsToBig(args[0].Bits)}
		}
		return Literal{Tag: INVALID}
	case kind.EVAL_TO_RAT:
		r, ok := toRat(args[0])
		if !ok {
			return Literal{Tag: INVALID}
		}
		return Literal{Tag: RATIONAL, Rat: r}
	case kind.EVAL_TO_STRING:
		return Literal{Tag: STRING, Str: args[0].Spelling()}
	}
	return Literal{Tag: INVALID}
}

func toRat(l Literal) (*big.Rat, bool) {
	switch l.Tag {
	case NUMERAL:
		return new(big.Rat).SetInt(l.Int), true
	case RATIONAL:
		return l.Rat, true
	}
	return nil, false
}

func arith(a, b Literal, ints func(a, b *big.Int) *big.Int, rats func(a, b *big.Rat) *big.Rat) Literal {
	if a.Tag == NUMERAL && b.Tag == NUMERAL {
		return Literal{Tag: NUMERAL, Int: ints(a.Int, b.Int)}
	}
	ar, aok := toRat(a)
	br, bok := toRat(b)
	if aok && bok && (a.Tag == RATIONAL || b.Tag == RATIONAL) {
		return Literal{Tag: RATIONAL, Rat: rats(ar, br)}
	}
	return Literal{Tag: INVALID}
}
