// Package pyval represents the host values that can appear as LOAD_CONST
// operands, plus the small closed enumerations (comparison operators,
// binary operators, intrinsics) used by other opcode argument variants. It
// also supplies the structural dedup key the assembler's constant pool
// construction needs (spec §4.3.1): two constants are the same pool entry
// only if they share both type and value, distinguishing 1 from 1.0 from
// True, and +0.0 from -0.0.
package pyval

import (
	"fmt"
	"math"
	"strings"
)

// Kind tags the dynamic type of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindString
	KindBytes
	KindTuple
	KindFrozenset
	KindCode // a nested compiled code unit, compared by identity
	KindEllipsis
)

// Value is a host value eligible to appear as a LOAD_CONST operand.
// The zero Value is KindNone.
type Value struct {
	kind    Kind
	b       bool
	i       int64
	isBig   bool
	big     string // decimal text for integers outside int64 range
	f       float64
	re, im  float64
	s       string
	bytes   []byte
	tuple   []Value
	fset    []Value
	codeRef interface{} // identity-compared nested code unit
}

func None() Value                    { return Value{kind: KindNone} }
func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int(i int64) Value              { return Value{kind: KindInt, i: i} }
func BigInt(dec string) Value        { return Value{kind: KindInt, isBig: true, big: dec} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func Complex(re, im float64) Value   { return Value{kind: KindComplex, re: re, im: im} }
func Str(s string) Value             { return Value{kind: KindString, s: s} }
func Bytes(b []byte) Value           { return Value{kind: KindBytes, bytes: append([]byte(nil), b...)} }
func Ellipsis() Value                { return Value{kind: KindEllipsis} }
func Tuple(items ...Value) Value     { return Value{kind: KindTuple, tuple: items} }
func Frozenset(items ...Value) Value { return Value{kind: KindFrozenset, fset: items} }

// Code wraps a nested compiled code unit. Dedup for these is by identity
// (pointer equality of ref), matching spec §4.3.1.
func Code(ref interface{}) Value { return Value{kind: KindCode, codeRef: ref} }

func (v Value) Kind() Kind                { return v.kind }
func (v Value) Bool() bool                { return v.b }
func (v Value) Int() int64                { return v.i }
func (v Value) Float() float64            { return v.f }
func (v Value) Complex() (re, im float64) { return v.re, v.im }
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		if v.isBig {
			return v.big
		}
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindComplex:
		return fmt.Sprintf("(%g%+gj)", v.re, v.im)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBytes:
		return fmt.Sprintf("b%q", v.bytes)
	case KindEllipsis:
		return "Ellipsis"
	case KindTuple:
		parts := make([]string, len(v.tuple))
		for i, e := range v.tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFrozenset:
		parts := make([]string, len(v.fset))
		for i, e := range v.fset {
			parts[i] = e.String()
		}
		return "frozenset({" + strings.Join(parts, ", ") + "})"
	case KindCode:
		return fmt.Sprintf("<code %p>", v.codeRef)
	default:
		return "<invalid pyval.Value>"
	}
}

// StrValue returns the underlying Go string for a KindString Value.
func (v Value) StrValue() string { return v.s }

// BytesValue returns the underlying bytes for a KindBytes Value.
func (v Value) BytesValue() []byte { return v.bytes }

// Elements returns the underlying items for a KindTuple or KindFrozenset Value.
func (v Value) Elements() []Value {
	if v.kind == KindFrozenset {
		return v.fset
	}
	return v.tuple
}

// CodeRef returns the identity reference for a KindCode Value.
func (v Value) CodeRef() interface{} { return v.codeRef }

// Key is a comparable (==-able) structural dedup key, suitable for use as a
// map key, that implements the constant-key equivalence of spec §4.3.1:
// type-distinguishing, bit-exact on floats/complex (so +0.0 != -0.0), and
// recursive through tuples/frozensets. Nested code units compare by Go
// pointer identity, which Key captures via the interface value itself.
type Key struct {
	kind    Kind
	scalar  uint64 // bit pattern for int/float/complex-real, or bool as 0/1
	scalar2 uint64 // complex imaginary part bits
	text    string // string/bytes payload, or decimal text for big ints
	nested  string // joined child keys, for tuple/frozenset
	code    interface{}
}

// KeyOf computes the dedup key for v.
func KeyOf(v Value) Key {
	switch v.kind {
	case KindNone:
		return Key{kind: KindNone}
	case KindBool:
		s := uint64(0)
		if v.b {
			s = 1
		}
		return Key{kind: KindBool, scalar: s}
	case KindInt:
		if v.isBig {
			return Key{kind: KindInt, text: v.big}
		}
		return Key{kind: KindInt, scalar: uint64(v.i)}
	case KindFloat:
		return Key{kind: KindFloat, scalar: math.Float64bits(v.f)}
	case KindComplex:
		return Key{kind: KindComplex, scalar: math.Float64bits(v.re), scalar2: math.Float64bits(v.im)}
	case KindString:
		return Key{kind: KindString, text: v.s}
	case KindBytes:
		return Key{kind: KindBytes, text: string(v.bytes)}
	case KindEllipsis:
		return Key{kind: KindEllipsis}
	case KindTuple, KindFrozenset:
		items := v.Elements()
		parts := make([]string, len(items))
		for i, e := range items {
			parts[i] = fmt.Sprintf("%+v", KeyOf(e))
		}
		return Key{kind: v.kind, nested: strings.Join(parts, "\x1f")}
	case KindCode:
		return Key{kind: KindCode, code: v.codeRef}
	default:
		return Key{kind: v.kind}
	}
}

// CompareOp enumerates the rich-comparison operators COMPARE_OP can carry.
type CompareOp int

const (
	CmpLT CompareOp = iota
	CmpLE
	CmpEQ
	CmpNE
	CmpGT
	CmpGE
)

var compareNames = map[CompareOp]string{
	CmpLT: "<", CmpLE: "<=", CmpEQ: "==", CmpNE: "!=", CmpGT: ">", CmpGE: ">=",
}

func (c CompareOp) String() string {
	if s, ok := compareNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CompareOp(%d)", int(c))
}

// BinaryOp enumerates the arithmetic/bitwise operators BINARY_OP carries
// from 3.11 onward (pre-3.11 tables instead use one NoArg opcode per
// operator, so this enum is unused by disasm/assemble before 3.11).
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSubtract
	BinMultiply
	BinTrueDivide
	BinFloorDivide
	BinModulo
	BinPower
	BinLshift
	BinRshift
	BinAnd
	BinOr
	BinXor
	BinMatrixMultiply
	BinInplaceAdd
	BinInplaceSubtract
	BinInplaceMultiply
	BinInplaceTrueDivide
	BinInplaceFloorDivide
	BinInplaceModulo
	BinInplacePower
	BinInplaceLshift
	BinInplaceRshift
	BinInplaceAnd
	BinInplaceOr
	BinInplaceXor
	BinInplaceMatrixMultiply
)

var binaryOpNames = map[BinaryOp]string{
	BinAdd: "+", BinSubtract: "-", BinMultiply: "*", BinTrueDivide: "/",
	BinFloorDivide: "//", BinModulo: "%", BinPower: "**", BinLshift: "<<",
	BinRshift: ">>", BinAnd: "&", BinOr: "|", BinXor: "^", BinMatrixMultiply: "@",
	BinInplaceAdd: "+=", BinInplaceSubtract: "-=", BinInplaceMultiply: "*=",
	BinInplaceTrueDivide: "/=", BinInplaceFloorDivide: "//=", BinInplaceModulo: "%=",
	BinInplacePower: "**=", BinInplaceLshift: "<<=", BinInplaceRshift: ">>=",
	BinInplaceAnd: "&=", BinInplaceOr: "|=", BinInplaceXor: "^=",
	BinInplaceMatrixMultiply: "@=",
}

func (b BinaryOp) String() string {
	if s, ok := binaryOpNames[b]; ok {
		return s
	}
	return fmt.Sprintf("BinaryOp(%d)", int(b))
}

// Intrinsic1 enumerates the unary CALL_INTRINSIC_1 functions (3.12+).
type Intrinsic1 int

const (
	IntrinsicPrint Intrinsic1 = iota + 1
	IntrinsicImportStar
	IntrinsicStopIterationError
	IntrinsicAsyncGenWrap
	IntrinsicUnaryPositive
	IntrinsicListToTuple
	IntrinsicTypeVar
	IntrinsicParamSpec
	IntrinsicTypeVarTuple
	IntrinsicSubscriptGeneric
	IntrinsicTypeAlias
)

func (i Intrinsic1) String() string { return fmt.Sprintf("Intrinsic1(%d)", int(i)) }

// Intrinsic2 enumerates the binary CALL_INTRINSIC_2 functions (3.12+).
type Intrinsic2 int

const (
	Intrinsic2PrepReraiseStar Intrinsic2 = iota + 1
	Intrinsic2TypeVarWithBound
	Intrinsic2TypeVarWithConstraints
	Intrinsic2SetFunctionTypeParams
)

func (i Intrinsic2) String() string { return fmt.Sprintf("Intrinsic2(%d)", int(i)) }
