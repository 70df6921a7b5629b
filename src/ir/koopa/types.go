// Package koopa is the intermediate representation consumed and produced by src/ir/build and
// src/backend/riscv, modelled on the Koopa IR used throughout the SysY toolchain this compiler
// targets: a Program of Globals and Functions of Blocks of Values, arena-owned and addressed by
// opaque handles. Koopa IR values are freely shared (a Load's result feeds a Store, a GetElemPtr,
// and a Binary all at once), and a handle-based arena avoids the reference-cycle bookkeeping a
// pointer-linked instruction graph would need.
package koopa

import "fmt"

// Type is a Koopa IR type: i32, unit (void), a pointer to another type, or an array of a fixed
// number of elements of another type.
type Type struct {
	kind  typeKind
	base  *Type // element type, for Pointer and Array.
	count int   // element count, for Array.
}

type typeKind int

const (
	KindInt32 typeKind = iota
	KindUnit
	KindPointer
	KindArray
)

// Int32 is Koopa's only scalar type: SysY has no other arithmetic type.
var Int32 = Type{kind: KindInt32}

// Unit is Koopa's void type, used as the return type of void functions.
var Unit = Type{kind: KindUnit}

// Pointer returns the type of a pointer to base.
func Pointer(base Type) Type {
	return Type{kind: KindPointer, base: &base}
}

// Array returns the type of an array of count elements of base.
func Array(base Type, count int) Type {
	return Type{kind: KindArray, base: &base, count: count}
}

// IsInt32 reports whether t is the i32 type.
func (t Type) IsInt32() bool { return t.kind == KindInt32 }

// IsUnit reports whether t is the unit (void) type.
func (t Type) IsUnit() bool { return t.kind == KindUnit }

// IsPointer reports whether t is a pointer type.
func (t Type) IsPointer() bool { return t.kind == KindPointer }

// IsArray reports whether t is an array type.
func (t Type) IsArray() bool { return t.kind == KindArray }

// Elem returns the pointed-to or element type of a Pointer or Array type. It panics if t is
// neither, which would indicate a bug in the builder or backend, not a user-facing error.
func (t Type) Elem() Type {
	if t.base == nil {
		panic("koopa: Elem called on a type with no element type")
	}
	return *t.base
}

// Len returns the element count of an Array type. It panics if t is not an Array.
func (t Type) Len() int {
	if t.kind != KindArray {
		panic("koopa: Len called on a non-array type")
	}
	return t.count
}

// Size returns the size in bytes of a value of type t: i32 and pointers are 4 bytes, and arrays
// are their element size times their length.
func (t Type) Size() int {
	switch t.kind {
	case KindInt32, KindPointer:
		return 4
	case KindArray:
		return t.count * t.Elem().Size()
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t.kind {
	case KindInt32:
		return "i32"
	case KindUnit:
		return "unit"
	case KindPointer:
		return fmt.Sprintf("*%s", t.Elem())
	case KindArray:
		return fmt.Sprintf("[%s, %d]", t.Elem(), t.count)
	}
	return "?"
}

// Equal reports whether t and u describe the same Koopa type.
func (t Type) Equal(u Type) bool {
	if t.kind != u.kind {
		return false
	}
	switch t.kind {
	case KindPointer:
		return t.Elem().Equal(u.Elem())
	case KindArray:
		return t.count == u.count && t.Elem().Equal(u.Elem())
	}
	return true
}
