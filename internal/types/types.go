package types

import "fmt"

// TypeID uniquely identifies a type inside the registry.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// TraitID is the globally unique identifier a trait carries. IDs are
// allocated from a monotonic counter owned by the registry and are never
// reused within one compilation.
type TraitID uint32

const NoTraitID TraitID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindDynamic
	KindNever
	KindVoid
	KindError
	KindSelf
	KindObject
	KindTrait
	KindTypeParam
	KindRigidParam
	KindBlock
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindDynamic:
		return "dynamic"
	case KindNever:
		return "never"
	case KindVoid:
		return "void"
	case KindError:
		return "error"
	case KindSelf:
		return "self"
	case KindObject:
		return "object"
	case KindTrait:
		return "trait"
	case KindTypeParam:
		return "type parameter"
	case KindRigidParam:
		return "rigid type parameter"
	case KindBlock:
		return "block"
	case KindOptional:
		return "optional"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// BlockKind tags a callable type.
type BlockKind uint8

const (
	BlockMethod BlockKind = iota
	BlockClosure
	BlockLambda
)

func (k BlockKind) String() string {
	switch k {
	case BlockMethod:
		return "method"
	case BlockClosure:
		return "closure"
	case BlockLambda:
		return "lambda"
	default:
		return fmt.Sprintf("BlockKind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type. Elem is the wrapped
// type for optionals; Payload addresses the per-kind info table for objects,
// traits, type parameters and blocks.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}
