package types

import (
	"fmt"

	"fortio.org/safecast"

	"loom/internal/source"
)

// Builtins stores TypeIDs for the singleton and builtin nominal types the
// registry seeds at construction.
type Builtins struct {
	Dynamic  TypeID
	Never    TypeID
	Void     TypeID
	Error    TypeID
	SelfType TypeID

	Object    TypeID
	Boolean   TypeID
	Integer   TypeID
	Float     TypeID
	String    TypeID
	Array     TypeID
	ByteArray TypeID
	Nil       TypeID
}

// Registry owns every type created during one compilation. Objects, traits,
// type parameters and blocks are identity-allocated: each registration
// returns a fresh TypeID, and equality of IDs is reference equality of the
// underlying mutable metadata. Stateless singletons and optionals are
// deduplicated structurally.
type Registry struct {
	strings *source.Interner

	types     []Type
	optionals map[TypeID]TypeID // inner -> Optional(inner)
	rigids    map[rigidKey]TypeID

	objects    []ObjectInfo
	traits     []TraitInfo
	params     []ParamInfo
	rigidInfos []RigidInfo
	blocks     []BlockInfo

	builtins  Builtins
	nextTrait TraitID

	// optionMarker is the designated trait whose implementers may be passed
	// where an optional is expected. NoTypeID disables the fallback.
	optionMarker TypeID
}

type rigidKey struct {
	param TypeID
	owner TypeID
}

// NewRegistry constructs a registry seeded with singletons and the builtin
// nominal types. Passing nil uses a fresh string interner.
func NewRegistry(strings *source.Interner) *Registry {
	if strings == nil {
		strings = source.NewInterner()
	}
	r := &Registry{
		strings:   strings,
		optionals: make(map[TypeID]TypeID, 16),
		rigids:    make(map[rigidKey]TypeID, 8),
		nextTrait: NoTraitID,
	}
	// Reserve slot 0 of every table as the invalid sentinel.
	r.types = append(r.types, Type{Kind: KindInvalid})
	r.objects = append(r.objects, ObjectInfo{})
	r.traits = append(r.traits, TraitInfo{})
	r.params = append(r.params, ParamInfo{})
	r.rigidInfos = append(r.rigidInfos, RigidInfo{})
	r.blocks = append(r.blocks, BlockInfo{})

	r.builtins.Dynamic = r.appendType(Type{Kind: KindDynamic})
	r.builtins.Never = r.appendType(Type{Kind: KindNever})
	r.builtins.Void = r.appendType(Type{Kind: KindVoid})
	r.builtins.Error = r.appendType(Type{Kind: KindError})
	r.builtins.SelfType = r.appendType(Type{Kind: KindSelf})

	r.builtins.Object = r.RegisterObject(strings.Intern("Object"), NoTypeID)
	root := r.builtins.Object
	r.builtins.Boolean = r.RegisterObject(strings.Intern("Boolean"), root)
	r.builtins.Integer = r.RegisterObject(strings.Intern("Integer"), root)
	r.builtins.Float = r.RegisterObject(strings.Intern("Float"), root)
	r.builtins.String = r.RegisterObject(strings.Intern("String"), root)
	r.builtins.Array = r.RegisterObject(strings.Intern("Array"), root)
	r.builtins.ByteArray = r.RegisterObject(strings.Intern("ByteArray"), root)
	r.builtins.Nil = r.RegisterObject(strings.Intern("Nil"), root)
	return r
}

// Builtins returns TypeIDs for the seeded types.
func (r *Registry) Builtins() Builtins {
	return r.builtins
}

// Strings exposes the interner backing all names in this registry.
func (r *Registry) Strings() *source.Interner {
	return r.strings
}

// Intern is shorthand for interning a name through the registry's interner.
func (r *Registry) Intern(s string) source.StringID {
	return r.strings.Intern(s)
}

// Lookup returns the descriptor for a TypeID.
func (r *Registry) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(r.types) {
		return Type{}, false
	}
	return r.types[id], true
}

// MustLookup panics when id is invalid.
func (r *Registry) MustLookup(id TypeID) Type {
	tt, ok := r.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind for id, KindInvalid when id is unknown.
func (r *Registry) KindOf(id TypeID) Kind {
	tt, ok := r.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Optional returns the optional wrapper around inner, deduplicated per inner
// type. Wrapping an optional again yields the same optional.
func (r *Registry) Optional(inner TypeID) TypeID {
	if inner == NoTypeID {
		return NoTypeID
	}
	if r.KindOf(inner) == KindOptional {
		return inner
	}
	if id, ok := r.optionals[inner]; ok {
		return id
	}
	id := r.appendType(Type{Kind: KindOptional, Elem: inner})
	r.optionals[inner] = id
	return id
}

// OptionalInner unwraps one optional layer, or returns id unchanged.
func (r *Registry) OptionalInner(id TypeID) TypeID {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindOptional {
		return id
	}
	return tt.Elem
}

// SetOptionMarker designates the trait whose implementers are accepted where
// an optional is expected.
func (r *Registry) SetOptionMarker(trait TypeID) {
	r.optionMarker = trait
}

// OptionMarker returns the designated marker trait, NoTypeID when unset.
func (r *Registry) OptionMarker() TypeID {
	return r.optionMarker
}

func (r *Registry) appendType(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(r.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	r.types = append(r.types, t)
	return id
}

func (r *Registry) allocTrait() TraitID {
	r.nextTrait++
	return r.nextTrait
}

// Name returns the declared name of a nominal, parameter or block type.
func (r *Registry) Name(id TypeID) source.StringID {
	tt, ok := r.Lookup(id)
	if !ok {
		return source.NoStringID
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		return r.objectLike(id).Name
	case KindTypeParam:
		return r.params[tt.Payload].Name
	case KindRigidParam:
		return r.Name(r.rigidInfos[tt.Payload].Param)
	case KindBlock:
		return r.blocks[tt.Payload].Name
	}
	return source.NoStringID
}
