package types

import (
	"fmt"

	"fortio.org/safecast"

	"loom/internal/source"
)

// ObjectInfo stores metadata for a nominal object type. The attribute table,
// parameter table and implemented-trait set of a definition are shared by
// pointer with every instance spawned from it; only the instance map is
// owned per instantiation.
type ObjectInfo struct {
	Name  source.StringID
	Proto TypeID // delegate for attribute fallback, NoTypeID when absent
	Base  TypeID // generic definition this instance was spawned from

	Attrs  *AttributeTable
	Params *ParamTable
	Impl   *TraitSet
	Inst   InstanceMap
}

// RegisterObject allocates a fresh nominal object definition.
func (r *Registry) RegisterObject(name source.StringID, proto TypeID) TypeID {
	slot := r.appendObjectInfo(ObjectInfo{
		Name:   name,
		Proto:  proto,
		Attrs:  NewAttributeTable(),
		Params: NewParamTable(),
		Impl:   NewTraitSet(),
		Inst:   make(InstanceMap),
	})
	return r.appendType(Type{Kind: KindObject, Payload: slot})
}

// ObjectInfo returns metadata for the provided object TypeID.
func (r *Registry) ObjectInfo(id TypeID) (*ObjectInfo, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindObject {
		return nil, false
	}
	return &r.objects[tt.Payload], true
}

// objectLike returns the shared object metadata of an object or trait.
func (r *Registry) objectLike(id TypeID) *ObjectInfo {
	tt, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindObject:
		return &r.objects[tt.Payload]
	case KindTrait:
		return &r.traits[tt.Payload].ObjectInfo
	}
	return nil
}

// Prototype returns the delegate reference of an object, trait or block.
func (r *Registry) Prototype(id TypeID) (TypeID, bool) {
	tt, ok := r.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		proto := r.objectLike(id).Proto
		return proto, proto != NoTypeID
	case KindBlock:
		proto := r.blocks[tt.Payload].Proto
		return proto, proto != NoTypeID
	}
	return NoTypeID, false
}

// SetPrototype repoints the delegate reference.
func (r *Registry) SetPrototype(id, proto TypeID) {
	tt, ok := r.Lookup(id)
	if !ok {
		return
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		r.objectLike(id).Proto = proto
	case KindBlock:
		r.blocks[tt.Payload].Proto = proto
	}
}

// PrototypeChainContains walks the prototype chain of id (excluding id
// itself) looking for target, comparing through base types so an
// instantiated prototype still matches its definition.
func (r *Registry) PrototypeChainContains(id, target TypeID) bool {
	want := r.BaseType(target)
	seen := make(map[TypeID]bool)
	current, ok := r.Prototype(id)
	for ok && !seen[current] {
		if current == target || r.BaseType(current) == want {
			return true
		}
		seen[current] = true
		current, ok = r.Prototype(current)
	}
	return false
}

// BaseType returns the generic definition an instance was spawned from, or
// id itself for definitions. Used for same-generic-family checks.
func (r *Registry) BaseType(id TypeID) TypeID {
	tt, ok := r.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		if base := r.objectLike(id).Base; base != NoTypeID {
			return base
		}
	case KindBlock:
		if base := r.blocks[tt.Payload].Base; base != NoTypeID {
			return base
		}
	}
	return id
}

// DefineAttribute inserts into the owning type's own table. Rejecting a
// duplicate definition is the caller's job.
func (r *Registry) DefineAttribute(owner TypeID, name source.StringID, typ TypeID, mutable bool) {
	if table := r.ownAttributes(owner); table != nil {
		table.Define(name, typ, mutable)
	}
}

// OwnAttribute searches only the type's own table.
func (r *Registry) OwnAttribute(owner TypeID, name source.StringID) (TypeID, bool) {
	attr, ok := r.ownAttributes(owner).Lookup(name)
	if !ok {
		return NoTypeID, false
	}
	return attr.Type, true
}

// LookupAttribute searches the type's own table, then the prototype chain.
// Lookups on the Dynamic and Error types always produce the receiver itself:
// Dynamic escapes checking entirely, Error refuses to cascade. Optionals
// delegate to the wrapped type, parameters to their bound traits.
func (r *Registry) LookupAttribute(owner TypeID, name source.StringID) (TypeID, bool) {
	tt, ok := r.Lookup(owner)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindDynamic, KindError:
		return owner, true
	case KindOptional:
		return r.LookupAttribute(tt.Elem, name)
	case KindTypeParam:
		for _, bound := range r.ParamBounds(owner) {
			if typ, found := r.LookupAttribute(bound, name); found {
				return typ, true
			}
		}
		return NoTypeID, false
	case KindRigidParam:
		return r.LookupAttribute(r.rigidInfos[tt.Payload].Param, name)
	case KindObject, KindTrait, KindBlock:
		if typ, found := r.OwnAttribute(owner, name); found {
			return typ, true
		}
		if proto, hasProto := r.Prototype(owner); hasProto {
			return r.LookupAttribute(proto, name)
		}
		return NoTypeID, false
	}
	return NoTypeID, false
}

// NewInstance spawns a transient instance of a generic definition: the
// definition's tables are shared by reference, the instance map is fresh and
// disjoint, the base back-reference records the original definition, and the
// prototype points at base so member lookups fall through to it. The given
// instances are bound positionally.
func (r *Registry) NewInstance(base TypeID, instances []TypeID) (TypeID, error) {
	tt, ok := r.Lookup(base)
	if !ok {
		return NoTypeID, fmt.Errorf("types: invalid base TypeID %d", base)
	}
	var id TypeID
	switch tt.Kind {
	case KindObject:
		info := r.objects[tt.Payload]
		slot := r.appendObjectInfo(ObjectInfo{
			Name:   info.Name,
			Proto:  base,
			Base:   r.BaseType(base),
			Attrs:  info.Attrs,
			Params: info.Params,
			Impl:   info.Impl,
			Inst:   make(InstanceMap),
		})
		id = r.appendType(Type{Kind: KindObject, Payload: slot})
	case KindTrait:
		info := r.traits[tt.Payload]
		slot := r.appendTraitInfo(TraitInfo{
			ObjectInfo: ObjectInfo{
				Name:   info.Name,
				Proto:  base,
				Base:   r.BaseType(base),
				Attrs:  info.Attrs,
				Params: info.Params,
				Impl:   info.Impl,
				Inst:   make(InstanceMap),
			},
			Unique:   info.Unique,
			Required: info.Required,
			Methods:  info.Methods,
		})
		id = r.appendType(Type{Kind: KindTrait, Payload: slot})
	case KindBlock:
		info := r.blocks[tt.Payload]
		slot := r.appendBlockInfo(BlockInfo{
			Name:     info.Name,
			Kind:     info.Kind,
			Proto:    base,
			Base:     r.BaseType(base),
			Args:     info.Args,
			Required: info.Required,
			Rest:     info.Rest,
			Throws:   info.Throws,
			Returns:  info.Returns,
			Params:   info.Params,
			Bounds:   info.Bounds,
			Inst:     make(InstanceMap),
		})
		id = r.appendType(Type{Kind: KindBlock, Payload: slot})
	default:
		return NoTypeID, fmt.Errorf("types: cannot instantiate a %s type", tt.Kind)
	}
	if err := r.Instantiate(id, instances); err != nil {
		return NoTypeID, err
	}
	return id, nil
}

func (r *Registry) ownAttributes(id TypeID) *AttributeTable {
	tt, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		return r.objectLike(id).Attrs
	case KindBlock:
		return r.blocks[tt.Payload].Args
	}
	return nil
}

func (r *Registry) appendObjectInfo(info ObjectInfo) uint32 {
	r.objects = append(r.objects, info)
	slot, err := safecast.Conv[uint32](len(r.objects) - 1)
	if err != nil {
		panic(fmt.Errorf("object info overflow: %w", err))
	}
	return slot
}
