package types

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"loom/internal/source"
)

// TraitSet keys traits by their unique id for O(1) implementation tests.
// Shared by pointer between a trait/object definition and its instances.
type TraitSet struct {
	byID map[TraitID]TypeID
}

func NewTraitSet() *TraitSet {
	return &TraitSet{byID: make(map[TraitID]TypeID, 2)}
}

func (s *TraitSet) Add(id TraitID, trait TypeID) {
	s.byID[id] = trait
}

func (s *TraitSet) Has(id TraitID) bool {
	if s == nil {
		return false
	}
	_, ok := s.byID[id]
	return ok
}

func (s *TraitSet) Get(id TraitID) (TypeID, bool) {
	if s == nil {
		return NoTypeID, false
	}
	trait, ok := s.byID[id]
	return trait, ok
}

func (s *TraitSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byID)
}

// Values returns the member traits ordered by unique id, for deterministic
// iteration.
func (s *TraitSet) Values() []TypeID {
	if s == nil || len(s.byID) == 0 {
		return nil
	}
	ids := make([]TraitID, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	values := make([]TypeID, len(ids))
	for i, id := range ids {
		values[i] = s.byID[id]
	}
	return values
}

// TraitInfo stores metadata for a trait type: the shared object-like tables
// plus the registry-allocated unique id, the traits it transitively requires
// of implementers, and the method signatures implementers must supply.
type TraitInfo struct {
	ObjectInfo

	Unique   TraitID
	Required *TraitSet
	Methods  *AttributeTable // required, unimplemented method signatures
}

// RegisterTrait allocates a fresh trait definition with the next unique id.
func (r *Registry) RegisterTrait(name source.StringID, proto TypeID) TypeID {
	slot := r.appendTraitInfo(TraitInfo{
		ObjectInfo: ObjectInfo{
			Name:   name,
			Proto:  proto,
			Attrs:  NewAttributeTable(),
			Params: NewParamTable(),
			Impl:   NewTraitSet(),
			Inst:   make(InstanceMap),
		},
		Unique:   r.allocTrait(),
		Required: NewTraitSet(),
		Methods:  NewAttributeTable(),
	})
	return r.appendType(Type{Kind: KindTrait, Payload: slot})
}

// TraitInfo returns metadata for the provided trait TypeID.
func (r *Registry) TraitInfo(id TypeID) (*TraitInfo, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindTrait {
		return nil, false
	}
	return &r.traits[tt.Payload], true
}

// TraitUnique returns the unique id a trait carries.
func (r *Registry) TraitUnique(id TypeID) TraitID {
	info, ok := r.TraitInfo(id)
	if !ok {
		return NoTraitID
	}
	return info.Unique
}

// AddRequiredTrait records that trait requires req of its implementers.
// The requirement graph must stay acyclic; that invariant is owned by the
// declaration pass.
func (r *Registry) AddRequiredTrait(trait, req TypeID) {
	info, ok := r.TraitInfo(trait)
	if !ok {
		return
	}
	unique := r.TraitUnique(req)
	if unique == NoTraitID {
		return
	}
	info.Required.Add(unique, req)
}

// RequiredTraits returns the direct requirements of a trait, ordered by
// unique id.
func (r *Registry) RequiredTraits(trait TypeID) []TypeID {
	info, ok := r.TraitInfo(trait)
	if !ok {
		return nil
	}
	return info.Required.Values()
}

// RequiresTrait walks the required-trait graph of trait transitively,
// short-circuiting on the first match with target. The visited set keeps
// malformed (cyclic) input terminating.
func (r *Registry) RequiresTrait(trait, target TypeID) bool {
	return r.requiresTrait(trait, target, make(map[TypeID]bool))
}

func (r *Registry) requiresTrait(trait, target TypeID, seen map[TypeID]bool) bool {
	if seen[trait] {
		return false
	}
	seen[trait] = true
	want := r.BaseType(target)
	for _, req := range r.RequiredTraits(trait) {
		if req == target || r.BaseType(req) == want {
			return true
		}
		if r.requiresTrait(req, target, seen) {
			return true
		}
	}
	return false
}

// DefineRequiredMethod records a method signature implementers must supply.
func (r *Registry) DefineRequiredMethod(trait TypeID, name source.StringID, block TypeID) {
	info, ok := r.TraitInfo(trait)
	if !ok {
		return
	}
	info.Methods.Define(name, block, false)
}

// RequiredMethod returns the required signature registered under name.
func (r *Registry) RequiredMethod(trait TypeID, name source.StringID) (TypeID, bool) {
	info, ok := r.TraitInfo(trait)
	if !ok {
		return NoTypeID, false
	}
	attr, found := info.Methods.Lookup(name)
	if !found {
		return NoTypeID, false
	}
	return attr.Type, true
}

// Implement records trait in impl's implemented set, keyed by the trait's
// unique id, and snapshots the trait's default methods into impl's own
// attribute table. The copy happens once, at implementation time: changing
// the trait's methods afterwards never affects existing implementers.
func (r *Registry) Implement(impl, trait TypeID) {
	target := r.objectLike(impl)
	info, ok := r.TraitInfo(trait)
	if !ok || target == nil {
		return
	}
	target.Impl.Add(info.Unique, trait)
	for _, attr := range info.Attrs.All() {
		if r.KindOf(attr.Type) != KindBlock {
			continue
		}
		if target.Attrs.Has(attr.Name) {
			continue
		}
		target.Attrs.Define(attr.Name, attr.Type, attr.Mutable)
	}
}

// ImplementsTrait reports whether impl (or anything on its prototype chain)
// directly implements trait. The trait's own requirement graph is not
// consulted here; that recursion belongs to trait-to-trait compatibility.
func (r *Registry) ImplementsTrait(impl, trait TypeID) bool {
	unique := r.TraitUnique(trait)
	if unique == NoTraitID {
		return false
	}
	seen := make(map[TypeID]bool)
	current := impl
	for current != NoTypeID && !seen[current] {
		seen[current] = true
		if r.KindOf(current) == KindOptional {
			current = r.OptionalInner(current)
			continue
		}
		if like := r.objectLike(current); like != nil && like.Impl.Has(unique) {
			return true
		}
		proto, ok := r.Prototype(current)
		if !ok {
			return false
		}
		current = proto
	}
	return false
}

func (r *Registry) appendTraitInfo(info TraitInfo) uint32 {
	r.traits = append(r.traits, info)
	slot, err := safecast.Conv[uint32](len(r.traits) - 1)
	if err != nil {
		panic(fmt.Errorf("trait info overflow: %w", err))
	}
	return slot
}
