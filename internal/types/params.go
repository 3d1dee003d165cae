package types

import (
	"fmt"

	"fortio.org/safecast"

	"loom/internal/source"
)

// ParamInfo stores metadata about a generic type parameter: its name and its
// bound, the set of traits any instance must satisfy. Parameters are
// identity-allocated; two parameters with the same name on different owners
// are distinct types.
type ParamInfo struct {
	Name   source.StringID
	Bounds []TypeID // required traits
}

// RigidInfo pins a type parameter to one fixed owner, for references to a
// type's own parameters inside its own declarations.
type RigidInfo struct {
	Param TypeID
	Owner TypeID
}

// ParamTable is the ordered sequence of parameters declared by one
// generic-capable type. Order is significant: instantiation is positional.
type ParamTable struct {
	index  map[source.StringID]int
	params []TypeID
}

func NewParamTable() *ParamTable {
	return &ParamTable{index: make(map[source.StringID]int, 2)}
}

func (t *ParamTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.params)
}

// At returns the i-th declared parameter.
func (t *ParamTable) At(i int) TypeID {
	return t.params[i]
}

// All returns the declared parameters in order. The slice aliases the
// table's storage; callers must not modify it.
func (t *ParamTable) All() []TypeID {
	if t == nil {
		return nil
	}
	return t.params
}

// ByName returns the parameter declared under name.
func (t *ParamTable) ByName(name source.StringID) (TypeID, bool) {
	if t == nil {
		return NoTypeID, false
	}
	i, ok := t.index[name]
	if !ok {
		return NoTypeID, false
	}
	return t.params[i], true
}

// Contains reports whether param was declared in this table.
func (t *ParamTable) Contains(param TypeID) bool {
	if t == nil {
		return false
	}
	for _, p := range t.params {
		if p == param {
			return true
		}
	}
	return false
}

func (t *ParamTable) append(name source.StringID, param TypeID) {
	t.index[name] = len(t.params)
	t.params = append(t.params, param)
}

// InstanceMap binds declared parameters to resolved types for one
// particular instantiation. Every instantiation owns a disjoint map.
type InstanceMap map[TypeID]TypeID

// RegisterTypeParam allocates a free-standing type parameter.
func (r *Registry) RegisterTypeParam(name source.StringID, bounds []TypeID) TypeID {
	slot := r.appendParamInfo(ParamInfo{Name: name, Bounds: bounds})
	return r.appendType(Type{Kind: KindTypeParam, Payload: slot})
}

// DefineParameter declares a new parameter on owner's parameter table and
// returns its handle. The handle, not the name, is the parameter's identity.
func (r *Registry) DefineParameter(owner TypeID, name source.StringID, bounds []TypeID) TypeID {
	table := r.ParamsOf(owner)
	if table == nil {
		return NoTypeID
	}
	param := r.RegisterTypeParam(name, bounds)
	table.append(name, param)
	return param
}

// RegisterRigid returns the parameter pinned to owner, deduplicated per
// (param, owner) pair.
func (r *Registry) RegisterRigid(param, owner TypeID) TypeID {
	if r.KindOf(param) != KindTypeParam {
		return NoTypeID
	}
	key := rigidKey{param: param, owner: owner}
	if id, ok := r.rigids[key]; ok {
		return id
	}
	slot := r.appendRigidInfo(RigidInfo{Param: param, Owner: owner})
	id := r.appendType(Type{Kind: KindRigidParam, Payload: slot})
	r.rigids[key] = id
	return id
}

// RigidInfo returns metadata for a rigid parameter.
func (r *Registry) RigidInfo(id TypeID) (*RigidInfo, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindRigidParam {
		return nil, false
	}
	return &r.rigidInfos[tt.Payload], true
}

// ParamBounds returns the required traits of a parameter, unwrapping rigid
// parameters to their underlying declaration.
func (r *Registry) ParamBounds(id TypeID) []TypeID {
	tt, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindTypeParam:
		return r.params[tt.Payload].Bounds
	case KindRigidParam:
		return r.ParamBounds(r.rigidInfos[tt.Payload].Param)
	}
	return nil
}

// ParamsOf returns the parameter table owned by a generic-capable type, nil
// for every other kind.
func (r *Registry) ParamsOf(id TypeID) *ParamTable {
	tt, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		return r.objectLike(id).Params
	case KindBlock:
		return r.blocks[tt.Payload].Params
	}
	return nil
}

// InstancesOf returns the parameter instance map of a generic-capable type.
func (r *Registry) InstancesOf(id TypeID) InstanceMap {
	tt, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindObject, KindTrait:
		return r.objectLike(id).Inst
	case KindBlock:
		return r.blocks[tt.Payload].Inst
	}
	return nil
}

// IsGeneric reports whether id declares at least one parameter.
func (r *Registry) IsGeneric(id TypeID) bool {
	return r.ParamsOf(id).Len() > 0
}

// Instantiate binds instances positionally into owner's instance map.
// Positions holding NoTypeID stay unbound (partial instantiation). Passing
// more instances than declared parameters is a contract violation.
func (r *Registry) Instantiate(owner TypeID, instances []TypeID) error {
	if len(instances) == 0 {
		return nil
	}
	table := r.ParamsOf(owner)
	inst := r.InstancesOf(owner)
	if table == nil || inst == nil {
		return fmt.Errorf("types: %s is not generic-capable", r.KindOf(owner))
	}
	if len(instances) > table.Len() {
		return fmt.Errorf("types: %d instances for %d declared parameters", len(instances), table.Len())
	}
	for i, value := range instances {
		if value == NoTypeID {
			continue
		}
		inst[table.At(i)] = value
	}
	return nil
}

// LookupInstance returns the type bound to param in owner's instance map.
func (r *Registry) LookupInstance(owner, param TypeID) (TypeID, bool) {
	inst := r.InstancesOf(owner)
	if inst == nil {
		return NoTypeID, false
	}
	value, ok := inst[param]
	return value, ok
}

// BindInstance binds param to value in owner's map unless already bound.
// Returns whether it wrote: first writer wins.
func (r *Registry) BindInstance(owner, param, value TypeID) bool {
	inst := r.InstancesOf(owner)
	if inst == nil {
		return false
	}
	if _, ok := inst[param]; ok {
		return false
	}
	inst[param] = value
	return true
}

// DeclaresParam reports whether owner's parameter table (or, for blocks,
// the method-bounds table) declares param.
func (r *Registry) DeclaresParam(owner, param TypeID) bool {
	if r.ParamsOf(owner).Contains(param) {
		return true
	}
	if info, ok := r.BlockInfo(owner); ok {
		return info.Bounds.Contains(param)
	}
	return false
}

func (r *Registry) appendParamInfo(info ParamInfo) uint32 {
	r.params = append(r.params, info)
	slot, err := safecast.Conv[uint32](len(r.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type param index overflow: %w", err))
	}
	return slot
}

func (r *Registry) appendRigidInfo(info RigidInfo) uint32 {
	r.rigidInfos = append(r.rigidInfos, info)
	slot, err := safecast.Conv[uint32](len(r.rigidInfos) - 1)
	if err != nil {
		panic(fmt.Errorf("rigid param index overflow: %w", err))
	}
	return slot
}
