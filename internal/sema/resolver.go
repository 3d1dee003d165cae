package sema

import "loom/internal/types"

// Resolver substitutes generic parameters with the concrete types bound in a
// calling context: a self type (the receiver) and a method type (the call's
// own inferred bindings). Resolution never mutates its input except through
// InitializeAs, which back-fills a call's parameter bindings.
type Resolver struct {
	reg *types.Registry
}

func NewResolver(reg *types.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve returns the concrete type t denotes within the given context. A
// parameter resolves through the method type first, then the self type, and
// stays abstract when neither binds it. Rigid parameters consult only the
// owner they are pinned to. Generic instances are rebuilt with their nested
// parameters substituted and unconstrained leftovers pruned; callable
// signatures resolve the same way into a derived block.
func (rs *Resolver) Resolve(t, selfType, methodType types.TypeID) types.TypeID {
	switch rs.reg.KindOf(t) {
	case types.KindError:
		// Poison stays poison; no resolution can recover it.
		return t
	case types.KindTypeParam:
		param := rs.remapParam(t, methodType)
		if value, ok := rs.lookupScoped(param, selfType, methodType); ok {
			return value
		}
		if param != t {
			return param
		}
		return t
	case types.KindRigidParam:
		rigid, _ := rs.reg.RigidInfo(t)
		if value, ok := rs.reg.LookupInstance(rigid.Owner, rigid.Param); ok {
			return value
		}
		return t
	case types.KindOptional:
		inner := rs.reg.OptionalInner(t)
		resolved := rs.Resolve(inner, selfType, methodType)
		if resolved == inner {
			return t
		}
		return rs.reg.Optional(resolved)
	case types.KindObject, types.KindTrait:
		return rs.resolveGeneric(t, selfType, methodType)
	case types.KindBlock:
		return rs.resolveBlock(t, selfType, methodType)
	}
	return t
}

// resolveBlock substitutes a callable's whole signature: argument types,
// throw type, return type and its own instance-map entries, with the same
// pruning discipline as resolveGeneric. The original block is never touched;
// a substituted signature lives in a derived copy.
func (rs *Resolver) resolveBlock(t, selfType, methodType types.TypeID) types.TypeID {
	info, ok := rs.reg.BlockInfo(t)
	if !ok {
		return t
	}
	args := info.Args.All()
	required := info.Required
	throws := info.Throws
	returns := info.Returns
	changed := false

	resolvedArgs := make([]types.TypeID, len(args))
	for i, arg := range args {
		resolvedArgs[i] = rs.Resolve(arg.Type, selfType, methodType)
		if resolvedArgs[i] != arg.Type {
			changed = true
		}
	}
	resolvedThrows := throws
	if throws != types.NoTypeID {
		resolvedThrows = rs.Resolve(throws, selfType, methodType)
		if resolvedThrows != throws {
			changed = true
		}
	}
	resolvedReturns := rs.Resolve(returns, selfType, methodType)
	if resolvedReturns != returns {
		changed = true
	}

	inst := rs.reg.InstancesOf(t)
	resolvedInst := make(map[types.TypeID]types.TypeID, len(inst))
	for _, param := range rs.reg.ParamsOf(t).All() {
		value, bound := inst[param]
		if !bound {
			continue
		}
		out := rs.Resolve(value, selfType, methodType)
		if rs.reg.KindOf(out) == types.KindTypeParam {
			changed = true
			continue
		}
		resolvedInst[param] = out
		if out != value {
			changed = true
		}
	}
	if !changed {
		return t
	}

	derived := rs.reg.DeriveBlock(t)
	for i, arg := range args {
		rs.reg.DefineArgument(derived, arg.Name, resolvedArgs[i], i < required)
	}
	if throws != types.NoTypeID {
		rs.reg.SetThrowType(derived, resolvedThrows)
	}
	rs.reg.SetReturnType(derived, resolvedReturns)
	for param, value := range resolvedInst {
		rs.reg.BindInstance(derived, param, value)
	}
	return derived
}

// resolveGeneric substitutes the bound values of a generic instance. Any
// entry still holding a plain type parameter that neither scope can resolve
// is pruned, so an under-constrained call yields an uninstantiated generic
// instead of leaking a meaningless placeholder into a public signature.
func (rs *Resolver) resolveGeneric(t, selfType, methodType types.TypeID) types.TypeID {
	table := rs.reg.ParamsOf(t)
	if table.Len() == 0 {
		return t
	}
	inst := rs.reg.InstancesOf(t)
	if len(inst) == 0 {
		return t
	}
	resolved := make(map[types.TypeID]types.TypeID, len(inst))
	changed := false
	for _, param := range table.All() {
		value, ok := inst[param]
		if !ok {
			continue
		}
		out := rs.Resolve(value, selfType, methodType)
		if rs.reg.KindOf(out) == types.KindTypeParam {
			// Still unconstrained in both scopes: prune the binding.
			changed = true
			continue
		}
		resolved[param] = out
		if out != value {
			changed = true
		}
	}
	if !changed {
		return t
	}
	instance, err := rs.reg.NewInstance(t, nil)
	if err != nil {
		return t
	}
	for param, value := range resolved {
		rs.reg.BindInstance(instance, param, value)
	}
	return instance
}

// InitializeAs walks abstract and concrete pairwise, binding every not yet
// bound parameter on the abstract side to its concrete counterpart. The
// first writer wins; a parameter already bound in either scope is left
// untouched. This is how a generic call's inferred bindings are back-filled
// from its concrete arguments before resolution runs.
func (rs *Resolver) InitializeAs(abstract, concrete, methodType, selfType types.TypeID) {
	switch rs.reg.KindOf(abstract) {
	case types.KindTypeParam:
		param := rs.remapParam(abstract, methodType)
		if _, ok := rs.lookupScoped(param, selfType, methodType); ok {
			return
		}
		if rs.reg.DeclaresParam(methodType, param) {
			rs.reg.BindInstance(methodType, param, concrete)
			return
		}
		if rs.reg.DeclaresParam(selfType, param) {
			rs.reg.BindInstance(selfType, param, concrete)
		}
	case types.KindOptional:
		inner := rs.reg.OptionalInner(abstract)
		rs.InitializeAs(inner, rs.reg.OptionalInner(concrete), methodType, selfType)
	case types.KindBlock:
		rs.initializeBlock(abstract, concrete, methodType, selfType)
	case types.KindObject, types.KindTrait:
		rs.initializeGeneric(abstract, concrete, methodType, selfType)
	}
}

func (rs *Resolver) initializeBlock(abstract, concrete, methodType, selfType types.TypeID) {
	abstractInfo, ok := rs.reg.BlockInfo(abstract)
	if !ok {
		return
	}
	concreteInfo, ok := rs.reg.BlockInfo(concrete)
	if !ok {
		return
	}
	abstractArgs := abstractInfo.Args.All()
	concreteArgs := concreteInfo.Args.All()
	for i := 0; i < len(abstractArgs) && i < len(concreteArgs); i++ {
		rs.InitializeAs(abstractArgs[i].Type, concreteArgs[i].Type, methodType, selfType)
	}
	if abstractInfo.Throws != types.NoTypeID && concreteInfo.Throws != types.NoTypeID {
		rs.InitializeAs(abstractInfo.Throws, concreteInfo.Throws, methodType, selfType)
	}
	rs.InitializeAs(abstractInfo.Returns, concreteInfo.Returns, methodType, selfType)
}

func (rs *Resolver) initializeGeneric(abstract, concrete, methodType, selfType types.TypeID) {
	base := rs.reg.BaseType(abstract)
	if base != rs.reg.BaseType(concrete) {
		return
	}
	for _, param := range rs.reg.ParamsOf(base).All() {
		abstractValue, ok := rs.reg.LookupInstance(abstract, param)
		if !ok {
			abstractValue = param
		}
		concreteValue, ok := rs.reg.LookupInstance(concrete, param)
		if !ok {
			continue
		}
		rs.InitializeAs(abstractValue, concreteValue, methodType, selfType)
	}
}

// lookupScoped finds the binding for param, consulting the method type's
// map before the self type's.
func (rs *Resolver) lookupScoped(param, selfType, methodType types.TypeID) (types.TypeID, bool) {
	if methodType != types.NoTypeID {
		if value, ok := rs.reg.LookupInstance(methodType, param); ok {
			return value, true
		}
	}
	if selfType != types.NoTypeID {
		if value, ok := rs.reg.LookupInstance(selfType, param); ok {
			return value, true
		}
	}
	return types.NoTypeID, false
}

// remapParam redirects a parameter reference through the method type's
// per-call bounds when a bound with the same name shadows the owner's
// parameter.
func (rs *Resolver) remapParam(param, methodType types.TypeID) types.TypeID {
	info, ok := rs.reg.BlockInfo(methodType)
	if !ok || info.Bounds.Len() == 0 {
		return param
	}
	if bound, found := info.Bounds.ByName(rs.reg.Name(param)); found {
		return bound
	}
	return param
}
