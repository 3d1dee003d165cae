package sema

import "loom/internal/types"

// Checker answers the asymmetric compatibility question: may a value of the
// left type be used where the right type is expected. All answers are total;
// a negative answer is data for the surrounding pass to turn into a
// diagnostic, never an error raised here.
type Checker struct {
	reg *types.Registry
}

func NewChecker(reg *types.Registry) *Checker {
	return &Checker{reg: reg}
}

// Compatible reports whether ours may be supplied where theirs is expected.
// Dynamic and Error win immediately in either position; Never and Void are
// compatible as a source with everything. An unresolved Self placeholder is
// compatible only with itself: resolving it is a precondition of any real
// check.
func (c *Checker) Compatible(ours, theirs types.TypeID) bool {
	ourKind := c.reg.KindOf(ours)
	theirKind := c.reg.KindOf(theirs)
	if ourKind == types.KindDynamic || ourKind == types.KindError {
		return true
	}
	if theirKind == types.KindDynamic || theirKind == types.KindError {
		return true
	}
	if ourKind == types.KindNever || ourKind == types.KindVoid {
		return true
	}
	if ours == theirs {
		return true
	}
	switch ourKind {
	case types.KindOptional:
		return c.optionalCompatible(ours, theirs, theirKind)
	case types.KindTrait:
		return c.traitCompatible(ours, theirs, theirKind)
	case types.KindObject:
		return c.objectCompatible(ours, theirs, theirKind)
	case types.KindTypeParam, types.KindRigidParam:
		return c.paramCompatible(ours, theirs, theirKind)
	case types.KindBlock:
		return c.blockCompatible(ours, theirs, theirKind)
	}
	return false
}

// optionalCompatible: ?T unifies with ?U when T unifies with U, and with an
// unconstrained type parameter. A bare non-optional expected type never
// accepts an optional.
func (c *Checker) optionalCompatible(ours, theirs types.TypeID, theirKind types.Kind) bool {
	inner := c.reg.OptionalInner(ours)
	switch theirKind {
	case types.KindOptional:
		return c.Compatible(inner, c.reg.OptionalInner(theirs))
	case types.KindTypeParam, types.KindRigidParam:
		return len(c.reg.ParamBounds(theirs)) == 0
	}
	return false
}

func (c *Checker) traitCompatible(ours, theirs types.TypeID, theirKind types.Kind) bool {
	switch theirKind {
	case types.KindOptional:
		return c.Compatible(ours, c.reg.OptionalInner(theirs))
	case types.KindTrait:
		if c.reg.BaseType(ours) == c.reg.BaseType(theirs) {
			return c.sameFamilyCompatible(ours, theirs)
		}
		// Required traits of required traits count.
		if c.reg.RequiresTrait(ours, theirs) {
			return true
		}
		return c.reg.PrototypeChainContains(ours, theirs)
	case types.KindTypeParam, types.KindRigidParam:
		bounds := c.reg.ParamBounds(theirs)
		if len(bounds) == 0 {
			return true
		}
		base := c.reg.BaseType(ours)
		for _, bound := range bounds {
			if bound == ours || c.reg.BaseType(bound) == base {
				return true
			}
		}
		return false
	case types.KindObject:
		return c.reg.PrototypeChainContains(ours, theirs)
	}
	return false
}

func (c *Checker) objectCompatible(ours, theirs types.TypeID, theirKind types.Kind) bool {
	switch theirKind {
	case types.KindOptional:
		if c.Compatible(ours, c.reg.OptionalInner(theirs)) {
			return true
		}
		marker := c.reg.OptionMarker()
		return marker != types.NoTypeID && c.reg.ImplementsTrait(ours, marker)
	case types.KindTrait:
		return c.reg.ImplementsTrait(ours, theirs)
	case types.KindTypeParam, types.KindRigidParam:
		for _, bound := range c.reg.ParamBounds(theirs) {
			if !c.reg.ImplementsTrait(ours, bound) {
				return false
			}
		}
		return true
	case types.KindObject:
		if c.reg.BaseType(ours) == c.reg.BaseType(theirs) {
			return c.sameFamilyCompatible(ours, theirs)
		}
		return c.reg.PrototypeChainContains(ours, theirs)
	}
	return c.reg.PrototypeChainContains(ours, theirs)
}

// paramCompatible handles a type parameter (rigid or not) in source
// position, judged entirely by its bound.
func (c *Checker) paramCompatible(ours, theirs types.TypeID, theirKind types.Kind) bool {
	bounds := c.reg.ParamBounds(ours)
	switch theirKind {
	case types.KindOptional:
		return c.Compatible(ours, c.reg.OptionalInner(theirs))
	case types.KindTypeParam, types.KindRigidParam:
		if c.sameParam(ours, theirs) {
			return true
		}
		for _, need := range c.reg.ParamBounds(theirs) {
			if !c.boundsSatisfy(bounds, need) {
				return false
			}
		}
		return true
	case types.KindTrait:
		return c.boundsSatisfy(bounds, theirs)
	case types.KindObject:
		base := c.reg.BaseType(theirs)
		for _, bound := range bounds {
			if !c.reg.PrototypeChainContains(bound, base) {
				return false
			}
		}
		return true
	}
	return false
}

func (c *Checker) blockCompatible(ours, theirs types.TypeID, theirKind types.Kind) bool {
	switch theirKind {
	case types.KindTrait:
		return c.reg.ImplementsTrait(ours, theirs)
	case types.KindBlock:
		return c.blocksCompatible(ours, theirs)
	}
	return c.reg.PrototypeChainContains(ours, theirs)
}

func (c *Checker) blocksCompatible(ours, theirs types.TypeID) bool {
	our, _ := c.reg.BlockInfo(ours)
	their, _ := c.reg.BlockInfo(theirs)
	if !blockKindMatches(our.Kind, their.Kind) {
		return false
	}
	if our.Rest != their.Rest {
		return false
	}
	ourArgs := our.Args.All()
	theirArgs := their.Args.All()
	if len(ourArgs) != len(theirArgs) {
		return false
	}
	resolver := Resolver{reg: c.reg}
	for i := range ourArgs {
		ourArg := resolver.Resolve(ourArgs[i].Type, ours, ours)
		theirArg := resolver.Resolve(theirArgs[i].Type, theirs, theirs)
		if !c.Compatible(ourArg, theirArg) {
			return false
		}
	}
	if !c.throwCompatible(our, their, ours, theirs) {
		return false
	}
	ourRet := resolver.Resolve(our.Returns, ours, ours)
	theirRet := resolver.Resolve(their.Returns, theirs, theirs)
	return c.Compatible(ourRet, theirRet)
}

// throwCompatible: a missing throw type on either side is permitted only for
// closures and lambdas. Methods must declare throw types explicitly to be
// overridden, so a one-sided absence fails.
func (c *Checker) throwCompatible(our, their *types.BlockInfo, ours, theirs types.TypeID) bool {
	switch {
	case our.Throws == types.NoTypeID && their.Throws == types.NoTypeID:
		return true
	case our.Throws == types.NoTypeID || their.Throws == types.NoTypeID:
		return our.Kind != types.BlockMethod && their.Kind != types.BlockMethod
	}
	resolver := Resolver{reg: c.reg}
	return c.Compatible(
		resolver.Resolve(our.Throws, ours, ours),
		resolver.Resolve(their.Throws, theirs, theirs),
	)
}

// sameFamilyCompatible implements the same-generic-family rule: identical
// base types, and either side with a fully empty instance map unifies
// unconditionally so not-yet-constrained literals can be pinned later.
func (c *Checker) sameFamilyCompatible(ours, theirs types.TypeID) bool {
	ourInst := c.reg.InstancesOf(ours)
	theirInst := c.reg.InstancesOf(theirs)
	if len(ourInst) == 0 || len(theirInst) == 0 {
		return true
	}
	table := c.reg.ParamsOf(c.reg.BaseType(ours))
	for _, param := range table.All() {
		ourValue, ok := ourInst[param]
		if !ok {
			ourValue = param
		}
		theirValue, ok := theirInst[param]
		if !ok {
			theirValue = param
		}
		// Both sides left the position unbound: trivially compatible.
		if ourValue == theirValue {
			continue
		}
		if !c.Compatible(ourValue, theirValue) {
			return false
		}
	}
	return true
}

// boundsSatisfy: one of bounds is target or transitively requires it.
func (c *Checker) boundsSatisfy(bounds []types.TypeID, target types.TypeID) bool {
	base := c.reg.BaseType(target)
	for _, bound := range bounds {
		if bound == target || c.reg.BaseType(bound) == base {
			return true
		}
		if c.reg.RequiresTrait(bound, target) {
			return true
		}
	}
	return false
}

// sameParam compares parameters through any rigid pinning.
func (c *Checker) sameParam(a, b types.TypeID) bool {
	if rigid, ok := c.reg.RigidInfo(a); ok {
		a = rigid.Param
	}
	if rigid, ok := c.reg.RigidInfo(b); ok {
		b = rigid.Param
	}
	return a == b
}

func blockKindMatches(ours, theirs types.BlockKind) bool {
	switch ours {
	case types.BlockMethod:
		return theirs == types.BlockMethod
	case types.BlockLambda:
		return theirs == types.BlockLambda || theirs == types.BlockClosure
	case types.BlockClosure:
		return theirs == types.BlockClosure
	}
	return false
}
