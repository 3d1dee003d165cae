package sema

import (
	"testing"

	"loom/internal/types"
)

func newChecker(t *testing.T) (*types.Registry, *Checker) {
	t.Helper()
	reg := types.NewRegistry(nil)
	return reg, NewChecker(reg)
}

func TestCompatibleReflexive(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	obj := reg.RegisterObject(reg.Intern("Point"), b.Object)
	trait := reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID)
	param := reg.RegisterTypeParam(reg.Intern("T"), nil)
	block := reg.RegisterBlock(reg.Intern("f"), types.BlockClosure, types.NoTypeID)
	opt := reg.Optional(b.Integer)

	for _, id := range []types.TypeID{b.Integer, obj, trait, param, block, opt, b.SelfType} {
		if !c.Compatible(id, id) {
			t.Errorf("%s must be compatible with itself", reg.DisplayName(id))
		}
	}
}

func TestDynamicAndErrorAreUniversal(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	others := []types.TypeID{
		b.Integer,
		reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID),
		reg.Optional(b.String),
		reg.RegisterBlock(reg.Intern("f"), types.BlockMethod, types.NoTypeID),
	}
	for _, universal := range []types.TypeID{b.Dynamic, b.Error} {
		for _, other := range others {
			if !c.Compatible(universal, other) {
				t.Errorf("%s -> %s must hold", reg.DisplayName(universal), reg.DisplayName(other))
			}
			if !c.Compatible(other, universal) {
				t.Errorf("%s -> %s must hold", reg.DisplayName(other), reg.DisplayName(universal))
			}
		}
	}
}

func TestBottomTypes(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	for _, bottom := range []types.TypeID{b.Never, b.Void} {
		if !c.Compatible(bottom, b.Integer) {
			t.Errorf("%s must be usable anywhere", reg.DisplayName(bottom))
		}
		if c.Compatible(b.Integer, bottom) {
			t.Errorf("nothing but %s itself inhabits %s", reg.DisplayName(bottom), reg.DisplayName(bottom))
		}
	}
}

func TestUnresolvedSelf(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	if c.Compatible(b.SelfType, b.Integer) {
		t.Fatalf("an unresolved Self must not satisfy a concrete expectation")
	}
	if c.Compatible(b.Integer, b.SelfType) {
		t.Fatalf("a concrete type must not satisfy an unresolved Self")
	}
}

func TestOptionalCompatibility(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	optInt := reg.Optional(b.Integer)
	optFloat := reg.Optional(b.Float)

	if !c.Compatible(optInt, reg.Optional(b.Integer)) {
		t.Fatalf("?Integer -> ?Integer must hold")
	}
	if c.Compatible(optInt, optFloat) {
		t.Fatalf("?Integer -> ?Float must fail on the wrapped types")
	}
	if c.Compatible(optInt, b.Integer) {
		t.Fatalf("an optional never satisfies a bare expectation")
	}
	// A bare value satisfies an optional through its wrapped type.
	if !c.Compatible(b.Integer, optInt) {
		t.Fatalf("Integer -> ?Integer must hold through the wrapped type")
	}
	if c.Compatible(b.Integer, optFloat) {
		t.Fatalf("Integer -> ?Float has no path")
	}

	free := reg.RegisterTypeParam(reg.Intern("T"), nil)
	bounded := reg.RegisterTypeParam(reg.Intern("U"), []types.TypeID{
		reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID),
	})
	if !c.Compatible(optInt, free) {
		t.Fatalf("an optional satisfies an unconstrained parameter")
	}
	if c.Compatible(optInt, bounded) {
		t.Fatalf("an optional never satisfies a bounded parameter")
	}
}

func TestOptionMarkerFallback(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	marker := reg.RegisterTrait(reg.Intern("Option"), types.NoTypeID)
	none := reg.RegisterObject(reg.Intern("NilOption"), b.Object)
	r := reg.Optional(b.Float)

	if c.Compatible(none, r) {
		t.Fatalf("unrelated object must not satisfy ?Float before the marker is wired")
	}
	reg.SetOptionMarker(marker)
	reg.Implement(none, marker)
	if !c.Compatible(none, r) {
		t.Fatalf("an implementer of the option marker satisfies any optional")
	}
}

func TestObjectImplementsTrait(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	trait := reg.RegisterTrait(reg.Intern("ToString"), types.NoTypeID)
	obj := reg.RegisterObject(reg.Intern("User"), b.Object)

	if c.Compatible(obj, trait) {
		t.Fatalf("object without the implementation must be rejected")
	}
	reg.Implement(obj, trait)
	if !c.Compatible(obj, trait) {
		t.Fatalf("implementer must satisfy its trait")
	}

	child := reg.RegisterObject(reg.Intern("Admin"), obj)
	if !c.Compatible(child, trait) {
		t.Fatalf("implementations are inherited through the prototype chain")
	}
}

func TestObjectPrototypeFallback(t *testing.T) {
	reg, c := newChecker(t)
	parent := reg.RegisterObject(reg.Intern("Shape"), types.NoTypeID)
	child := reg.RegisterObject(reg.Intern("Circle"), parent)
	other := reg.RegisterObject(reg.Intern("Song"), types.NoTypeID)

	if !c.Compatible(child, parent) {
		t.Fatalf("a descendant satisfies its ancestor")
	}
	if c.Compatible(parent, child) {
		t.Fatalf("the ancestor does not satisfy a descendant")
	}
	if c.Compatible(child, other) {
		t.Fatalf("unrelated objects are incompatible")
	}
}

func TestObjectAgainstParameter(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	equal := reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID)
	compare := reg.RegisterTrait(reg.Intern("Compare"), types.NoTypeID)
	obj := reg.RegisterObject(reg.Intern("Pixel"), b.Object)
	reg.Implement(obj, equal)

	free := reg.RegisterTypeParam(reg.Intern("T"), nil)
	one := reg.RegisterTypeParam(reg.Intern("E"), []types.TypeID{equal})
	two := reg.RegisterTypeParam(reg.Intern("C"), []types.TypeID{equal, compare})

	if !c.Compatible(obj, free) {
		t.Fatalf("any object satisfies an unconstrained parameter")
	}
	if !c.Compatible(obj, one) {
		t.Fatalf("object implementing the bound must satisfy the parameter")
	}
	if c.Compatible(obj, two) {
		t.Fatalf("every bound must be implemented, not just some")
	}
}

func TestTraitRequirementTransitivity(t *testing.T) {
	reg, c := newChecker(t)
	equal := reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID)
	compare := reg.RegisterTrait(reg.Intern("Compare"), types.NoTypeID)
	ordered := reg.RegisterTrait(reg.Intern("Ordered"), types.NoTypeID)
	reg.AddRequiredTrait(compare, equal)
	reg.AddRequiredTrait(ordered, compare)

	if !c.Compatible(ordered, compare) {
		t.Fatalf("a trait satisfies what it directly requires")
	}
	if !c.Compatible(ordered, equal) {
		t.Fatalf("requirements of requirements count")
	}
	if c.Compatible(equal, ordered) {
		t.Fatalf("the requirement walk is directional")
	}
}

func TestTraitAgainstParameter(t *testing.T) {
	reg, c := newChecker(t)
	equal := reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID)
	other := reg.RegisterTrait(reg.Intern("Hash"), types.NoTypeID)

	free := reg.RegisterTypeParam(reg.Intern("T"), nil)
	listed := reg.RegisterTypeParam(reg.Intern("E"), []types.TypeID{equal})
	unlisted := reg.RegisterTypeParam(reg.Intern("H"), []types.TypeID{other})

	if !c.Compatible(equal, free) {
		t.Fatalf("a trait satisfies an unconstrained parameter")
	}
	if !c.Compatible(equal, listed) {
		t.Fatalf("a trait satisfies a parameter that lists it as a bound")
	}
	if c.Compatible(equal, unlisted) {
		t.Fatalf("a trait must appear among the parameter's bounds")
	}
}

func TestParameterAgainstParameterAndTrait(t *testing.T) {
	reg, c := newChecker(t)
	equal := reg.RegisterTrait(reg.Intern("Equal"), types.NoTypeID)
	compare := reg.RegisterTrait(reg.Intern("Compare"), types.NoTypeID)
	reg.AddRequiredTrait(compare, equal)

	strong := reg.RegisterTypeParam(reg.Intern("C"), []types.TypeID{compare})
	weak := reg.RegisterTypeParam(reg.Intern("E"), []types.TypeID{equal})

	if !c.Compatible(strong, weak) {
		t.Fatalf("a Compare-bounded parameter carries Equal through requirement")
	}
	if c.Compatible(weak, strong) {
		t.Fatalf("an Equal bound does not supply Compare")
	}
	if !c.Compatible(strong, equal) {
		t.Fatalf("parameter bounds satisfy traits they transitively require")
	}
	if c.Compatible(weak, compare) {
		t.Fatalf("parameter without the bound must be rejected")
	}
}

func TestRigidParameterIdentity(t *testing.T) {
	reg, c := newChecker(t)
	owner := reg.RegisterObject(reg.Intern("List"), types.NoTypeID)
	param := reg.DefineParameter(owner, reg.Intern("T"), nil)
	rigid := reg.RegisterRigid(param, owner)

	if !c.Compatible(rigid, param) || !c.Compatible(param, rigid) {
		t.Fatalf("a rigid parameter is the same parameter as its declaration")
	}
}

func TestParameterAgainstObject(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	numeric := reg.RegisterTrait(reg.Intern("Numeric"), b.Integer)
	bounded := reg.RegisterTypeParam(reg.Intern("N"), []types.TypeID{numeric})

	if !c.Compatible(bounded, b.Integer) {
		t.Fatalf("the bound's prototype chain reaches Integer")
	}
	if c.Compatible(bounded, b.Float) {
		t.Fatalf("Float is not in the bound's prototype chain")
	}
}

func TestSameFamilyLooseness(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	array := b.Array
	reg.DefineParameter(array, reg.Intern("T"), nil)

	ints, err := reg.NewInstance(array, []types.TypeID{b.Integer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	floats, err := reg.NewInstance(array, []types.TypeID{b.Float})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blank, err := reg.NewInstance(array, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Compatible(ints, floats) || c.Compatible(floats, ints) {
		t.Fatalf("bound positions must be checked pairwise")
	}
	// An uninstantiated member of the family unifies in both directions.
	if !c.Compatible(blank, ints) || !c.Compatible(ints, blank) {
		t.Fatalf("an empty instance map unifies with any member of the family")
	}
	if !c.Compatible(ints, array) || !c.Compatible(array, ints) {
		t.Fatalf("the bare definition unifies with its own instances")
	}
}

func TestBlockKindMatrix(t *testing.T) {
	reg, c := newChecker(t)
	mk := func(kind types.BlockKind) types.TypeID {
		id := reg.RegisterBlock(reg.Intern("f"), kind, types.NoTypeID)
		reg.SetReturnType(id, reg.Builtins().Void)
		return id
	}
	method := mk(types.BlockMethod)
	closure := mk(types.BlockClosure)
	lambda := mk(types.BlockLambda)

	cases := []struct {
		ours, theirs types.TypeID
		want         bool
	}{
		{method, mk(types.BlockMethod), true},
		{method, closure, false},
		{lambda, closure, true},
		{lambda, mk(types.BlockLambda), true},
		{closure, mk(types.BlockClosure), true},
		{closure, lambda, false},
		{closure, method, false},
	}
	for _, tc := range cases {
		if got := c.Compatible(tc.ours, tc.theirs); got != tc.want {
			t.Errorf("kind matrix: %v -> %v = %v, want %v",
				reg.DisplayName(tc.ours), reg.DisplayName(tc.theirs), got, tc.want)
		}
	}
}

func TestBlockSignatures(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	mk := func(arg, ret types.TypeID) types.TypeID {
		id := reg.RegisterBlock(reg.Intern("f"), types.BlockClosure, types.NoTypeID)
		if arg != types.NoTypeID {
			reg.DefineArgument(id, reg.Intern("x"), arg, true)
		}
		reg.SetReturnType(id, ret)
		return id
	}

	if !c.Compatible(mk(b.Integer, b.Float), mk(b.Integer, b.Float)) {
		t.Fatalf("identical signatures must match")
	}
	if c.Compatible(mk(b.Integer, b.Float), mk(b.Float, b.Float)) {
		t.Fatalf("argument types must be compatible position by position")
	}
	if c.Compatible(mk(b.Integer, b.Float), mk(types.NoTypeID, b.Float)) {
		t.Fatalf("argument counts must agree")
	}
	if c.Compatible(mk(b.Integer, b.Integer), mk(b.Integer, b.Float)) {
		t.Fatalf("return types must be compatible")
	}

	rest := mk(b.Integer, b.Float)
	reg.SetRestArgument(rest, true)
	if c.Compatible(rest, mk(b.Integer, b.Float)) {
		t.Fatalf("rest-argument flags must agree")
	}
}

func TestBlockThrowTypes(t *testing.T) {
	reg, c := newChecker(t)
	b := reg.Builtins()
	mk := func(kind types.BlockKind, throws types.TypeID) types.TypeID {
		id := reg.RegisterBlock(reg.Intern("f"), kind, types.NoTypeID)
		if throws != types.NoTypeID {
			reg.SetThrowType(id, throws)
		}
		reg.SetReturnType(id, b.Void)
		return id
	}

	// Both silent, or both declaring compatible throw types: fine.
	if !c.Compatible(mk(types.BlockMethod, types.NoTypeID), mk(types.BlockMethod, types.NoTypeID)) {
		t.Fatalf("two silent methods must match")
	}
	if !c.Compatible(mk(types.BlockMethod, b.String), mk(types.BlockMethod, b.String)) {
		t.Fatalf("matching declared throw types must pass")
	}
	// One-sided silence is an error for methods, a courtesy for closures.
	if c.Compatible(mk(types.BlockMethod, b.String), mk(types.BlockMethod, types.NoTypeID)) {
		t.Fatalf("a method must not drop a declared throw type")
	}
	if !c.Compatible(mk(types.BlockClosure, b.String), mk(types.BlockClosure, types.NoTypeID)) {
		t.Fatalf("closures may omit throw types on either side")
	}
	if c.Compatible(mk(types.BlockMethod, b.Integer), mk(types.BlockMethod, b.String)) {
		t.Fatalf("declared throw types must be compatible")
	}
}

func TestBlockAgainstTrait(t *testing.T) {
	reg, c := newChecker(t)
	callable := reg.RegisterTrait(reg.Intern("Callable"), types.NoTypeID)
	proto := reg.RegisterObject(reg.Intern("BlockProto"), types.NoTypeID)
	reg.Implement(proto, callable)

	block := reg.RegisterBlock(reg.Intern("f"), types.BlockClosure, proto)
	if !c.Compatible(block, callable) {
		t.Fatalf("a block satisfies traits implemented by its prototype")
	}
}
