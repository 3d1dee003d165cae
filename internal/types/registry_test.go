package types

import "testing"

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry(nil)
	b := r.Builtins()
	if b.Dynamic == NoTypeID || b.Error == NoTypeID || b.Object == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if r.KindOf(b.Dynamic) != KindDynamic {
		t.Fatalf("expected dynamic kind, got %v", r.KindOf(b.Dynamic))
	}
	if r.KindOf(b.Integer) != KindObject {
		t.Fatalf("Integer should be a nominal object")
	}
	proto, ok := r.Prototype(b.Integer)
	if !ok || proto != b.Object {
		t.Fatalf("builtin objects must delegate to the root Object")
	}
}

func TestRegistryIdentityAllocation(t *testing.T) {
	r := NewRegistry(nil)
	name := r.Intern("Thing")
	a := r.RegisterObject(name, r.Builtins().Object)
	b := r.RegisterObject(name, r.Builtins().Object)
	if a == b {
		t.Fatalf("two registrations under one name must be distinct types")
	}
}

func TestTraitIDsMonotonicAndReproducible(t *testing.T) {
	r := NewRegistry(nil)
	first := r.TraitUnique(r.RegisterTrait(r.Intern("A"), NoTypeID))
	second := r.TraitUnique(r.RegisterTrait(r.Intern("B"), NoTypeID))
	if second <= first {
		t.Fatalf("trait ids must grow monotonically: %d then %d", first, second)
	}

	// A fresh registry restarts the counter so tests see stable ids.
	r2 := NewRegistry(nil)
	again := r2.TraitUnique(r2.RegisterTrait(r2.Intern("A"), NoTypeID))
	if again != first {
		t.Fatalf("fresh registry should reuse the first trait id, got %d want %d", again, first)
	}
}

func TestOptionalDeduplicated(t *testing.T) {
	r := NewRegistry(nil)
	integer := r.Builtins().Integer
	a := r.Optional(integer)
	b := r.Optional(integer)
	if a != b {
		t.Fatalf("optionals over the same inner type must be shared")
	}
	if r.Optional(a) != a {
		t.Fatalf("wrapping an optional again must be a no-op")
	}
	if r.OptionalInner(a) != integer {
		t.Fatalf("OptionalInner should unwrap one layer")
	}
	if r.OptionalInner(integer) != integer {
		t.Fatalf("OptionalInner on a non-optional should be identity")
	}
}

func TestRigidDeduplicated(t *testing.T) {
	r := NewRegistry(nil)
	trait := r.RegisterTrait(r.Intern("Equal"), NoTypeID)
	param := r.DefineParameter(trait, r.Intern("T"), nil)
	a := r.RegisterRigid(param, trait)
	b := r.RegisterRigid(param, trait)
	if a == NoTypeID || a != b {
		t.Fatalf("rigid pinning of the same parameter to the same owner must be shared")
	}
	info, ok := r.RigidInfo(a)
	if !ok || info.Param != param || info.Owner != trait {
		t.Fatalf("rigid info mismatch: %+v", info)
	}
}
