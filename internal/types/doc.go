// Package types implements the static type model of the compiler front end:
// a registry arena handing out TypeID handles for every variant (nominal
// objects, traits, type parameters, callable blocks, optionals and the
// Dynamic/Never/Void/Error/Self singletons), plus the attribute, parameter
// and trait bookkeeping those variants carry.
//
// Definitions are shared mutable state addressed by identity: mutating a
// definition's tables while declarations are processed is expected, and the
// surrounding pass guarantees strictly sequential definition-then-use
// ordering. Instances spawned with NewInstance share their definition's
// tables by reference and own only a disjoint parameter instance map.
//
// The decision procedures over this model (compatibility, generic
// resolution) live in internal/sema.
package types
