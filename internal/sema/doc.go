// Package sema holds the decision procedures over the type model: the
// compatibility checker and the generic resolver. Both are total, pure
// queries; the surrounding type-checking pass translates negative answers
// into diagnostics.
package sema
