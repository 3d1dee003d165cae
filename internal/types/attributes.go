package types

import "loom/internal/source"

// Attribute is one named slot in a type: a field, a constant, or a method
// (an attribute whose value is a block type).
type Attribute struct {
	Name    source.StringID
	Type    TypeID
	Mutable bool
}

// AttributeTable maps names to attributes while preserving definition order.
// Order matters for blocks, which reuse the table for their arguments. A
// table is shared by pointer between a generic definition and every instance
// spawned from it.
type AttributeTable struct {
	index map[source.StringID]int
	attrs []Attribute
}

func NewAttributeTable() *AttributeTable {
	return &AttributeTable{index: make(map[source.StringID]int, 4)}
}

// Define inserts or replaces the attribute for name. Rejecting redefinition
// is the caller's job; the table itself last-writer-wins.
func (t *AttributeTable) Define(name source.StringID, typ TypeID, mutable bool) {
	if i, ok := t.index[name]; ok {
		t.attrs[i] = Attribute{Name: name, Type: typ, Mutable: mutable}
		return
	}
	t.index[name] = len(t.attrs)
	t.attrs = append(t.attrs, Attribute{Name: name, Type: typ, Mutable: mutable})
}

// Lookup returns the attribute for name. The zero Attribute plus false is
// the explicit "not found" result; callers can chain fallbacks safely.
func (t *AttributeTable) Lookup(name source.StringID) (Attribute, bool) {
	if t == nil {
		return Attribute{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Attribute{}, false
	}
	return t.attrs[i], true
}

func (t *AttributeTable) Has(name source.StringID) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

func (t *AttributeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.attrs)
}

// At returns the i-th attribute in definition order.
func (t *AttributeTable) At(i int) Attribute {
	return t.attrs[i]
}

// All returns the attributes in definition order. The slice aliases the
// table's storage; callers must not modify it.
func (t *AttributeTable) All() []Attribute {
	if t == nil {
		return nil
	}
	return t.attrs
}
