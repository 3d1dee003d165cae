package types

import (
	"fmt"

	"fortio.org/safecast"

	"loom/internal/source"
)

// BlockInfo stores metadata for a callable type. Arguments live in an
// ordered attribute table so "self" and positional arguments share the same
// lookup machinery as object attributes. Bounds is the secondary parameter
// table that remaps type-parameter references when the block declares
// per-call bounds distinct from its owner's parameters.
type BlockInfo struct {
	Name  source.StringID
	Kind  BlockKind
	Proto TypeID
	Base  TypeID

	Args     *AttributeTable
	Required int // leading arguments a call must supply
	Rest     bool
	Throws   TypeID // NoTypeID when no throw type is declared
	Returns  TypeID

	Params *ParamTable
	Inst   InstanceMap
	Bounds *ParamTable
}

// RegisterBlock allocates a fresh callable type. The return type defaults to
// Dynamic until declared.
func (r *Registry) RegisterBlock(name source.StringID, kind BlockKind, proto TypeID) TypeID {
	slot := r.appendBlockInfo(BlockInfo{
		Name:    name,
		Kind:    kind,
		Proto:   proto,
		Args:    NewAttributeTable(),
		Returns: r.builtins.Dynamic,
		Params:  NewParamTable(),
		Inst:    make(InstanceMap),
		Bounds:  NewParamTable(),
	})
	return r.appendType(Type{Kind: KindBlock, Payload: slot})
}

// BlockInfo returns metadata for the provided block TypeID.
func (r *Registry) BlockInfo(id TypeID) (*BlockInfo, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindBlock {
		return nil, false
	}
	return &r.blocks[tt.Payload], true
}

// DeriveBlock spawns a copy of a block whose signature the caller owns: the
// argument table is fresh and empty while the parameter and bounds tables
// stay shared, so substituted argument, throw and return types can be
// declared without mutating the original. The required-argument count is
// rebuilt by DefineArgument.
func (r *Registry) DeriveBlock(base TypeID) TypeID {
	tt, ok := r.Lookup(base)
	if !ok || tt.Kind != KindBlock {
		return NoTypeID
	}
	info := r.blocks[tt.Payload]
	slot := r.appendBlockInfo(BlockInfo{
		Name:    info.Name,
		Kind:    info.Kind,
		Proto:   base,
		Base:    r.BaseType(base),
		Args:    NewAttributeTable(),
		Rest:    info.Rest,
		Throws:  info.Throws,
		Returns: info.Returns,
		Params:  info.Params,
		Inst:    make(InstanceMap),
		Bounds:  info.Bounds,
	})
	return r.appendType(Type{Kind: KindBlock, Payload: slot})
}

// DefineArgument appends an argument to the block's table. Required
// arguments must be declared before optional ones; the table keeps
// declaration order.
func (r *Registry) DefineArgument(block TypeID, name source.StringID, typ TypeID, required bool) {
	info, ok := r.BlockInfo(block)
	if !ok {
		return
	}
	info.Args.Define(name, typ, false)
	if required {
		info.Required++
	}
}

// SetRestArgument flags the block as accepting a trailing rest argument.
func (r *Registry) SetRestArgument(block TypeID, rest bool) {
	if info, ok := r.BlockInfo(block); ok {
		info.Rest = rest
	}
}

// SetThrowType declares the block's throw type.
func (r *Registry) SetThrowType(block, throws TypeID) {
	if info, ok := r.BlockInfo(block); ok {
		info.Throws = throws
	}
}

// SetReturnType declares the block's return type.
func (r *Registry) SetReturnType(block, returns TypeID) {
	if info, ok := r.BlockInfo(block); ok {
		info.Returns = returns
	}
}

// DefineMethodBound declares a per-call bound on the block, shadowing any
// owner parameter with the same name.
func (r *Registry) DefineMethodBound(block TypeID, name source.StringID, bounds []TypeID) TypeID {
	info, ok := r.BlockInfo(block)
	if !ok {
		return NoTypeID
	}
	param := r.RegisterTypeParam(name, bounds)
	info.Bounds.append(name, param)
	return param
}

// BlockArguments returns the block's arguments in declaration order.
func (r *Registry) BlockArguments(block TypeID) []Attribute {
	info, ok := r.BlockInfo(block)
	if !ok {
		return nil
	}
	return info.Args.All()
}

func (r *Registry) appendBlockInfo(info BlockInfo) uint32 {
	r.blocks = append(r.blocks, info)
	slot, err := safecast.Conv[uint32](len(r.blocks) - 1)
	if err != nil {
		panic(fmt.Errorf("block info overflow: %w", err))
	}
	return slot
}
