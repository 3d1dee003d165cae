package types

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// Snapshot is a flat, pointer-free export of the whole type arena, meant for
// debug dumps and golden tests. It is one-way: snapshots are never loaded
// back into a live registry.
type Snapshot struct {
	Schema  uint16
	Strings []string

	Types   []SnapshotType
	Objects []SnapshotObject
	Traits  []SnapshotTrait
	Params  []SnapshotParam
	Blocks  []SnapshotBlock
}

// SnapshotType mirrors one arena slot.
type SnapshotType struct {
	ID      uint32
	Kind    uint8
	Elem    uint32
	Payload uint32
}

// SnapshotAttribute is one attribute-table entry.
type SnapshotAttribute struct {
	Name    uint32
	Type    uint32
	Mutable bool
}

// SnapshotObject captures an object slot, instances included.
type SnapshotObject struct {
	ID        uint32
	Name      uint32
	Proto     uint32
	Base      uint32
	Attrs     []SnapshotAttribute
	Params    []uint32
	Impl      []uint32
	Instances map[uint32]uint32
}

// SnapshotTrait extends SnapshotObject with trait-only collections.
type SnapshotTrait struct {
	SnapshotObject
	Unique   uint32
	Required []uint32
	Methods  []SnapshotAttribute
}

// SnapshotParam captures a type parameter and its bound.
type SnapshotParam struct {
	ID     uint32
	Name   uint32
	Bounds []uint32
}

// SnapshotBlock captures a callable signature.
type SnapshotBlock struct {
	ID       uint32
	Name     uint32
	Kind     uint8
	Proto    uint32
	Base     uint32
	Args     []SnapshotAttribute
	Required int
	Rest     bool
	Throws   uint32
	Returns  uint32
	Params   []uint32
	Bounds   []uint32
}

// Snapshot serializes the registry to msgpack.
func (r *Registry) Snapshot() ([]byte, error) {
	payload := Snapshot{
		Schema:  snapshotSchemaVersion,
		Strings: r.strings.Snapshot(),
	}
	for id := TypeID(1); int(id) < len(r.types); id++ {
		tt := r.types[id]
		payload.Types = append(payload.Types, SnapshotType{
			ID:      uint32(id),
			Kind:    uint8(tt.Kind),
			Elem:    uint32(tt.Elem),
			Payload: tt.Payload,
		})
		switch tt.Kind {
		case KindObject:
			payload.Objects = append(payload.Objects, r.snapshotObject(id, &r.objects[tt.Payload]))
		case KindTrait:
			info := &r.traits[tt.Payload]
			payload.Traits = append(payload.Traits, SnapshotTrait{
				SnapshotObject: r.snapshotObject(id, &info.ObjectInfo),
				Unique:         uint32(info.Unique),
				Required:       snapshotTypeIDs(info.Required.Values()),
				Methods:        snapshotAttrs(info.Methods),
			})
		case KindTypeParam:
			info := r.params[tt.Payload]
			payload.Params = append(payload.Params, SnapshotParam{
				ID:     uint32(id),
				Name:   uint32(info.Name),
				Bounds: snapshotTypeIDs(info.Bounds),
			})
		case KindBlock:
			info := &r.blocks[tt.Payload]
			payload.Blocks = append(payload.Blocks, SnapshotBlock{
				ID:       uint32(id),
				Name:     uint32(info.Name),
				Kind:     uint8(info.Kind),
				Proto:    uint32(info.Proto),
				Base:     uint32(info.Base),
				Args:     snapshotAttrs(info.Args),
				Required: info.Required,
				Rest:     info.Rest,
				Throws:   uint32(info.Throws),
				Returns:  uint32(info.Returns),
				Params:   snapshotTypeIDs(info.Params.All()),
				Bounds:   snapshotTypeIDs(info.Bounds.All()),
			})
		}
	}
	return msgpack.Marshal(&payload)
}

// DecodeSnapshot parses a snapshot payload, validating the schema version.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var payload Snapshot
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("types: decoding snapshot: %w", err)
	}
	if payload.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("types: snapshot schema %d, want %d", payload.Schema, snapshotSchemaVersion)
	}
	return &payload, nil
}

func (r *Registry) snapshotObject(id TypeID, info *ObjectInfo) SnapshotObject {
	return SnapshotObject{
		ID:        uint32(id),
		Name:      uint32(info.Name),
		Proto:     uint32(info.Proto),
		Base:      uint32(info.Base),
		Attrs:     snapshotAttrs(info.Attrs),
		Params:    snapshotTypeIDs(info.Params.All()),
		Impl:      snapshotTypeIDs(info.Impl.Values()),
		Instances: snapshotInstances(info.Inst),
	}
}

func snapshotAttrs(table *AttributeTable) []SnapshotAttribute {
	attrs := table.All()
	if len(attrs) == 0 {
		return nil
	}
	out := make([]SnapshotAttribute, len(attrs))
	for i, attr := range attrs {
		out[i] = SnapshotAttribute{
			Name:    uint32(attr.Name),
			Type:    uint32(attr.Type),
			Mutable: attr.Mutable,
		}
	}
	return out
}

func snapshotTypeIDs(ids []TypeID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

func snapshotInstances(inst InstanceMap) map[uint32]uint32 {
	if len(inst) == 0 {
		return nil
	}
	out := make(map[uint32]uint32, len(inst))
	for param, value := range inst {
		out[uint32(param)] = uint32(value)
	}
	return out
}
