package types

import "strings"

// DisplayName renders a type for diagnostic text. The grammar:
//
//	Name                          plain nominal or trait type
//	Name!(P1, P2)                 when parameters are present
//	?Type                         optional
//	do !(B) (A1, A2) !! T -> R    block; "lam" for lambdas, the !(...) and
//	                              !! clauses are omitted when absent
//
// Unresolved parameters render as their bound trait names joined by " + ",
// or their bare name when unbounded; bound parameters render as the
// resolved instance's name.
func (r *Registry) DisplayName(id TypeID) string {
	tt, ok := r.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindDynamic:
		return "Dynamic"
	case KindNever:
		return "Never"
	case KindVoid:
		return "Void"
	case KindError:
		return "Error"
	case KindSelf:
		return "Self"
	case KindOptional:
		return "?" + r.DisplayName(tt.Elem)
	case KindTypeParam:
		return r.paramDisplay(id)
	case KindRigidParam:
		return r.paramDisplay(r.rigidInfos[tt.Payload].Param)
	case KindObject, KindTrait:
		name, _ := r.strings.Lookup(r.objectLike(id).Name)
		if clause := r.paramsClause(id); clause != "" {
			return name + "!(" + clause + ")"
		}
		return name
	case KindBlock:
		return r.blockDisplay(id)
	}
	return "<invalid>"
}

// DisplayNameWithBound renders a parameter together with its bound, e.g.
// "T: Equal + Compare".
func (r *Registry) DisplayNameWithBound(id TypeID) string {
	if rigid, ok := r.RigidInfo(id); ok {
		id = rigid.Param
	}
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindTypeParam {
		return r.DisplayName(id)
	}
	info := r.params[tt.Payload]
	name, _ := r.strings.Lookup(info.Name)
	if len(info.Bounds) == 0 {
		return name
	}
	return name + ": " + r.joinNames(info.Bounds, " + ")
}

func (r *Registry) paramDisplay(id TypeID) string {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindTypeParam {
		return "<invalid>"
	}
	info := r.params[tt.Payload]
	if len(info.Bounds) > 0 {
		return r.joinNames(info.Bounds, " + ")
	}
	name, _ := r.strings.Lookup(info.Name)
	return name
}

// paramsClause renders the declared parameters of id through its own
// instance map, empty when the type declares none.
func (r *Registry) paramsClause(id TypeID) string {
	table := r.ParamsOf(id)
	if table.Len() == 0 {
		return ""
	}
	inst := r.InstancesOf(id)
	parts := make([]string, 0, table.Len())
	for _, param := range table.All() {
		if value, ok := inst[param]; ok {
			parts = append(parts, r.DisplayName(value))
			continue
		}
		parts = append(parts, r.DisplayName(param))
	}
	return strings.Join(parts, ", ")
}

func (r *Registry) blockDisplay(id TypeID) string {
	info, _ := r.BlockInfo(id)
	var b strings.Builder
	if info.Kind == BlockLambda {
		b.WriteString("lam")
	} else {
		b.WriteString("do")
	}
	if clause := r.paramsClause(id); clause != "" {
		b.WriteString(" !(")
		b.WriteString(clause)
		b.WriteString(")")
	}
	if args := info.Args.All(); len(args) > 0 {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = r.DisplayName(arg.Type)
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if info.Throws != NoTypeID {
		b.WriteString(" !! ")
		b.WriteString(r.DisplayName(info.Throws))
	}
	if info.Returns != NoTypeID {
		b.WriteString(" -> ")
		b.WriteString(r.DisplayName(info.Returns))
	}
	return b.String()
}

func (r *Registry) joinNames(ids []TypeID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = r.DisplayName(id)
	}
	return strings.Join(parts, sep)
}
