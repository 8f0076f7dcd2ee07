package translate

import (
	"fmt"

	"modernc.org/cc/v4"

	"github.com/Rageoholic/zig/internal/zigast"
)

// builtinTable maps cc.Kind for the fixed-width/known-name builtins to
// their Zig spelling. Signedness-dependent
// entries (char, short, int, long, long long) are resolved in
// integerBuiltin, which consults cc.IsSignedInteger additionally.
var builtinTable = map[cc.Kind]string{
	cc.Void:   "c_void",
	cc.Bool:   "bool",
	cc.Float:  "f32",
	cc.Double: "f64",
}

// builtinTypedefFastPath recognises the fixed-width stdint names and
// short-circuits straight to the Zig primitive, bypassing full
// translation.
var builtinTypedefFastPath = map[string]string{
	"int8_t":    "i8",
	"uint8_t":   "u8",
	"int16_t":   "i16",
	"uint16_t":  "u16",
	"int32_t":   "i32",
	"uint32_t":  "u32",
	"int64_t":   "i64",
	"uint64_t":  "u64",
	"size_t":    "usize",
	"ssize_t":   "isize",
	"intptr_t":  "isize",
	"uintptr_t": "usize",
}

// typeTranslator holds the part of *ctx (see decl.go) concerned
// with type translation. ctx holds it by pointer in its types field.
type typeTranslator struct {
	ctx *Context

	// aliasCache memoizes Typedef -> already-built type expr, so a
	// typedef referenced from a thousand call sites is translated once.
	aliasCache map[*cc.TypedefType]*zigast.Node
}

func newTypeTranslator(c *Context) *typeTranslator {
	return &typeTranslator{ctx: c, aliasCache: map[*cc.TypedefType]*zigast.Node{}}
}

// translateType is the entry point for type translation: C QualType
// to Target type expression.
func (tt *typeTranslator) translateType(pos string, t cc.Type) (*zigast.Node, error) {
	a := tt.ctx.Arena
	switch x := t.(type) {
	case *cc.TypedefType:
		if zig, ok := builtinTypedefFastPath[x.Name()]; ok {
			return a.TypeExpr(zig), nil
		}
		if cached, ok := tt.aliasCache[x]; ok {
			return cached, nil
		}
		under, err := tt.translateType(pos, x.Underlying())
		if err != nil {
			return nil, err
		}
		tt.aliasCache[x] = under
		return under, nil

	case *cc.PointerType:
		return tt.translatePointer(pos, x)

	case *cc.ArrayType:
		if x.Len() < 0 { // IncompleteArray
			elem, err := tt.translateType(pos, x.Elem())
			if err != nil {
				return nil, err
			}
			return a.TypeExpr(fmt.Sprintf("[*c]%s", renderTypeExprText(elem))), nil
		}
		elem, err := tt.translateType(pos, x.Elem())
		if err != nil {
			return nil, err
		}
		return a.TypeExpr(fmt.Sprintf("[%d]%s", x.Len(), renderTypeExprText(elem))), nil

	case *cc.StructType:
		return tt.translateRecord(pos, x, "struct")

	case *cc.UnionType:
		return tt.translateRecord(pos, x, "union")

	case *cc.EnumType:
		return tt.translateEnum(pos, x)

	case *cc.FunctionType:
		return tt.translateFunctionProto(pos, x)

	default:
		if zig, ok := builtinTable[t.Kind()]; ok {
			return a.TypeExpr(zig), nil
		}
		if zig, ok := integerBuiltin(t); ok {
			return a.TypeExpr(zig), nil
		}
		return nil, unsupportedType(pos, "cannot express C type %v in Zig", t)
	}
}

// integerBuiltin resolves the signed/unsigned integer ladder
// (char/short/int/long/long long/__int128) to its Zig spelling, for
// the width classes whose Zig type depends on signedness rather than
// being fixed 1:1.
func integerBuiltin(t cc.Type) (string, bool) {
	signed := cc.IsSignedInteger(t)
	switch t.Kind() {
	case cc.Char, cc.SChar, cc.UChar:
		if signed {
			return "i8", true
		}
		return "u8", true
	case cc.Short, cc.UShort:
		if signed {
			return "c_short", true
		}
		return "c_ushort", true
	case cc.Int, cc.UInt:
		if signed {
			return "c_int", true
		}
		return "c_uint", true
	case cc.Long, cc.ULong:
		if signed {
			return "c_long", true
		}
		return "c_ulong", true
	case cc.LongLong, cc.ULongLong:
		if signed {
			return "c_longlong", true
		}
		return "c_ulonglong", true
	case cc.Int128, cc.UInt128:
		if signed {
			return "i128", true
		}
		return "u128", true
	case cc.LongDouble:
		return "c_longdouble", true
	}
	return "", false
}

// translatePointer translates a pointer type: function-prototype
// pointees wrap in Optional(T); opaque/demoted pointees get a single
// pointer; everything else gets a C-pointer, since only single
// pointers require non-null provenance the front-end can't guarantee.
func (tt *typeTranslator) translatePointer(pos string, p *cc.PointerType) (*zigast.Node, error) {
	pointee := p.Elem()
	a := tt.ctx.Arena

	if _, ok := pointee.(*cc.FunctionType); ok {
		inner, err := tt.translateType(pos, pointee)
		if err != nil {
			return nil, err
		}
		return a.TypeExpr(fmt.Sprintf("?%s", renderTypeExprText(inner))), nil
	}

	inner, err := tt.translateType(pos, pointee)
	if err != nil {
		return nil, err
	}
	qual := ""
	if cc.IsConst(pointee) {
		qual += "const "
	}
	if cc.IsVolatile(pointee) {
		qual += "volatile "
	}
	if tt.wasDemotedToOpaque(pointee) {
		return a.TypeExpr(fmt.Sprintf("*%s%s", qual, renderTypeExprText(inner))), nil
	}
	return a.TypeExpr(fmt.Sprintf("[*c]%s%s", qual, renderTypeExprText(inner))), nil
}

// wasDemotedToOpaque follows typedef and attributed-type chains to
// answer whether qt ultimately names a demoted record/enum.
func (tt *typeTranslator) wasDemotedToOpaque(qt cc.Type) bool {
	for {
		switch x := qt.(type) {
		case *cc.TypedefType:
			qt = x.Underlying()
			continue
		case *cc.AttributedType:
			qt = x.Base()
			continue
		case *cc.StructType:
			return tt.ctx.isDemoted(x)
		case *cc.UnionType:
			return tt.ctx.isDemoted(x)
		case *cc.EnumType:
			return tt.ctx.isDemoted(x)
		default:
			return false
		}
	}
}

// translateRecord is invoked both from translateType (a record
// referenced by value/pointer) and directly from the Declaration
// Visitor for the record's own top-level definition; the two
// call sites share this so a forward reference and the eventual
// definition agree on demotion.
func (tt *typeTranslator) translateRecord(pos string, rt cc.Type, kind string) (*zigast.Node, error) {
	a := tt.ctx.Arena
	fields, demoted, err := tt.translateFields(pos, rt)
	if err != nil {
		return nil, err
	}
	if demoted {
		tt.ctx.demote(rt)
		return a.RecordType("opaque"), nil
	}
	if cc.HasAttribute(rt, "packed") {
		return a.PackedRecordType(kind, fields...), nil
	}
	return a.RecordType(kind, fields...), nil
}

// translateFields walks a record's members: a
// bit-field, a flexible-array member, or any member whose type
// translation fails demotes the whole record to opaque. Anonymous
// fields receive a synthesised unnamed_N name.
func (tt *typeTranslator) translateFields(pos string, rt cc.Type) (fields []*zigast.Node, demoted bool, err error) {
	a := tt.ctx.Arena
	fr, ok := rt.(cc.FieldLister)
	if !ok {
		return nil, false, nil
	}
	anon := 0
	for _, f := range fr.Fields() {
		if f.IsBitfield() || f.IsFlexibleArrayMember() {
			return nil, true, nil
		}
		ft, ferr := tt.translateType(pos, f.Type())
		if ferr != nil {
			return nil, true, nil
		}
		name := f.Name()
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", anon)
			anon++
		}
		fields = append(fields, a.Field(name, ft, f.Align()))
	}
	return fields, false, nil
}

// translateEnum translates an enum type at the type-expression level:
// a tag-only enum when every enumerator has an implicit value,
// otherwise this just returns the tag type — the Declaration Visitor
// is responsible for additionally emitting the individual constants
// and their top-level aliases.
func (tt *typeTranslator) translateEnum(pos string, et *cc.EnumType) (*zigast.Node, error) {
	a := tt.ctx.Arena
	tagExpr, err := tt.translateType(pos, et.UnderlyingType())
	if err != nil {
		return nil, err
	}
	if allImplicit(et) {
		var members []*zigast.Node
		for _, e := range et.Enumerators() {
			members = append(members, a.Enumerator(e.Name(), ""))
		}
		return a.EnumType(renderTypeExprText(tagExpr), true, members...), nil
	}
	return tagExpr, nil
}

func allImplicit(et *cc.EnumType) bool {
	for _, e := range et.Enumerators() {
		if e.HasExplicitValue() {
			return false
		}
	}
	return true
}

func (tt *typeTranslator) translateFunctionProto(pos string, ft *cc.FunctionType) (*zigast.Node, error) {
	a := tt.ctx.Arena
	ret, err := tt.translateType(pos, ft.Result())
	if err != nil {
		return nil, err
	}
	var params []string
	for _, p := range ft.Parameters() {
		pt, perr := tt.translateType(pos, p.Type())
		if perr != nil {
			return nil, perr
		}
		params = append(params, renderTypeExprText(pt))
	}
	variadic := ""
	if ft.IsVariadic() {
		variadic = ", ..."
	}
	return a.TypeExpr(fmt.Sprintf("fn (%s%s) callconv(.C) %s", joinComma(params), variadic, renderTypeExprText(ret))), nil
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// renderTypeExprText renders n and trims the trailing newline Render
// adds between root-level nodes, so translateType's composite cases
// (pointer, array, function) can splice the result into a larger
// type-expression string.
func renderTypeExprText(n *zigast.Node) string {
	s := zigast.Render([]*zigast.Node{n})
	return s[:len(s)-1]
}
