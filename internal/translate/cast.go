package translate

import (
	"math/big"

	"lukechampine.com/uint128"
	"modernc.org/cc/v4"

	"github.com/Rageoholic/zig/internal/zigast"
)

// widthRung orders the integer ladder this engine classifies by: "char <
// {wchar} < short < int < long < long long < int128".
type widthRung int

const (
	rungChar widthRung = iota
	rungWChar
	rungShort
	rungInt
	rungLong
	rungLongLong
	rungInt128
)

func rungOf(t cc.Type) widthRung {
	switch t.Kind() {
	case cc.Char, cc.SChar, cc.UChar:
		return rungChar
	case cc.Short, cc.UShort:
		return rungShort
	case cc.Int, cc.UInt:
		return rungInt
	case cc.Long, cc.ULong:
		return rungLong
	case cc.LongLong, cc.ULongLong:
		return rungLongLong
	case cc.Int128, cc.UInt128:
		return rungInt128
	default:
		return rungInt
	}
}

// castEngine implements the cast-chain table given (src, dst, expr) with src != dst.
// Shared between the statement/expression lowerer (where both types
// are known from the front-end's resolved AST) and the macro parser
// (where a cast is written out explicitly in macro-token syntax) —
// this keeps the cast logic in one place rather than
// duplicating it across the two expression engines.
type castEngine struct {
	ctx   *Context
	types *typeTranslator
}

func newCastEngine(c *Context, tt *typeTranslator) *castEngine {
	return &castEngine{ctx: c, types: tt}
}

func (ce *castEngine) cast(pos string, src, dst cc.Type, expr *zigast.Node) (*zigast.Node, error) {
	a := ce.ctx.Arena
	dstExpr, err := ce.types.translateType(pos, dst)
	if err != nil {
		return nil, err
	}

	switch {
	case src.Kind() == cc.Ptr && dst.Kind() == cc.Ptr:
		return ce.castPointerToPointer(pos, src, dst, dstExpr, expr)

	case isIntegerOrEnum(src) && isIntegerOrEnum(dst):
		return ce.castIntegerToInteger(pos, src, dst, dstExpr, expr)

	case src.Kind() == cc.Ptr && isIntegerType(dst):
		return a.IntrinsicCall(zigast.IntrinsicIntCast, dstExpr, a.IntrinsicCall(zigast.IntrinsicPtrToInt, expr)), nil

	case isIntegerType(src) && dst.Kind() == cc.Ptr:
		return a.IntrinsicCall(zigast.IntrinsicIntToPtr, dstExpr, expr), nil

	case cc.IsFloatingType(src) && cc.IsFloatingType(dst):
		return a.IntrinsicCall(zigast.IntrinsicFloatCast, dstExpr, expr), nil

	case cc.IsFloatingType(src) && isIntegerType(dst):
		return a.IntrinsicCall(zigast.IntrinsicFloatToInt, dstExpr, expr), nil

	case isIntegerType(src) && cc.IsFloatingType(dst):
		return a.IntrinsicCall(zigast.IntrinsicIntToFloat, dstExpr, expr), nil

	case src.Kind() == cc.Bool && isIntegerType(dst):
		return a.Cast("", dstExpr, a.IntrinsicCall(zigast.IntrinsicBoolToInt, expr)), nil

	case isIntegerType(src) && dst.Kind() == cc.Enum:
		return a.IntrinsicCall(zigast.IntrinsicIntToEnum, dstExpr, expr), nil

	default:
		return a.Cast("", dstExpr, expr), nil
	}
}

func isIntegerType(t cc.Type) bool { return cc.IsIntegerType(t) }

func isIntegerOrEnum(t cc.Type) bool {
	return cc.IsIntegerType(t) || t.Kind() == cc.Enum
}

// castPointerToPointer handles pointer-to-pointer casts: dropping
// const/volatile must round-trip through an integer (Zig disallows a
// qualifier-discarding @ptrCast), everything else is a direct
// @ptrCast, with an @alignCast unless the pointee is void/opaque (no
// alignment to assert).
func (ce *castEngine) castPointerToPointer(pos string, src, dst cc.Type, dstExpr, expr *zigast.Node) (*zigast.Node, error) {
	a := ce.ctx.Arena
	srcPtr, srcOK := src.(*cc.PointerType)
	dstPtr, dstOK := dst.(*cc.PointerType)
	if srcOK && dstOK && dropsQualifier(srcPtr.Elem(), dstPtr.Elem()) {
		return a.IntrinsicCall(zigast.IntrinsicIntToPtr, dstExpr,
			a.IntrinsicCall(zigast.IntrinsicPtrToInt, expr)), nil
	}

	if dstOK && needsAlignCast(dstPtr.Elem()) {
		elemExpr, err := ce.types.translateType(pos, dstPtr.Elem())
		if err != nil {
			return nil, err
		}
		aligned := a.IntrinsicCall(zigast.IntrinsicAlignCast,
			a.IntrinsicCall(zigast.IntrinsicAlignOf, elemExpr), expr)
		return a.IntrinsicCall(zigast.IntrinsicPtrCast, dstExpr, aligned), nil
	}
	return a.IntrinsicCall(zigast.IntrinsicPtrCast, dstExpr, expr), nil
}

func dropsQualifier(src, dst cc.Type) bool {
	return (cc.IsConst(src) && !cc.IsConst(dst)) || (cc.IsVolatile(src) && !cc.IsVolatile(dst))
}

func needsAlignCast(elem cc.Type) bool {
	return elem.Kind() != cc.Void && !cc.IsOpaqueLike(elem)
}

// castIntegerToInteger classifies by width ladder, truncates or
// widens, then bit-casts to the final signedness. Enum operands
// are first unwrapped to their integer value via @enumToInt, and an
// enum destination goes through @intToEnum after the integer cast.
func (ce *castEngine) castIntegerToInteger(pos string, src, dst cc.Type, dstExpr, expr *zigast.Node) (*zigast.Node, error) {
	a := ce.ctx.Arena
	if src.Kind() == cc.Enum {
		expr = a.IntrinsicCall(zigast.IntrinsicEnumToInt, expr)
		src = src.(*cc.EnumType).UnderlyingType()
	}
	if dst.Kind() == cc.Enum {
		intDst := dst.(*cc.EnumType).UnderlyingType()
		intExpr, err := ce.castIntegerToInteger(pos, src, intDst, dstExpr, expr)
		if err != nil {
			return nil, err
		}
		return a.IntrinsicCall(zigast.IntrinsicIntToEnum, dstExpr, intExpr), nil
	}

	srcRung, dstRung := rungOf(src), rungOf(dst)
	switch {
	case dstRung < srcRung:
		return a.IntrinsicCall(zigast.IntrinsicTruncate, dstExpr, expr), nil
	case dstRung > srcRung:
		widened := a.Cast(zigast.IntrinsicSignExtend, dstExpr, expr)
		if cc.IsSignedInteger(src) == cc.IsSignedInteger(dst) {
			return widened, nil
		}
		return a.IntrinsicCall(zigast.IntrinsicBitCast, dstExpr, widened), nil
	default:
		if cc.IsSignedInteger(src) == cc.IsSignedInteger(dst) {
			return expr, nil
		}
		return a.IntrinsicCall(zigast.IntrinsicBitCast, dstExpr, expr), nil
	}
}

// foldInt128Literal normalizes a C __int128/unsigned __int128 literal
// token into decimal text Zig accepts, since Go's math/big integers
// need an explicit bridge to a fixed 128-bit representation to detect
// truncation at parse time.
func foldInt128Literal(text string, signed bool) (string, error) {
	v, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return "", errorf(KindUnsupportedTranslation, "invalid integer literal %q", text)
	}
	if v.Sign() < 0 {
		return v.String(), nil
	}
	u := uint128.FromBig(v)
	if signed && u.Cmp(uint128.Max.Rsh(1)) > 0 {
		return "", errorf(KindUnsupportedTranslation, "literal %q overflows i128", text)
	}
	return u.Big().String(), nil
}

// classifyLiteralSuffix is shared with the macro-literal normaliser: it
// decides which @as(...) wrapper width a raw C integer literal suffix
// (u/l/ul/ll/llu) selects. An explicit suffix still escalates to the
// next wider rung when the literal's own magnitude doesn't fit, and an
// unsuffixed literal walks the same int -> long -> long long ladder a
// C compiler applies, matching foldInt128Literal's bit-length check
// above for the 128-bit rung.
func classifyLiteralSuffix(value *big.Int, suffix string) string {
	bits := value.BitLen()
	switch suffix {
	case "u":
		if bits <= 32 {
			return "c_uint"
		}
		return "c_ulonglong"
	case "l":
		if bits <= 63 {
			return "c_long"
		}
		return "c_longlong"
	case "ul", "lu":
		return "c_ulong"
	case "ll":
		return "c_longlong"
	case "llu", "ull":
		return "c_ulonglong"
	default:
		if bits <= 31 {
			return "c_int"
		}
		if bits <= 63 {
			return "c_long"
		}
		return "c_longlong"
	}
}
