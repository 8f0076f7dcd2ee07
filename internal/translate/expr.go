package translate

import (
	"fmt"
	"strconv"

	"modernc.org/cc/v4"
	"modernc.org/strutil"

	"github.com/Rageoholic/zig/internal/zigast"
)

// resultUsed and lrvalue are the two orthogonal flags that propagate
// down expression translation: whether the value is consumed, and
// whether an address-of or a loaded value is expected.
type resultUsed bool
type lrvalue int

const (
	rvalue lrvalue = iota
	lvalue
)

const (
	used     resultUsed = true
	discarded resultUsed = false
)

// lowerExpr is the single recursive dispatch function for every C
// expression class, parameterized the same way ccgo/v4's own
// c.expr(w, n, to, toMode) is: a target type hint plus the two
// context flags above (ccgo folds result-used/lvalue into its `mode`
// enum; this translator keeps them as separate flags because the two
// vary independently more often when lowering to Zig).
func (c *ctx) lowerExpr(s *Scope, n cc.ExpressionNode, use resultUsed, lr lrvalue) (*zigast.Node, error) {
	if n == nil {
		return nil, nil
	}
	pos := n.Position().String()
	a := c.Arena

	switch x := n.(type) {
	case *cc.IntegerLiteral:
		return c.lowerIntegerLiteral(pos, x, use)

	case *cc.FloatingLiteral:
		return a.Literal(x.Value().String()), nil

	case *cc.StringLiteral:
		return c.lowerStringLiteral(s, x)

	case *cc.PrimaryExpression:
		return c.lowerPrimaryExpression(s, x, lr)

	case *cc.BinaryExpression:
		return c.lowerBinaryExpression(s, x, use)

	case *cc.UnaryExpression:
		return c.lowerUnaryExpression(s, x, use)

	case *cc.CastExpression:
		inner, err := c.lowerExpr(s, x.Operand(), used, rvalue)
		if err != nil {
			return nil, err
		}
		return c.castEngine().cast(pos, x.Operand().Type(), x.Type(), inner)

	case *cc.ConditionalExpression:
		return c.lowerConditional(s, x, use)

	case *cc.CommaExpression:
		return c.lowerComma(s, x, use)

	case *cc.AssignmentExpression:
		return c.lowerAssignment(s, x, use)

	case *cc.CallExpression:
		return c.lowerCall(s, x)

	case *cc.IndexExpression:
		return c.lowerIndex(s, x, lr)

	case *cc.MemberExpression:
		return c.lowerMember(s, x, lr)

	default:
		return nil, unsupportedTranslation(pos, "unhandled expression class %T", n)
	}
}

func (c *ctx) castEngine() *castEngine { return newCastEngine(c.Context, c.types) }

// lowerIntegerLiteral implements integer-literal lowering: `@as(T, N)`,
// because C literal typing can affect subsequent conversions. The bare
// digits are emitted only when use reports the result is discarded; a
// literal whose value is used, including one on the right of an
// assignment or in an initializer, always gets the @as wrapper.
func (c *ctx) lowerIntegerLiteral(pos string, n *cc.IntegerLiteral, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	texpr, err := c.types.translateType(pos, n.Type())
	if err != nil {
		return nil, err
	}
	lit := a.Literal(n.Value().String())
	if !use {
		return lit, nil
	}
	return a.Cast("", texpr, lit), nil
}

// lowerStringLiteral implements string-literal lowering: narrow strings
// render as an escaped Zig string literal; wide strings hoist a
// top-level const array of code units and return a reference to it.
func (c *ctx) lowerStringLiteral(s *Scope, n *cc.StringLiteral) (*zigast.Node, error) {
	a := c.Arena
	if n.IsWide() {
		name := c.Root().makeMangledName("__ccgo_ts")
		elems := make([]string, len(n.Units()))
		for i, u := range n.Units() {
			elems[i] = strconv.Itoa(int(u))
		}
		arr := a.Raw(fmt.Sprintf("[%d]%s{%s}", len(elems), wideUnitType(n), joinComma(elems)))
		c.Root().appendRoot(a.VarDecl(name, nil, arr, true, true, false))
		return a.Ident(name), nil
	}
	return a.Literal(strutil.Escape(n.Value())), nil
}

func wideUnitType(n *cc.StringLiteral) string {
	switch n.UnitWidth() {
	case 2:
		return "u16"
	case 4:
		return "u32"
	default:
		return "u8"
	}
}

func (c *ctx) lowerPrimaryExpression(s *Scope, n *cc.PrimaryExpression, lr lrvalue) (*zigast.Node, error) {
	a := c.Arena
	d := n.Declarator()
	if d == nil {
		return nil, unsupportedTranslation(n.Position().String(), "unresolved primary expression")
	}
	name := s.getAlias(d.Name())
	if target, ok := c.translated(d); ok {
		name = target
	}
	return a.Ident(name), nil
}

// isBoolResult identifies nodes whose Target type is already bool
// (comparisons, logical ops, `not`, true/false literals), so boolean
// conversion can avoid a redundant `!= 0`.
func isBoolResult(n cc.ExpressionNode) bool {
	switch x := n.(type) {
	case *cc.BinaryExpression:
		switch x.Op() {
		case cc.OpLAnd, cc.OpLOr, cc.OpEq, cc.OpNe, cc.OpLt, cc.OpLe, cc.OpGt, cc.OpGe:
			return true
		}
	case *cc.UnaryExpression:
		return x.Op() == cc.OpLNot
	}
	return n.Type() != nil && n.Type().Kind() == cc.Bool
}

func isBoolExpr(n interface{ Type() cc.Type }) bool {
	return n.Type() != nil && n.Type().Kind() == cc.Bool
}

// toBool implements boolean conversion: integer -> bool becomes
// `x != 0`; pointer -> bool becomes `x != null` (or `== null` for a
// nullptr-typed operand); an already-boolean expression passes through.
func (c *ctx) toBool(pos string, srcType cc.Type, srcExprNode cc.ExpressionNode, lowered *zigast.Node) (*zigast.Node, error) {
	a := c.Arena
	if isBoolResult(srcExprNode) {
		return lowered, nil
	}
	if srcType.Kind() == cc.Ptr {
		if cc.IsNullPtrType(srcType) {
			return a.Binary("==", lowered, a.Literal("null")), nil
		}
		return a.Binary("!=", lowered, a.Literal("null")), nil
	}
	return a.Binary("!=", lowered, a.Literal("0")), nil
}

// toInt implements the symmetric half of boolean hygiene: when a bool
// appears where C expects an int (function argument, arithmetic), wrap
// it in @boolToInt.
func (c *ctx) toInt(expr *zigast.Node) *zigast.Node {
	return c.Arena.IntrinsicCall(zigast.IntrinsicBoolToInt, expr)
}

func (c *ctx) lowerBinaryExpression(s *Scope, n *cc.BinaryExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	pos := n.Position().String()

	switch n.Op() {
	case cc.OpLAnd, cc.OpLOr:
		lhs, err := c.lowerExpr(s, n.Lhs(), used, rvalue)
		if err != nil {
			return nil, err
		}
		lhs, err = c.toBool(pos, n.Lhs().Type(), n.Lhs(), lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := c.lowerExpr(s, n.Rhs(), used, rvalue)
		if err != nil {
			return nil, err
		}
		rhs, err = c.toBool(pos, n.Rhs().Type(), n.Rhs(), rhs)
		if err != nil {
			return nil, err
		}
		op := "and"
		if n.Op() == cc.OpLOr {
			op = "or"
		}
		return a.Binary(op, lhs, rhs), nil

	case cc.OpDiv:
		if cc.IsSignedInteger(n.Type()) {
			lhs, rhs, err := c.lowerOperandPair(s, n)
			if err != nil {
				return nil, err
			}
			return a.IntrinsicCall(zigast.IntrinsicDivTrunc, lhs, rhs), nil
		}

	case cc.OpMod:
		if cc.IsSignedInteger(n.Type()) {
			lhs, rhs, err := c.lowerOperandPair(s, n)
			if err != nil {
				return nil, err
			}
			return a.IntrinsicCall(zigast.IntrinsicRem, lhs, rhs), nil
		}

	case cc.OpAdd, cc.OpSub, cc.OpMul:
		if cc.IsIntegerType(n.Type()) && !cc.IsSignedInteger(n.Type()) {
			lhs, rhs, err := c.lowerOperandPair(s, n)
			if err != nil {
				return nil, err
			}
			return a.Binary(wrappingOp(n.Op()), lhs, rhs), nil
		}

	case cc.OpShl, cc.OpShr:
		lhs, err := c.lowerExpr(s, n.Lhs(), used, rvalue)
		if err != nil {
			return nil, err
		}
		rhs, err := c.lowerExpr(s, n.Rhs(), used, rvalue)
		if err != nil {
			return nil, err
		}
		// The shift-count width is derived from the LHS operand's own
		// width, never the RHS's — a shift whose count comes from the
		// wrong operand silently produces the wrong mask width.
		shiftType, err := c.types.translateType(pos, n.Lhs().Type())
		if err != nil {
			return nil, err
		}
		log2Type := a.TypeExpr(fmt.Sprintf("std.math.Log2Int(%s)", renderTypeExprText(shiftType)))
		rhs = a.IntrinsicCall(zigast.IntrinsicIntCast, log2Type, rhs)
		return a.Binary(shiftOp(n.Op()), lhs, rhs), nil
	}

	lhs, rhs, err := c.lowerOperandPair(s, n)
	if err != nil {
		return nil, err
	}
	return a.Binary(cOpText(n.Op()), lhs, rhs), nil
}

func (c *ctx) lowerOperandPair(s *Scope, n *cc.BinaryExpression) (*zigast.Node, *zigast.Node, error) {
	lhs, err := c.lowerExpr(s, n.Lhs(), used, rvalue)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := c.lowerExpr(s, n.Rhs(), used, rvalue)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func wrappingOp(op cc.BinaryOp) string {
	switch op {
	case cc.OpAdd:
		return "+%"
	case cc.OpSub:
		return "-%"
	case cc.OpMul:
		return "*%"
	}
	return "?"
}

func shiftOp(op cc.BinaryOp) string {
	if op == cc.OpShl {
		return "<<"
	}
	return ">>"
}

func cOpText(op cc.BinaryOp) string {
	switch op {
	case cc.OpAdd:
		return "+"
	case cc.OpSub:
		return "-"
	case cc.OpMul:
		return "*"
	case cc.OpDiv:
		return "/"
	case cc.OpMod:
		return "%"
	case cc.OpAnd:
		return "&"
	case cc.OpOr:
		return "|"
	case cc.OpXor:
		return "^"
	case cc.OpEq:
		return "=="
	case cc.OpNe:
		return "!="
	case cc.OpLt:
		return "<"
	case cc.OpLe:
		return "<="
	case cc.OpGt:
		return ">"
	case cc.OpGe:
		return ">="
	default:
		return "?"
	}
}

func (c *ctx) lowerUnaryExpression(s *Scope, n *cc.UnaryExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	pos := n.Position().String()
	switch n.Op() {
	case cc.OpLNot:
		operand, err := c.lowerExpr(s, n.Operand(), used, rvalue)
		if err != nil {
			return nil, err
		}
		b, err := c.toBool(pos, n.Operand().Type(), n.Operand(), operand)
		if err != nil {
			return nil, err
		}
		return a.Unary("!", b, false), nil

	case cc.OpPreInc, cc.OpPreDec, cc.OpPostInc, cc.OpPostDec:
		return c.lowerIncDec(s, n, use)

	case cc.OpAddr:
		return c.lowerExpr(s, n.Operand(), used, lvalue)

	case cc.OpDeref:
		operand, err := c.lowerExpr(s, n.Operand(), used, rvalue)
		if err != nil {
			return nil, err
		}
		return a.Unary(".*", operand, true), nil

	default:
		operand, err := c.lowerExpr(s, n.Operand(), used, rvalue)
		if err != nil {
			return nil, err
		}
		return a.Unary(unaryOpText(n.Op()), operand, false), nil
	}
}

func unaryOpText(op cc.UnaryOp) string {
	switch op {
	case cc.OpNeg:
		return "-"
	case cc.OpPos:
		return "+"
	case cc.OpBNot:
		return "~"
	default:
		return "?"
	}
}

// lowerIncDec implements the four increment/decrement forms
// (pre/post, inc/dec). The used form takes a reference once to
// guarantee single evaluation of the operand (relevant when the
// operand is itself e.g. `*p++`); the unused form is the simple
// compound assignment.
func (c *ctx) lowerIncDec(s *Scope, n *cc.UnaryExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	op := "+= 1"
	if n.Op() == cc.OpPreDec || n.Op() == cc.OpPostDec {
		op = "-= 1"
	}
	operandRef, err := c.lowerExpr(s, n.Operand(), used, lvalue)
	if err != nil {
		return nil, err
	}
	if !use {
		return a.Raw(fmt.Sprintf("%s %s", renderTypeExprText(operandRef), op)), nil
	}

	refName := s.makeMangledName("ref")
	blk := s.NewBlock("blk")
	blk.appendNode(a.VarDecl(refName, nil, a.Unary("&", operandRef, false), false, true, false))
	refDeref := a.Unary(".*", a.Ident(refName), true)

	switch n.Op() {
	case cc.OpPreInc, cc.OpPreDec:
		blk.appendNode(a.Raw(fmt.Sprintf("%s %s", renderTypeExprText(refDeref), op)))
		blk.appendNode(a.Unary("break :blk ", refDeref, false))
	default: // post inc/dec
		tmpName := s.makeMangledName("tmp")
		blk.appendNode(a.VarDecl(tmpName, nil, refDeref, false, true, false))
		blk.appendNode(a.Raw(fmt.Sprintf("%s %s", renderTypeExprText(refDeref), op)))
		blk.appendNode(a.Unary("break :blk ", a.Ident(tmpName), false))
	}
	return a.Block("blk", blk.stmts...), nil
}

func (c *ctx) lowerConditional(s *Scope, n *cc.ConditionalExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	pos := n.Position().String()
	condScope := s.NewCondition()

	if n.IsGNUElvis() {
		// `x ?: y` preserves single-evaluation of x.
		tName := condScope.makeMangledName("t")
		tVal, err := c.lowerExpr(condScope, n.Cond(), used, rvalue)
		if err != nil {
			return nil, err
		}
		blk := s.NewBlock("blk")
		blk.appendNode(a.VarDecl(tName, nil, tVal, false, true, false))
		tIdent := a.Ident(tName)
		boolT, err := c.toBool(pos, n.Cond().Type(), n.Cond(), tIdent)
		if err != nil {
			return nil, err
		}
		elseVal, err := c.lowerExpr(condScope, n.Else(), used, rvalue)
		if err != nil {
			return nil, err
		}
		blk.appendNode(a.Unary("break :blk ", a.Conditional(boolT, tIdent, elseVal), false))
		return a.Block("blk", blk.stmts...), nil
	}

	cond, err := c.lowerExpr(condScope, n.Cond(), used, rvalue)
	if err != nil {
		return nil, err
	}
	cond, err = c.toBool(pos, n.Cond().Type(), n.Cond(), cond)
	if err != nil {
		return nil, err
	}
	then, err := c.lowerExpr(s, n.Then(), use, rvalue)
	if err != nil {
		return nil, err
	}
	els, err := c.lowerExpr(s, n.Else(), use, rvalue)
	if err != nil {
		return nil, err
	}
	return a.Conditional(cond, then, els), nil
}

// lowerComma implements the comma operator: a nested `blk`-labeled
// block, created directly as a child of s, with the LHS operands as
// discarded statements and the RHS as the block's result.
func (c *ctx) lowerComma(s *Scope, n *cc.CommaExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	blk := s.NewBlock("blk")
	for _, e := range n.Lhs() {
		v, err := c.lowerExpr(blk, e, discarded, rvalue)
		if err != nil {
			return nil, err
		}
		blk.appendNode(v)
	}
	last, err := c.lowerExpr(blk, n.Rhs(), use, rvalue)
	if err != nil {
		return nil, err
	}
	blk.appendNode(a.Unary("break :blk ", last, false))
	return a.Block("blk", blk.stmts...), nil
}

// lowerAssignment implements "a = b" (used): the used form binds
// a temporary so the assignment can both perform the store and yield
// the stored value; the unused form is a direct assignment. Compound
// forms (`+=`, `>>=`, ...) hand off to lowerCompoundAssignment, which
// reads the lvalue exactly once rather than re-reading the target for
// each half of the combined operation.
func (c *ctx) lowerAssignment(s *Scope, n *cc.AssignmentExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	if n.Op() != cc.AssignOpAssign {
		return c.lowerCompoundAssignment(s, n, use)
	}

	lhs, err := c.lowerExpr(s, n.Lhs(), used, lvalue)
	if err != nil {
		return nil, err
	}
	rhs, err := c.lowerExpr(s, n.Rhs(), used, rvalue)
	if err != nil {
		return nil, err
	}
	if n.Rhs().Type().Kind() != cc.Bool && isBoolExpr(n.Rhs()) {
		rhs = c.toInt(rhs)
	}

	if !use {
		return a.Binary("=", lhs, rhs), nil
	}

	tName := s.makeMangledName("t")
	blk := s.NewBlock("blk")
	blk.appendNode(a.VarDecl(tName, nil, rhs, false, true, false))
	blk.appendNode(a.Binary("=", lhs, a.Ident(tName)))
	blk.appendNode(a.Unary("break :blk ", a.Ident(tName), false))
	return a.Block("blk", blk.stmts...), nil
}

// lowerCompoundAssignment implements `a op= b`: the lvalue is taken
// once into a `ref` local, the combined value is computed through that
// single reference, and — for the used form — the new value is
// yielded from the same reference rather than re-evaluating `a`.
func (c *ctx) lowerCompoundAssignment(s *Scope, n *cc.AssignmentExpression, use resultUsed) (*zigast.Node, error) {
	a := c.Arena
	lhsRef, err := c.lowerExpr(s, n.Lhs(), used, lvalue)
	if err != nil {
		return nil, err
	}
	rhs, err := c.lowerExpr(s, n.Rhs(), used, rvalue)
	if err != nil {
		return nil, err
	}

	refName := s.makeMangledName("ref")
	blk := s.NewBlock("blk")
	blk.appendNode(a.VarDecl(refName, nil, a.Unary("&", lhsRef, false), false, true, false))
	deref := a.Unary(".*", a.Ident(refName), true)

	lt := n.Lhs().Type()
	var result *zigast.Node
	switch n.Op() {
	case cc.AssignOpDiv:
		if cc.IsSignedInteger(lt) {
			result = a.IntrinsicCall(zigast.IntrinsicDivTrunc, deref, rhs)
		} else {
			result = a.Binary("/", deref, rhs)
		}
	case cc.AssignOpMod:
		if cc.IsSignedInteger(lt) {
			result = a.IntrinsicCall(zigast.IntrinsicRem, deref, rhs)
		} else {
			result = a.Binary("%", deref, rhs)
		}
	case cc.AssignOpAdd, cc.AssignOpSub, cc.AssignOpMul:
		op := arithAssignOpText(n.Op())
		if cc.IsIntegerType(lt) && !cc.IsSignedInteger(lt) {
			op += "%"
		}
		result = a.Binary(op, deref, rhs)
	case cc.AssignOpShl, cc.AssignOpShr:
		shiftType, serr := c.types.translateType(n.Position().String(), lt)
		if serr != nil {
			return nil, serr
		}
		log2Type := a.TypeExpr(fmt.Sprintf("std.math.Log2Int(%s)", renderTypeExprText(shiftType)))
		rhs = a.IntrinsicCall(zigast.IntrinsicIntCast, log2Type, rhs)
		op := "<<"
		if n.Op() == cc.AssignOpShr {
			op = ">>"
		}
		result = a.Binary(op, deref, rhs)
	default:
		result = a.Binary(bitwiseAssignOpText(n.Op()), deref, rhs)
	}

	blk.appendNode(a.Binary("=", deref, result))
	if use {
		blk.appendNode(a.Unary("break :blk ", deref, false))
	}
	return a.Block("blk", blk.stmts...), nil
}

func arithAssignOpText(op cc.AssignOp) string {
	switch op {
	case cc.AssignOpAdd:
		return "+"
	case cc.AssignOpSub:
		return "-"
	default:
		return "*"
	}
}

func bitwiseAssignOpText(op cc.AssignOp) string {
	switch op {
	case cc.AssignOpAnd:
		return "&"
	case cc.AssignOpOr:
		return "|"
	default:
		return "^"
	}
}

// lowerCall implements function-call lowering: unwrap a function-
// pointer-typed, non-decl-reference callee's Optional, and wrap bool
// arguments passed to integer parameters in @boolToInt. Plain calls
// have no dedicated Node shape in the output AST (only the fixed
// intrinsic wrappers do), so the callee/argument text is spliced
// through Raw the same way lowerIndex and lowerMember build composite
// expressions.
func (c *ctx) lowerCall(s *Scope, n *cc.CallExpression) (*zigast.Node, error) {
	a := c.Arena
	callee, err := c.lowerExpr(s, n.Callee(), used, rvalue)
	if err != nil {
		return nil, err
	}
	if isFunctionPointerValue(n.Callee()) {
		callee = a.Unary(".?", callee, true)
	}

	var argTexts []string
	params := n.ResolvedParameterTypes()
	for i, argExpr := range n.Arguments() {
		av, aerr := c.lowerExpr(s, argExpr, used, rvalue)
		if aerr != nil {
			return nil, aerr
		}
		if i < len(params) && params[i].Kind() != cc.Bool && isBoolExpr(argExpr) {
			av = c.toInt(av)
		}
		argTexts = append(argTexts, renderTypeExprText(av))
	}
	return a.Raw(fmt.Sprintf("%s(%s)", renderTypeExprText(callee), joinComma(argTexts))), nil
}

func isFunctionPointerValue(n cc.ExpressionNode) bool {
	if _, ok := n.Type().(*cc.PointerType); !ok {
		return false
	}
	_, isDeclRef := n.(*cc.PrimaryExpression)
	return !isDeclRef
}

// lowerIndex implements array-index lowering: a signed/long-long index is
// wrapped in @intCast(usize, idx).
func (c *ctx) lowerIndex(s *Scope, n *cc.IndexExpression, lr lrvalue) (*zigast.Node, error) {
	a := c.Arena
	arr, err := c.lowerExpr(s, n.Array(), used, rvalue)
	if err != nil {
		return nil, err
	}
	idx, err := c.lowerExpr(s, n.Index(), used, rvalue)
	if err != nil {
		return nil, err
	}
	if idxNeedsCast(n.Index().Type()) {
		idx = a.IntrinsicCall(zigast.IntrinsicIntCast, a.TypeExpr("usize"), idx)
	}
	return a.Raw(fmt.Sprintf("%s[%s]", renderTypeExprText(arr), renderTypeExprText(idx))), nil
}

func idxNeedsCast(t cc.Type) bool {
	return cc.IsSignedInteger(t) || t.Kind() == cc.LongLong || t.Kind() == cc.Long
}

// lowerMember implements member-access lowering: `p->m` becomes `(p.*).m`. A plain `.m` access
// is the simpler `p.m` (no extra deref node needed).
func (c *ctx) lowerMember(s *Scope, n *cc.MemberExpression, lr lrvalue) (*zigast.Node, error) {
	a := c.Arena
	base, err := c.lowerExpr(s, n.Base(), used, rvalue)
	if err != nil {
		return nil, err
	}
	if n.IsArrow() {
		base = a.Unary(".*", base, true)
		return a.Raw(fmt.Sprintf("(%s).%s", renderTypeExprText(base), n.FieldName())), nil
	}
	return a.Raw(fmt.Sprintf("%s.%s", renderTypeExprText(base), n.FieldName())), nil
}

// lowerInitializer implements initializer-list lowering: a scalar
// initializer lowers as a plain expression; a string-literal array
// initializer pads or truncates to the declared length; a record,
// union, or array initializer list lowers each member from the item at
// the same position (designators are not matched by name) and
// zero-fills any trailing members the C source left implicit.
func (c *ctx) lowerInitializer(s *Scope, init *cc.Initializer, t cc.Type) (*zigast.Node, error) {
	a := c.Arena
	pos := init.Position().String()

	if sl := init.StringLiteral(); sl != "" {
		at, ok := t.(*cc.ArrayType)
		if !ok {
			return a.Literal(strutil.Escape(sl)), nil
		}
		return c.lowerStringArrayInitializer(at, sl), nil
	}

	if expr := init.Expr(); expr != nil {
		v, err := c.lowerExpr(s, expr, used, rvalue)
		if err != nil {
			return nil, err
		}
		return c.castEngine().cast(pos, expr.Type(), t, v)
	}

	switch x := t.(type) {
	case *cc.ArrayType:
		return c.lowerArrayInitializerList(s, init, x)
	case *cc.StructType:
		return c.lowerRecordInitializerList(s, init, x, "struct")
	case *cc.UnionType:
		return c.lowerRecordInitializerList(s, init, x, "union")
	default:
		return nil, unsupportedTranslation(pos, "unsupported initializer shape for %v", t)
	}
}

// lowerStringArrayInitializer pads a narrow string literal with the
// trailing NUL and zero-fill bytes a `char buf[N] = "..."` initializer
// implies, or truncates it when N is shorter than the literal plus its
// terminator.
func (c *ctx) lowerStringArrayInitializer(at *cc.ArrayType, sl string) *zigast.Node {
	a := c.Arena
	n := int(at.Len())
	runes := []byte(sl)
	elems := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(runes):
			elems = append(elems, strconv.Itoa(int(runes[i])))
		default:
			elems = append(elems, "0")
		}
	}
	return a.Raw(fmt.Sprintf("[%d]u8{%s}", n, joinComma(elems)))
}

// lowerArrayInitializerList implements the array case of initializer
// lowering: each positional element is lowered and cast to the element
// type, and any elements the source initializer omitted are filled
// from zeroValue.
func (c *ctx) lowerArrayInitializerList(s *Scope, init *cc.Initializer, at *cc.ArrayType) (*zigast.Node, error) {
	pos := init.Position().String()
	elemType, err := c.types.translateType(pos, at.Elem())
	if err != nil {
		return nil, err
	}
	var elems []string
	items := init.List()
	for _, item := range items {
		v, verr := c.lowerInitializer(s, item, at.Elem())
		if verr != nil {
			return nil, verr
		}
		elems = append(elems, renderTypeExprText(v))
	}
	for len(elems) < int(at.Len()) {
		z, zerr := c.zeroValue(pos, at.Elem())
		if zerr != nil {
			return nil, zerr
		}
		elems = append(elems, renderTypeExprText(z))
	}
	return c.Arena.Raw(fmt.Sprintf("[%d]%s{%s}", at.Len(), renderTypeExprText(elemType), joinComma(elems))), nil
}

// lowerRecordInitializerList implements the record case of initializer
// lowering: each field lowered in declaration order from the
// initializer item at the same position, missing trailing fields
// zero-filled. Designators are not matched by name, and a union
// initializer sets its first field.
func (c *ctx) lowerRecordInitializerList(s *Scope, init *cc.Initializer, rt cc.Type, kind string) (*zigast.Node, error) {
	pos := init.Position().String()
	fr, ok := rt.(cc.FieldLister)
	if !ok {
		return nil, unsupportedTranslation(pos, "record initializer on non-field-bearing type")
	}
	fields := fr.Fields()
	items := init.List()

	var parts []string
	for i, f := range fields {
		var v *zigast.Node
		var err error
		if i < len(items) && items[i] != nil {
			v, err = c.lowerInitializer(s, items[i], f.Type())
		} else {
			v, err = c.zeroValue(pos, f.Type())
		}
		if err != nil {
			return nil, err
		}
		name := f.Name()
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", i)
		}
		parts = append(parts, fmt.Sprintf(".%s = %s", name, renderTypeExprText(v)))
		if kind == "union" {
			break // a union initializer sets exactly one member
		}
	}
	return c.Arena.Raw(fmt.Sprintf(".{%s}", joinComma(parts))), nil
}
