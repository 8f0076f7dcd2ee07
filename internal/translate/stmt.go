package translate

import (
	"fmt"

	"modernc.org/cc/v4"

	"github.com/Rageoholic/zig/internal/zigast"
)

// lowerCompoundStatement lowers a `{ ... }` block: a fresh Block
// scope, one lowered statement per C statement, appended in source
// order. Declarations inside the block recurse back through VisitDecl
// exactly like file-scope ones do, so a block-scope local gets the
// same name-table bookkeeping as a global.
func (c *ctx) lowerCompoundStatement(parent *Scope, n *cc.CompoundStatement) (*zigast.Node, error) {
	blk := parent.NewBlock("")
	for _, item := range n.BlockItems() {
		if d, ok := item.(*cc.Declarator); ok {
			c.VisitDecl(blk, d)
			continue
		}
		st, ok := item.(cc.Statement)
		if !ok {
			continue
		}
		if err := c.lowerStatement(blk, st); err != nil {
			return nil, err
		}
	}
	return c.Arena.Block("", blk.stmts...), nil
}

// lowerStatement dispatches over cc.Statement.Case, appending lowered nodes to s via appendNode/Scope helpers
// rather than returning a value — statements, unlike expressions, have
// no result to propagate upward.
func (c *ctx) lowerStatement(s *Scope, n cc.Statement) error {
	a := c.Arena
	pos := n.Position().String()

	switch n.Case {
	case cc.StatementLabeled:
		return c.lowerLabeled(s, n)

	case cc.StatementCompound:
		inner, err := c.lowerCompoundStatement(s, n.Compound())
		if err != nil {
			return err
		}
		s.appendNode(inner)
		return nil

	case cc.StatementExpr:
		if n.Expr() == nil {
			return nil
		}
		e, err := c.lowerExpr(s, n.Expr(), discarded, rvalue)
		if err != nil {
			return err
		}
		s.appendNode(e)
		return nil

	case cc.StatementSelection:
		return c.lowerSelection(s, n)

	case cc.StatementIteration:
		return c.lowerIteration(s, n)

	case cc.StatementJump:
		return c.lowerJump(s, n)

	case cc.StatementAsm:
		s.appendNode(a.Comment(fmt.Sprintf("warning: inline asm dropped at %s", pos)))
		return nil

	default:
		return unsupportedTranslation(pos, "unhandled statement class")
	}
}

// lowerLabeled implements the three labeled-statement shapes: a plain
// `name:` goto-target label, a `case`/`default` arm inside the nearest
// Switch (see lowerSelection's switch case, which drives those through
// a dedicated path instead and never reaches here), and falls through
// to the inner statement otherwise. Zig has no statement-label/goto
// construct, so a goto-target label reaching this path is reported as
// unsupported rather than emitted as invalid Raw text; see lowerJump's
// IsGoto case for the matching diagnostic on the jump side.
func (c *ctx) lowerLabeled(s *Scope, n cc.Statement) error {
	lbl := n.Label()
	if lbl != nil && lbl.Name() != "" {
		return unsupportedTranslation(n.Position().String(), "goto-target label %q has no Zig lowering", lbl.Name())
	}
	return c.lowerStatement(s, n.LabeledStatement())
}

// lowerSelection lowers an if or switch statement.
func (c *ctx) lowerSelection(s *Scope, n cc.Statement) error {
	a := c.Arena
	pos := n.Position().String()

	if n.IsSwitch() {
		return c.lowerSwitch(s, n)
	}

	condScope := s.NewCondition()
	cond, err := c.lowerExpr(condScope, n.Cond(), used, rvalue)
	if err != nil {
		return err
	}
	cond, err = c.toBool(pos, n.Cond().Type(), n.Cond(), cond)
	if err != nil {
		return err
	}

	thenBlock, err := c.lowerBranch(s, n.Then())
	if err != nil {
		return err
	}
	if n.Else() == nil {
		s.appendNode(a.Conditional(cond, thenBlock, nil))
		return nil
	}
	elseBlock, err := c.lowerBranch(s, n.Else())
	if err != nil {
		return err
	}
	s.appendNode(ifElseNode(a, cond, thenBlock, elseBlock))
	return nil
}

// ifElseNode builds a statement-position `if (cond) then else else`,
// reusing the Conditional node shape (expression-position and
// statement-position ifs render identically for this AST).
func ifElseNode(a *zigast.Arena, cond, then, els *zigast.Node) *zigast.Node {
	return a.Conditional(cond, then, els)
}

// lowerBranch lowers a single if/while/for branch, wrapping a bare
// (non-compound) statement in an implicit block so it always renders
// braced — cc's Statement tree lets the branch be any statement, not
// only a CompoundStatement.
func (c *ctx) lowerBranch(parent *Scope, n cc.Statement) (*zigast.Node, error) {
	if n.Case == cc.StatementCompound {
		return c.lowerCompoundStatement(parent, n.Compound())
	}
	blk := parent.NewBlock("")
	if err := c.lowerStatement(blk, n); err != nil {
		return nil, err
	}
	return c.Arena.Block("", blk.stmts...), nil
}

// lowerSwitch lowers a switch statement into a Zig switch over the
// controlling expression, each `case`/`default` becoming an explicit
// prong whose body is its own labeled block (Zig's switch has no
// fallthrough). A `break` inside a prong targets the switch itself:
// lowerJump asks the Switch scope for its label, which is synthesised
// the first time a break needs it, and the switch is emitted labeled
// only when one did.
func (c *ctx) lowerSwitch(s *Scope, n cc.Statement) error {
	a := c.Arena
	sw := s.NewSwitch()

	cond, err := c.lowerExpr(sw, n.Cond(), used, rvalue)
	if err != nil {
		return err
	}

	groups, err := c.splitSwitchCases(n.Body())
	if err != nil {
		return err
	}

	var prongs []string
	hasDefault := false
	for _, g := range groups {
		body, berr := c.lowerBlockItems(sw, g.items)
		if berr != nil {
			return berr
		}
		label := s.makeMangledName("case")
		labeled := a.Block(label, body)
		if g.isDefault {
			hasDefault = true
			prongs = append(prongs, fmt.Sprintf("else => %s", renderTypeExprText(labeled)))
			continue
		}
		prongs = append(prongs, fmt.Sprintf("%s => %s", g.values, renderTypeExprText(labeled)))
	}
	if !hasDefault {
		prongs = append(prongs, "else => {}")
	}

	text := fmt.Sprintf("switch (%s) {\n", renderTypeExprText(cond))
	if sw.switchLabel != "" {
		text = sw.switchLabel + ": " + text
	}
	for _, p := range prongs {
		text += p + ",\n"
	}
	text += "}"
	s.appendNode(a.Raw(text))
	return nil
}

type switchGroup struct {
	values    string
	isDefault bool
	items     []cc.BlockItem
}

// splitSwitchCases walks a switch body's top-level block-item list,
// grouping consecutive items under each case/default label into one
// switchGroup per label, dropping C fallthrough.
func (c *ctx) splitSwitchCases(body *cc.CompoundStatement) ([]switchGroup, error) {
	var groups []switchGroup
	var cur *switchGroup
	for _, item := range body.BlockItems() {
		if st, ok := item.(cc.Statement); ok && st.Case == cc.StatementLabeled {
			if lbl := st.Label(); lbl.IsCase() || lbl.IsDefault() {
				if cur != nil {
					groups = append(groups, *cur)
				}
				cur = &switchGroup{isDefault: lbl.IsDefault(), values: lbl.CaseValueText()}
				item = st.LabeledStatement()
			}
		}
		if cur != nil {
			cur.items = append(cur.items, item)
		}
	}
	if cur != nil {
		groups = append(groups, *cur)
	}
	return groups, nil
}

// lowerBlockItems lowers a slice of block items (declarations and
// statements) into a single Block node, the same way
// lowerCompoundStatement does for a real CompoundStatement — used for
// a switch prong's body, which splitSwitchCases assembles from a
// sub-slice of the switch body's own items rather than a distinct
// CompoundStatement node.
func (c *ctx) lowerBlockItems(parent *Scope, items []cc.BlockItem) (*zigast.Node, error) {
	blk := parent.NewBlock("")
	for _, item := range items {
		if d, ok := item.(*cc.Declarator); ok {
			c.VisitDecl(blk, d)
			continue
		}
		if st, ok := item.(cc.Statement); ok {
			if err := c.lowerStatement(blk, st); err != nil {
				return nil, err
			}
		}
	}
	return c.Arena.Block("", blk.stmts...), nil
}

// lowerIteration lowers a while, do-while, or for statement.
func (c *ctx) lowerIteration(s *Scope, n cc.Statement) error {
	a := c.Arena
	pos := n.Position().String()

	switch {
	case n.IsDoWhile():
		return c.lowerDoWhile(s, n)
	case n.IsFor():
		return c.lowerFor(s, n)
	default: // plain while
		loop := s.NewLoop()
		condScope := loop.NewCondition()
		cond, err := c.lowerExpr(condScope, n.Cond(), used, rvalue)
		if err != nil {
			return err
		}
		cond, err = c.toBool(pos, n.Cond().Type(), n.Cond(), cond)
		if err != nil {
			return err
		}
		body, err := c.lowerBranch(loop, n.Body())
		if err != nil {
			return err
		}
		s.appendNode(a.Raw(fmt.Sprintf("while (%s) %s", renderTypeExprText(cond), renderTypeExprText(body))))
		return nil
	}
}

// lowerDoWhile rewrites `do S while (c);` as
// `while (true) { S; if (!c) break; }`, since Zig has no post-tested
// loop form.
func (c *ctx) lowerDoWhile(s *Scope, n cc.Statement) error {
	a := c.Arena
	pos := n.Position().String()
	loop := s.NewLoop()
	body, err := c.lowerBranch(loop, n.Body())
	if err != nil {
		return err
	}
	condScope := loop.NewCondition()
	cond, err := c.lowerExpr(condScope, n.Cond(), used, rvalue)
	if err != nil {
		return err
	}
	cond, err = c.toBool(pos, n.Cond().Type(), n.Cond(), cond)
	if err != nil {
		return err
	}
	breakCheck := a.Raw(fmt.Sprintf("if (!(%s)) break", renderTypeExprText(cond)))
	full := a.Block("", append(append([]*zigast.Node{}, bodyStatements(body)...), breakCheck)...)
	s.appendNode(a.Raw(fmt.Sprintf("while (true) %s", renderTypeExprText(full))))
	return nil
}

func bodyStatements(n *zigast.Node) []*zigast.Node {
	if n == nil {
		return nil
	}
	return n.Statements()
}

// lowerFor lowers a for statement: the init clause (if a declaration)
// forces an enclosing block; the increment clause becomes a Zig
// `while (cond) : (inc)` continuation expression.
func (c *ctx) lowerFor(s *Scope, n cc.Statement) error {
	a := c.Arena
	pos := n.Position().String()
	outer := s.NewBlock("")

	if init := n.ForInit(); init != nil {
		if d, ok := init.(*cc.Declarator); ok {
			c.VisitDecl(outer, d)
		} else if e, ok := init.(cc.ExpressionNode); ok {
			v, err := c.lowerExpr(outer, e, discarded, rvalue)
			if err != nil {
				return err
			}
			outer.appendNode(v)
		}
	}

	loop := outer.NewLoop()
	condText := "true"
	if n.Cond() != nil {
		condScope := loop.NewCondition()
		cond, err := c.lowerExpr(condScope, n.Cond(), used, rvalue)
		if err != nil {
			return err
		}
		cond, err = c.toBool(pos, n.Cond().Type(), n.Cond(), cond)
		if err != nil {
			return err
		}
		condText = renderTypeExprText(cond)
	}

	incText := ""
	if n.ForPost() != nil {
		incScope := loop.NewBlock("")
		inc, err := c.lowerExpr(incScope, n.ForPost(), discarded, rvalue)
		if err != nil {
			return err
		}
		incText = fmt.Sprintf(" : (%s)", renderTypeExprText(inc))
	}

	body, err := c.lowerBranch(loop, n.Body())
	if err != nil {
		return err
	}
	outer.appendNode(a.Raw(fmt.Sprintf("while (%s)%s %s", condText, incText, renderTypeExprText(body))))
	return wrapAsSingleOrBlock(s, outer)
}

// wrapAsSingleOrBlock appends outer's accumulated statements to s: a
// single bare statement directly, or the whole block when the for-init
// clause added more than one.
func wrapAsSingleOrBlock(s *Scope, outer *Scope) error {
	if len(outer.stmts) == 1 {
		s.appendNode(outer.stmts[0])
		return nil
	}
	s.appendNode(outer.ctx.Arena.Block("", outer.stmts...))
	return nil
}

// lowerJump lowers a break, continue, return, or goto statement.
func (c *ctx) lowerJump(s *Scope, n cc.Statement) error {
	a := c.Arena
	pos := n.Position().String()

	switch {
	case n.IsBreak():
		target := s.getBreakableScope()
		if target.kind == scopeSwitch {
			label := target.ensureSwitchLabel(s.makeMangledName)
			s.appendNode(a.Raw("break :" + label))
			return nil
		}
		s.appendNode(a.Raw("break"))
		return nil

	case n.IsContinue():
		s.appendNode(a.Raw("continue"))
		return nil

	case n.IsGoto():
		return unsupportedTranslation(pos, "goto %s has no Zig lowering", n.GotoLabel())

	case n.IsReturn():
		if n.ReturnExpr() == nil {
			s.appendNode(a.Raw("return"))
			return nil
		}
		v, err := c.lowerExpr(s, n.ReturnExpr(), used, rvalue)
		if err != nil {
			return err
		}
		if n.ReturnType() != nil && n.ReturnType().Kind() != cc.Bool && isBoolExpr(n.ReturnExpr()) {
			v = c.toInt(v)
		}
		s.appendNode(a.Unary("return ", v, false))
		return nil

	default:
		return unsupportedTranslation(pos, "unhandled jump statement")
	}
}
