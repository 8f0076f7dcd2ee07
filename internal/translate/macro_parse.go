package translate

import (
	"fmt"
	"math/big"
	"strings"

	"modernc.org/strutil"

	"github.com/Rageoholic/zig/internal/zigast"
)

// macroTypeKeywords are the type-name keywords the cast-vs-multiplication
// disambiguation in parseCast (via looksLikeTypeName/parseTypeNameText)
// needs to recognise, since
// macro bodies are parsed from raw text without the front-end's own
// symbol table available.
var macroTypeKeywords = map[string]struct{}{
	"void": {}, "char": {}, "short": {}, "int": {}, "long": {}, "float": {},
	"double": {}, "signed": {}, "unsigned": {}, "_Bool": {}, "struct": {},
	"union": {}, "enum": {}, "const": {}, "volatile": {},
}

// macroParser implements a precedence-climbing grammar over the
// token stream macro_lex.go produces. One macroParser is built per
// macro body; knownTypedefs lets it resolve a bare identifier as a
// type name during cast disambiguation.
type macroParser struct {
	c             *ctx
	s             *Scope
	toks          []macroTok
	pos           int
	knownTypedefs map[string]struct{}
}

func newMacroParser(c *ctx, s *Scope, name, body string, typedefs map[string]struct{}) *macroParser {
	lx := newNamedMacroLexer(name, body)
	var toks []macroTok
	for {
		t := lx.Next()
		if t.kind == mtEOF {
			break
		}
		toks = append(toks, t)
	}
	return &macroParser{c: c, s: s, toks: toks, knownTypedefs: typedefs}
}

// posString reports the source position of the parser's current token,
// so a macro-body diagnostic names a file:line:col the same way a
// decl-visitor diagnostic does; once the token stream is exhausted it
// reports the last token's position, or "" for an empty body.
func (p *macroParser) posString() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].pos.String()
	}
	if len(p.toks) > 0 {
		return p.toks[len(p.toks)-1].pos.String()
	}
	return ""
}

func (p *macroParser) peek() macroTok {
	if p.pos >= len(p.toks) {
		return macroTok{kind: mtEOF}
	}
	return p.toks[p.pos]
}

func (p *macroParser) next() macroTok {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *macroParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *macroParser) expect(text string) error {
	t := p.next()
	if t.text != text {
		return unsupportedTranslation(p.posString(), "macro parser: expected %q, got %q", text, t.text)
	}
	return nil
}

// translateMacroBody is the entry point: object-like macros parse
// as a single expression and are emitted as a `pub const NAME = expr;`
// declaration; function-like macros parse a parameter list plus a body
// expression and are emitted as an inline function, matching real
// translate-c's treatment of a simple expression-bodied macro.
func (c *ctx) translateMacroBody(s *Scope, name, paramList, body string) (*zigast.Node, error) {
	a := c.Arena
	mangled := c.Root().makeMangledName(name)

	if paramList == "" {
		p := newMacroParser(c, s, name, body, nil)
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return a.VarDecl(mangled, nil, expr, true, true, false), nil
	}

	params := splitParamList(paramList)
	fnScope := s.NewBlock("")
	var paramNodes []*zigast.Node
	for _, pn := range params {
		mangledParam := fnScope.makeMangledName(pn)
		paramNodes = append(paramNodes, a.Ident(mangledParam), a.TypeExpr("anytype"))
	}
	p := newMacroParser(c, fnScope, name, body, nil)
	p.renameParams(params, fnScope)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	fnScope.appendNode(a.Unary("return ", expr, false))
	bodyBlock := a.Block("", fnScope.stmts...)
	return a.FuncDecl(mangled, a.TypeExpr("anytype"), paramNodes, bodyBlock, true, false, true, false), nil
}

// renameParams does no binding of its own: translateMacroBody's
// makeMangledName calls already recorded each parameter's mangled
// form in fnScope, so parsePrimary's identifier lookups (via getAlias)
// resolve a bare macro-parameter reference to the right local.
func (p *macroParser) renameParams(params []string, fnScope *Scope) {
	for _, pn := range params {
		// the alias was already recorded by makeMangledName in the
		// caller; nothing further to do here besides documenting that
		// identifier resolution for macro bodies goes through the same
		// Scope.getAlias path as C source does.
		_ = pn
		_ = fnScope
	}
}

func splitParamList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// parseExpr is the grammar's lowest-precedence entry point: the
// top-level comma operator, then assignment, handled the same
// left-to-right way a C precedence table lists them.
func (p *macroParser) parseExpr() (*zigast.Node, error) {
	first, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if p.peek().text != "," {
		return first, nil
	}
	blk := p.s.NewBlock("blk")
	blk.appendNode(first)
	for p.peek().text == "," {
		p.next()
		e, eerr := p.parseAssign()
		if eerr != nil {
			return nil, eerr
		}
		blk.appendNode(e)
	}
	last := blk.stmts[len(blk.stmts)-1]
	blk.stmts[len(blk.stmts)-1] = p.c.Arena.Unary("break :blk ", last, false)
	return p.c.Arena.Block("blk", blk.stmts...), nil
}

func (p *macroParser) parseAssign() (*zigast.Node, error) { return p.parseConditional() }

// parseConditional implements `cond ? then : else`, including the GNU
// `a ?: b` elision.
func (p *macroParser) parseConditional() (*zigast.Node, error) {
	a := p.c.Arena
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.peek().text != "?" {
		return cond, nil
	}
	p.next()
	if p.peek().text == ":" {
		p.next()
		elseV, eerr := p.parseConditional()
		if eerr != nil {
			return nil, eerr
		}
		// GNU `a ?: b`: read `a` once into a temporary so it is never
		// evaluated twice.
		tName := p.s.makeMangledName("t")
		blk := p.s.NewBlock("blk")
		blk.appendNode(a.VarDecl(tName, nil, cond, false, true, false))
		tIdent := a.Ident(tName)
		blk.appendNode(a.Unary("break :blk ", a.Conditional(tIdent, tIdent, elseV), false))
		return a.Block("blk", blk.stmts...), nil
	}
	then, terr := p.parseExpr()
	if terr != nil {
		return nil, terr
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, eerr := p.parseConditional()
	if eerr != nil {
		return nil, eerr
	}
	return a.Conditional(cond, then, els), nil
}

// binOpLevel is one precedence rung: the token texts handled at that
// rung and the next-tighter parse function to recurse into, letting
// parseBinary implement the whole precedence-climbing ladder
// (logical-or down to multiplicative) with one shared loop.
type binOpLevel struct {
	ops  []string
	next func(p *macroParser) (*zigast.Node, error)
}

func (p *macroParser) parseLogicalOr() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"||"}, (*macroParser).parseLogicalAnd)
}
func (p *macroParser) parseLogicalAnd() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"&&"}, (*macroParser).parseBitOr)
}
func (p *macroParser) parseBitOr() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"|"}, (*macroParser).parseBitXor)
}
func (p *macroParser) parseBitXor() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"^"}, (*macroParser).parseBitAnd)
}
func (p *macroParser) parseBitAnd() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"&"}, (*macroParser).parseEquality)
}
func (p *macroParser) parseEquality() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"==", "!="}, (*macroParser).parseRelational)
}
func (p *macroParser) parseRelational() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"<", ">", "<=", ">="}, (*macroParser).parseShift)
}
func (p *macroParser) parseShift() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"<<", ">>"}, (*macroParser).parseAdditive)
}
func (p *macroParser) parseAdditive() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"+", "-"}, (*macroParser).parseMultiplicative)
}
func (p *macroParser) parseMultiplicative() (*zigast.Node, error) {
	return p.parseLeftAssoc([]string{"*", "/", "%"}, (*macroParser).parseCast)
}

func (p *macroParser) parseLeftAssoc(ops []string, next func(*macroParser) (*zigast.Node, error)) (*zigast.Node, error) {
	lhs, err := next(p)
	if err != nil {
		return nil, err
	}
	for containsStr(ops, p.peek().text) {
		op := p.next().text
		rhs, rerr := next(p)
		if rerr != nil {
			return nil, rerr
		}
		lhs = p.c.Arena.Binary(zigOpForMacro(op), lhs, rhs)
	}
	return lhs, nil
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// zigOpForMacro maps a C operator's textual spelling to Zig's, for the
// operators whose spelling actually differs in macro-expression
// position (bool-result logical ops use `and`/`or`; everything else
// carries over unchanged).
func zigOpForMacro(op string) string {
	switch op {
	case "&&":
		return "and"
	case "||":
		return "or"
	default:
		return op
	}
}

// parseCast implements the cast-vs-multiplication disambiguation:
// `(` is only the start of a cast when followed by a recognised
// type-name keyword or a known typedef name, otherwise it's a
// parenthesised expression that parseUnary/parsePrimary handle.
func (p *macroParser) parseCast() (*zigast.Node, error) {
	if p.peek().text == "(" && p.looksLikeTypeName(p.pos+1) {
		p.next()
		typeText := p.parseTypeNameText()
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.c.Arena.Cast("", p.c.Arena.TypeExpr(typeText), operand), nil
	}
	return p.parseUnary()
}

func (p *macroParser) looksLikeTypeName(idx int) bool {
	if idx >= len(p.toks) {
		return false
	}
	t := p.toks[idx]
	if t.kind != mtIdent {
		return false
	}
	if _, ok := macroTypeKeywords[t.text]; ok {
		return true
	}
	_, ok := p.knownTypedefs[t.text]
	return ok
}

// parseTypeNameText consumes a run of type keywords/identifiers and
// renders the literal Zig-ish text a cast target needs; this is
// deliberately permissive since macro-body casts are rare and the
// front-end has already validated the underlying C.
func (p *macroParser) parseTypeNameText() string {
	var parts []string
	for p.peek().kind == mtIdent {
		if _, ok := macroTypeKeywords[p.peek().text]; ok || p.peek().text == p.toks[p.pos].text {
			parts = append(parts, macroCTypeToZig(p.next().text))
			continue
		}
		break
	}
	for p.peek().text == "*" {
		p.next()
		parts = append([]string{"*"}, parts...)
	}
	return strings.Join(parts, " ")
}

func macroCTypeToZig(tok string) string {
	switch tok {
	case "unsigned":
		return "c_uint"
	case "signed", "int":
		return "c_int"
	case "char":
		return "u8"
	case "short":
		return "c_short"
	case "long":
		return "c_long"
	case "float":
		return "f32"
	case "double":
		return "f64"
	case "void":
		return "c_void"
	case "_Bool":
		return "bool"
	default:
		return tok
	}
}

func (p *macroParser) parseUnary() (*zigast.Node, error) {
	a := p.c.Arena
	t := p.peek()
	switch t.text {
	case "!":
		p.next()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return a.Unary("!", operand, false), nil
	case "-":
		p.next()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return a.Unary("-", operand, false), nil
	case "+":
		p.next()
		return p.parseCast()
	case "~":
		p.next()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return a.Unary("~", operand, false), nil
	case "&":
		p.next()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return a.Unary("&", operand, false), nil
	case "*":
		p.next()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return a.Unary(".*", operand, true), nil
	default:
		return p.parsePostfix()
	}
}

func (p *macroParser) parsePostfix() (*zigast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().text {
		case "(":
			p.next()
			var args []string
			for p.peek().text != ")" && !p.atEnd() {
				arg, aerr := p.parseAssign()
				if aerr != nil {
					return nil, aerr
				}
				args = append(args, renderTypeExprText(arg))
				if p.peek().text == "," {
					p.next()
				}
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			node = p.c.Arena.Raw(fmt.Sprintf("%s(%s)", renderTypeExprText(node), joinComma(args)))
		case "[":
			p.next()
			idx, ierr := p.parseExpr()
			if ierr != nil {
				return nil, ierr
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			node = p.c.Arena.Raw(fmt.Sprintf("%s[%s]", renderTypeExprText(node), renderTypeExprText(idx)))
		case ".":
			p.next()
			field := p.next().text
			node = p.c.Arena.Raw(fmt.Sprintf("%s.%s", renderTypeExprText(node), field))
		case "->":
			p.next()
			field := p.next().text
			node = p.c.Arena.Raw(fmt.Sprintf("(%s.*).%s", renderTypeExprText(node), field))
		default:
			return node, nil
		}
	}
}

// parsePrimary parses the grammar's leaves: identifiers (mapped
// through the enclosing Scope, so a macro parameter resolves to its
// mangled local), numeric literals (normalised via cast.go's helpers),
// string literals (fused when consecutive), and parenthesised
// sub-expressions.
func (p *macroParser) parsePrimary() (*zigast.Node, error) {
	a := p.c.Arena
	t := p.next()
	switch t.kind {
	case mtIdent:
		return a.Ident(p.s.getAlias(t.text)), nil

	case mtNumber:
		text, err := normalizeMacroNumber(t.pos.String(), t.text)
		if err != nil {
			return nil, err
		}
		return a.Literal(text), nil

	case mtChar:
		return a.Literal(t.text), nil

	case mtString:
		return p.parseFusedString(t.text)

	case mtPunct:
		if t.text == "(" {
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, unsupportedTranslation(t.pos.String(), "macro parser: unexpected token %q", t.text)
}

// parseFusedString implements adjacent string-literal concatenation:
// C lets `"a" "b"` stand for a single literal, and macro bodies
// frequently build strings this way.
func (p *macroParser) parseFusedString(first string) (*zigast.Node, error) {
	parts := []string{unquoteMacroString(first)}
	for p.peek().kind == mtString {
		parts = append(parts, unquoteMacroString(p.next().text))
	}
	return p.c.Arena.Literal(strutil.Escape(strings.Join(parts, ""))), nil
}

func unquoteMacroString(tok string) string {
	if len(tok) >= 2 {
		return tok[1 : len(tok)-1]
	}
	return tok
}

// normalizeMacroNumber strips a trailing u/l/ul/ll/llu suffix, reads
// octal/hex prefixes, and returns the value as decimal digits. The
// suffix is passed to classifyLiteralSuffix (cast.go), but its result
// does not affect the returned text, and the value is not
// range-checked.
func normalizeMacroNumber(pos, raw string) (string, error) {
	if strings.ContainsAny(raw, ".eE") && !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return strings.TrimRight(raw, "fFlL"), nil
	}

	suffix := ""
	digits := raw
	for len(digits) > 0 && strings.ContainsRune("uUlL", rune(digits[len(digits)-1])) {
		suffix = strings.ToLower(string(digits[len(digits)-1])) + suffix
		digits = digits[:len(digits)-1]
	}

	v, ok := new(big.Int).SetString(digits, 0)
	if !ok {
		return "", unsupportedTranslation(pos, "malformed macro numeric literal %q", raw)
	}
	_ = classifyLiteralSuffix(v, suffix)
	return v.String(), nil
}
