package zigast

import (
	"fmt"
	"strings"
)

// Render turns a root-level node list into Zig source text: the one
// pass that walks the finished tree and writes out text.
func Render(roots []*Node) string {
	var b strings.Builder
	for i, n := range roots {
		if i > 0 {
			b.WriteString("\n")
		}
		renderTop(&b, n)
		b.WriteString("\n")
	}
	return b.String()
}

func renderTop(b *strings.Builder, n *Node) {
	switch n.tag {
	case TagComment:
		b.WriteString("// ")
		b.WriteString(n.text)
	case TagVarDecl:
		renderVarDecl(b, n)
	case TagFuncDecl:
		renderFuncDecl(b, n)
	case TagRaw:
		b.WriteString(n.text)
	default:
		renderExpr(b, n)
	}
}

func renderVarDecl(b *strings.Builder, n *Node) {
	if n.pub {
		b.WriteString("pub ")
	}
	if n.extern {
		b.WriteString("extern ")
	}
	if n.constant {
		b.WriteString("const ")
	} else {
		b.WriteString("var ")
	}
	b.WriteString(n.text)
	typ, init := n.kids[0], n.kids[1]
	if typ != nil {
		b.WriteString(": ")
		renderExpr(b, typ)
	}
	if init != nil {
		b.WriteString(" = ")
		renderExpr(b, init)
	}
	b.WriteString(";")
}

func renderFuncDecl(b *strings.Builder, n *Node) {
	if n.pub {
		b.WriteString("pub ")
	}
	if n.extern {
		b.WriteString("extern ")
	}
	if n.inline {
		b.WriteString("inline ")
	}
	b.WriteString("fn ")
	b.WriteString(n.text)
	b.WriteString("(")
	params := n.kids[2:]
	for i := 0; i+1 < len(params); i += 2 {
		if i > 0 {
			b.WriteString(", ")
		}
		renderExpr(b, params[i])
		b.WriteString(": ")
		renderExpr(b, params[i+1])
	}
	b.WriteString(") ")
	if n.noret {
		b.WriteString("noreturn")
	} else if rt := n.kids[0]; rt != nil {
		renderExpr(b, rt)
	} else {
		b.WriteString("void")
	}
	if body := n.kids[1]; body != nil {
		b.WriteString(" ")
		renderExpr(b, body)
		return
	}
	b.WriteString(";")
}

func renderExpr(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.tag {
	case TagLiteral, TagIdent, TagTypeExpr, TagRaw:
		b.WriteString(n.text)
	case TagBinary:
		renderExpr(b, n.kids[0])
		b.WriteString(" ")
		b.WriteString(n.text)
		b.WriteString(" ")
		renderExpr(b, n.kids[1])
	case TagUnary:
		if n.constant { // postfix
			renderExpr(b, n.kids[0])
			b.WriteString(n.text)
			return
		}
		b.WriteString(n.text)
		renderExpr(b, n.kids[0])
	case TagCast:
		typ, expr := n.kids[0], n.kids[1]
		if n.text == string(IntrinsicBitCast) || n.text == "" {
			b.WriteString("@as(")
		} else {
			b.WriteString(n.text)
			b.WriteString("(")
		}
		renderExpr(b, typ)
		b.WriteString(", ")
		renderExpr(b, expr)
		b.WriteString(")")
	case TagIntrinsicCall:
		b.WriteString(n.text)
		b.WriteString("(")
		for i, k := range n.kids {
			if i > 0 {
				b.WriteString(", ")
			}
			renderExpr(b, k)
		}
		b.WriteString(")")
	case TagConditional:
		b.WriteString("if (")
		renderExpr(b, n.kids[0])
		b.WriteString(") ")
		renderExpr(b, n.kids[1])
		b.WriteString(" else ")
		renderExpr(b, n.kids[2])
	case TagBlock:
		if n.text != "" {
			b.WriteString(n.text)
			b.WriteString(": ")
		}
		b.WriteString("{\n")
		for _, s := range n.kids {
			renderExpr(b, s)
			b.WriteString(";\n")
		}
		b.WriteString("}")
	case TagRecordType:
		if n.packed {
			b.WriteString("packed ")
		}
		b.WriteString(n.text)
		if n.text == "opaque" {
			b.WriteString(" {}")
			return
		}
		b.WriteString(" {\n")
		for _, f := range n.kids {
			renderExpr(b, f)
			b.WriteString(",\n")
		}
		b.WriteString("}")
	case TagField:
		b.WriteString(n.text)
		if len(n.kids) == 0 {
			if n.text2 != "" {
				b.WriteString(" = ")
				b.WriteString(n.text2)
			}
			return
		}
		b.WriteString(": ")
		renderExpr(b, n.kids[0])
		if n.align != 0 {
			fmt.Fprintf(b, " align(%d)", n.align)
		}
	case TagEnumType:
		b.WriteString("enum")
		if !n.constant {
			b.WriteString("(")
			b.WriteString(n.text)
			b.WriteString(")")
		}
		b.WriteString(" {\n")
		for _, e := range n.kids {
			renderExpr(b, e)
			b.WriteString(",\n")
		}
		b.WriteString("}")
	case TagComment:
		b.WriteString("// ")
		b.WriteString(n.text)
	case TagVarDecl:
		renderVarDecl(b, n)
	case TagFuncDecl:
		renderFuncDecl(b, n)
	default:
		fmt.Fprintf(b, "/* unrenderable tag %d */", n.tag)
	}
}
