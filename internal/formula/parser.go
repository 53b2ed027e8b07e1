package formula

import (
	"fmt"
)

// Resolver supplies the numeric value of a placeholder column.
type Resolver func(column string) float64

type node interface {
	eval(Resolver) float64
}

type numberNode float64

func (n numberNode) eval(Resolver) float64 { return float64(n) }

type columnNode string

func (c columnNode) eval(r Resolver) float64 { return r(string(c)) }

type negNode struct{ x node }

func (n negNode) eval(r Resolver) float64 { return -n.x.eval(r) }

type binaryNode struct {
	op   tokenKind
	l, r node
}

func (b binaryNode) eval(r Resolver) float64 {
	l, rv := b.l.eval(r), b.r.eval(r)
	switch b.op {
	case tokPlus:
		return l + rv
	case tokMinus:
		return l - rv
	case tokStar:
		return l * rv
	default:
		return l / rv
	}
}

// Expr is a compiled formula.
type Expr struct {
	src     string
	root    node
	columns []string
}

// Columns lists the placeholder names in order of first appearance.
func (e *Expr) Columns() []string { return append([]string(nil), e.columns...) }

func (e *Expr) String() string { return e.src }

// Eval evaluates the formula with placeholders resolved by r.
func (e *Expr) Eval(r Resolver) float64 { return e.root.eval(r) }

// Compile tokenizes and parses src. Only numbers, {column} placeholders,
// + - * / and parentheses are accepted.
func Compile(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, seen: map[string]bool{}}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s at position %d", tok, tok.pos+1)
	}
	return &Expr{src: src, root: root, columns: p.columns}, nil
}

type parser struct {
	toks    []token
	i       int
	seen    map[string]bool
	columns []string
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

// expr := term (("+" | "-") term)*
func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokPlus || k == tokMinus; k = p.peek().kind {
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, l: left, r: right}
	}
	return left, nil
}

// term := unary (("*" | "/") unary)*
func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokStar || k == tokSlash; k = p.peek().kind {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, l: left, r: right}
	}
	return left, nil
}

// unary := ("-" | "+") unary | primary
func (p *parser) unary() (node, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negNode{x: x}, nil
	case tokPlus:
		p.next()
		return p.unary()
	}
	return p.primary()
}

// primary := number | placeholder | "(" expr ")"
func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return numberNode(tok.num), nil
	case tokColumn:
		if !p.seen[tok.text] {
			p.seen[tok.text] = true
			p.columns = append(p.columns, tok.text)
		}
		return columnNode(tok.text), nil
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("expected \")\" at position %d, got %s", closing.pos+1, closing)
		}
		return inner, nil
	}
	return nil, fmt.Errorf("unexpected %s at position %d", tok, tok.pos+1)
}
