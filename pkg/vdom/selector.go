package vdom

import (
	"fmt"
	"strings"
)

// Selector is a compiled selector list.
type Selector struct {
	source  string
	complex []complexSelector
}

type combinator uint8

const (
	combDescendant combinator = iota // whitespace
	combChild                        // >
)

// complexSelector is a chain of compounds, stored right-most first.
type complexSelector struct {
	compounds   []compoundSelector
	combinators []combinator // combinators[i] joins compounds[i] to compounds[i+1]
}

type compoundSelector struct {
	tag     string // "" or "*" matches any
	ids     []string
	classes []string
	attrs   []attrMatcher
}

type attrOp uint8

const (
	attrExists    attrOp = iota // [attr]
	attrEquals                  // [attr=value]
	attrIncludes                // [attr~=value]
	attrPrefix                  // [attr^=value]
	attrSuffix                  // [attr$=value]
	attrSubstring               // [attr*=value]
)

type attrMatcher struct {
	name  string
	op    attrOp
	value string
}

// CompileSelector parses a selector list such as "ul > li.item, button[data-action]".
// Supported: type and universal selectors, #id, .class, attribute selectors
// with = ~= ^= $= *=, and the descendant and child combinators.
func CompileSelector(source string) (*Selector, error) {
	s := &Selector{source: source}
	for _, part := range splitTopLevel(source) {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty selector in %q", source)
		}
		cs, err := parseComplex(part)
		if err != nil {
			return nil, err
		}
		s.complex = append(s.complex, cs)
	}
	if len(s.complex) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	return s, nil
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.source
}

// Match reports whether node matches the selector. ancestors lists the
// node's ancestors nearest first; combinators never look past the last one.
func (s *Selector) Match(node *VNode, ancestors []*VNode) bool {
	if node == nil || node.Kind != KindElement {
		return false
	}
	for _, cs := range s.complex {
		if cs.match(node, ancestors, 0) {
			return true
		}
	}
	return false
}

func (cs complexSelector) match(node *VNode, ancestors []*VNode, idx int) bool {
	if !cs.compounds[idx].match(node) {
		return false
	}
	if idx == len(cs.compounds)-1 {
		return true
	}

	switch cs.combinators[idx] {
	case combChild:
		if len(ancestors) == 0 {
			return false
		}
		return cs.match(ancestors[0], ancestors[1:], idx+1)
	default:
		for i, anc := range ancestors {
			if cs.match(anc, ancestors[i+1:], idx+1) {
				return true
			}
		}
		return false
	}
}

func (c compoundSelector) match(node *VNode) bool {
	if node.Kind != KindElement {
		return false
	}
	if c.tag != "" && c.tag != "*" && !strings.EqualFold(c.tag, node.Tag) {
		return false
	}
	for _, id := range c.ids {
		if v, ok := node.Attr("id"); !ok || v != id {
			return false
		}
	}
	for _, class := range c.classes {
		if !node.HasClass(class) {
			return false
		}
	}
	for _, am := range c.attrs {
		if !am.match(node) {
			return false
		}
	}
	return true
}

func (am attrMatcher) match(node *VNode) bool {
	v, ok := node.Attr(am.name)
	if !ok {
		return false
	}
	switch am.op {
	case attrExists:
		return true
	case attrEquals:
		return v == am.value
	case attrIncludes:
		for _, f := range strings.Fields(v) {
			if f == am.value {
				return true
			}
		}
		return false
	case attrPrefix:
		return am.value != "" && strings.HasPrefix(v, am.value)
	case attrSuffix:
		return am.value != "" && strings.HasSuffix(v, am.value)
	case attrSubstring:
		return am.value != "" && strings.Contains(v, am.value)
	}
	return false
}

// splitTopLevel splits on commas outside brackets and quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '[':
			depth++
		case ch == ']':
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// parseComplex parses one complex selector into right-most-first order.
func parseComplex(src string) (complexSelector, error) {
	var (
		compounds   []compoundSelector
		combinators []combinator
	)
	p := &selectorParser{src: src}

	for {
		p.skipSpace()
		if p.done() {
			break
		}
		if len(compounds) > 0 {
			comb := combDescendant
			if p.peek() == '>' {
				comb = combChild
				p.pos++
				p.skipSpace()
			}
			combinators = append(combinators, comb)
		}
		c, err := p.compound()
		if err != nil {
			return complexSelector{}, err
		}
		compounds = append(compounds, c)
	}

	if len(compounds) == 0 || len(combinators) != len(compounds)-1 {
		return complexSelector{}, fmt.Errorf("incomplete selector %q", src)
	}

	// Reverse so index 0 is the subject compound.
	for i, j := 0, len(compounds)-1; i < j; i, j = i+1, j-1 {
		compounds[i], compounds[j] = compounds[j], compounds[i]
	}
	for i, j := 0, len(combinators)-1; i < j; i, j = i+1, j-1 {
		combinators[i], combinators[j] = combinators[j], combinators[i]
	}
	return complexSelector{compounds: compounds, combinators: combinators}, nil
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) done() bool { return p.pos >= len(p.src) }

func (p *selectorParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *selectorParser) skipSpace() {
	for !p.done() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.done() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) compound() (compoundSelector, error) {
	var c compoundSelector
	if p.peek() == '*' {
		c.tag = "*"
		p.pos++
	} else if isIdentChar(p.peek()) {
		c.tag = strings.ToLower(p.ident())
	}

loop:
	for !p.done() {
		switch ch := p.peek(); ch {
		case '#', '.':
			p.pos++
			name := p.ident()
			if name == "" {
				return c, fmt.Errorf("expected name after %q at offset %d in %q", ch, p.pos, p.src)
			}
			if ch == '#' {
				c.ids = append(c.ids, name)
			} else {
				c.classes = append(c.classes, name)
			}
		case '[':
			am, err := p.attribute()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, am)
		case '>':
			break loop
		default:
			if isSpace(ch) {
				break loop
			}
			return c, fmt.Errorf("unsupported character %q at offset %d in %q", ch, p.pos, p.src)
		}
	}

	if c.tag == "" && len(c.ids) == 0 && len(c.classes) == 0 && len(c.attrs) == 0 {
		return c, fmt.Errorf("empty compound selector in %q", p.src)
	}
	return c, nil
}

func (p *selectorParser) attribute() (attrMatcher, error) {
	p.pos++ // [
	p.skipSpace()
	am := attrMatcher{name: strings.ToLower(p.ident())}
	if am.name == "" {
		return am, fmt.Errorf("expected attribute name at offset %d in %q", p.pos, p.src)
	}
	p.skipSpace()

	if p.peek() == ']' {
		p.pos++
		am.op = attrExists
		return am, nil
	}

	switch p.peek() {
	case '=':
		am.op = attrEquals
	case '~':
		am.op = attrIncludes
	case '^':
		am.op = attrPrefix
	case '$':
		am.op = attrSuffix
	case '*':
		am.op = attrSubstring
	default:
		return am, fmt.Errorf("unsupported attribute operator at offset %d in %q", p.pos, p.src)
	}
	if am.op != attrEquals {
		p.pos++
		if p.peek() != '=' {
			return am, fmt.Errorf("expected '=' at offset %d in %q", p.pos, p.src)
		}
	}
	p.pos++ // =
	p.skipSpace()

	if q := p.peek(); q == '"' || q == '\'' {
		end := strings.IndexByte(p.src[p.pos+1:], q)
		if end < 0 {
			return am, fmt.Errorf("unterminated string in %q", p.src)
		}
		am.value = p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
	} else {
		am.value = p.ident()
	}

	p.skipSpace()
	if p.peek() != ']' {
		return am, fmt.Errorf("expected ']' at offset %d in %q", p.pos, p.src)
	}
	p.pos++
	return am, nil
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentChar(ch byte) bool {
	return ch == '-' || ch == '_' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch >= 0x80
}
