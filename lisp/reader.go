package lisp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/reusee/tailisp/nodes"
)

// Reader parses source text into arena nodes, one top-level form at a
// time. Lists are read as a NodeRef element pointing at a chain of cells.
type Reader struct {
	rt   *Runtime
	src  *bufio.Reader
	line int
}

func (r *Runtime) NewReader(src io.Reader) *Reader {
	return &Reader{
		rt:   r,
		src:  bufio.NewReader(src),
		line: 1,
	}
}

// Read returns the next form as an element, or io.EOF when the input is
// exhausted.
func (p *Reader) Read() (Index, error) {
	c, err := p.skip()
	if err != nil {
		return Nil, err
	}
	if c == ')' {
		return Nil, p.errorf("unexpected )")
	}
	return p.read(c)
}

func (p *Reader) errorf(format string, args ...any) error {
	return &SyntaxError{
		Line: p.line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (p *Reader) next() (rune, error) {
	c, _, err := p.src.ReadRune()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		p.line++
	}
	return c, nil
}

func (p *Reader) unread(c rune) {
	if c == '\n' {
		p.line--
	}
	_ = p.src.UnreadRune()
}

// skip returns the next rune that is not whitespace or comment.
func (p *Reader) skip() (rune, error) {
	for {
		c, err := p.next()
		if err != nil {
			return 0, err
		}
		switch {
		case unicode.IsSpace(c):
		case c == ';':
			for c != '\n' {
				if c, err = p.next(); err != nil {
					return 0, err
				}
			}
		default:
			return c, nil
		}
	}
}

func isDelimiter(c rune) bool {
	return unicode.IsSpace(c) ||
		c == '(' ||
		c == ')' ||
		c == '"' ||
		c == ';' ||
		c == '\''
}

// read parses the form starting with c.
func (p *Reader) read(c rune) (Index, error) {
	switch c {
	case '(':
		return p.readList()
	case '\'':
		return p.readQuote()
	case '"':
		return p.readString()
	}
	token, err := p.readToken(c)
	if err != nil {
		return Nil, err
	}
	if token == "." {
		return Nil, p.errorf("unexpected .")
	}
	return p.atom(token)
}

func (p *Reader) readToken(c rune) (string, error) {
	var b strings.Builder
	b.WriteRune(c)
	for {
		c, err := p.next()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return "", err
		}
		if isDelimiter(c) {
			p.unread(c)
			break
		}
		b.WriteRune(c)
	}
	return b.String(), nil
}

func (p *Reader) atom(token string) (Index, error) {
	a := p.rt.arena
	i, err := strconv.ParseInt(token, 10, 32)
	if err == nil {
		return a.NewInt(int32(i)), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return Nil, p.errorf("integer out of range: %s", token)
	}
	return a.NewScalar(nodes.TypeIdentifier, uint32(p.rt.intern(token))), nil
}

// asCell turns a read element into a list cell.
func (p *Reader) asCell(v Index) Index {
	a := p.rt.arena
	if v == Nil {
		v = a.NewScalar(nodes.TypeNodeRef, uint32(Nil))
	}
	a.At(v).Element = false
	return v
}

func (p *Reader) readList() (Index, error) {
	a := p.rt.arena
	var first, prev Index
	for {
		c, err := p.skip()
		if errors.Is(err, io.EOF) {
			return Nil, p.errorf("unexpected end of input in list")
		} else if err != nil {
			return Nil, err
		}

		if c == ')' {
			if first == Nil {
				return Nil, nil
			}
			return a.NewScalar(nodes.TypeNodeRef, uint32(first)), nil
		}

		if c == '.' {
			after, err := p.next()
			if err == nil {
				p.unread(after)
			}
			if err != nil || isDelimiter(after) {
				if first == Nil {
					return Nil, p.errorf("unexpected .")
				}
				return p.readTail(first, prev)
			}
		}

		v, err := p.read(c)
		if err != nil {
			return Nil, err
		}
		cell := p.asCell(v)
		if first == Nil {
			first = cell
		} else {
			a.At(prev).Next = cell
		}
		prev = cell
	}
}

// readTail reads the form after a dot and the closing paren.
func (p *Reader) readTail(first, prev Index) (Index, error) {
	a := p.rt.arena
	c, err := p.skip()
	if err != nil {
		return Nil, p.errorf("unexpected end of input after .")
	}
	if c == ')' {
		return Nil, p.errorf("missing form after .")
	}
	tail, err := p.read(c)
	if err != nil {
		return Nil, err
	}
	if c, err := p.skip(); err != nil || c != ')' {
		return Nil, p.errorf("expecting ) after dotted tail")
	}

	switch t := a.Get(tail); {
	case tail == Nil:
		// (a . ()) is (a)
	case t.Type == nodes.TypeNodeRef:
		// (a . (b c)) is (a b c)
		a.At(prev).Next = t.Ref()
	default:
		a.At(prev).Next = tail
	}
	return a.NewScalar(nodes.TypeNodeRef, uint32(first)), nil
}

// readQuote reads 'x as (quote x).
func (p *Reader) readQuote() (Index, error) {
	a := p.rt.arena
	c, err := p.skip()
	if err != nil {
		return Nil, p.errorf("unexpected end of input after '")
	}
	if c == ')' {
		return Nil, p.errorf("unexpected )")
	}
	v, err := p.read(c)
	if err != nil {
		return Nil, err
	}
	operand := p.asCell(v)
	head := a.Chain(nodes.TypeIdentifier, uint32(p.rt.intern("quote")), operand)
	return a.NewScalar(nodes.TypeNodeRef, uint32(head)), nil
}

func (p *Reader) readString() (Index, error) {
	var b strings.Builder
	for {
		c, err := p.next()
		if err != nil {
			return Nil, p.errorf("unterminated string")
		}
		switch c {
		case '"':
			chars := p.rt.intern(b.String())
			return p.rt.arena.NewScalar(nodes.TypeStringRef, uint32(chars)), nil
		case '\\':
			c, err = p.next()
			if err != nil {
				return Nil, p.errorf("unterminated string")
			}
			switch c {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			}
		}
		b.WriteRune(c)
	}
}
