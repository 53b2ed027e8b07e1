package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokColumn
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	pos  int
	num  float64
	text string
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of formula"
	case tokColumn:
		return "{" + t.text + "}"
	}
	return strconv.Quote(t.text)
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, pos: i, text: "+"})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, pos: i, text: "-"})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, pos: i, text: "*"})
			i++
		case c == '/':
			toks = append(toks, token{kind: tokSlash, pos: i, text: "/"})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i, text: ")"})
			i++
		case c == '{':
			end := strings.IndexByte(src[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed placeholder at position %d", i+1)
			}
			name := src[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("empty placeholder at position %d", i+1)
			}
			toks = append(toks, token{kind: tokColumn, pos: i, text: name})
			i += end + 2
		case isDigit(c) || c == '.':
			n := scanNumber(src[i:])
			f, err := strconv.ParseFloat(src[i:i+n], 64)
			if err != nil {
				if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
					return nil, fmt.Errorf("invalid number %q at position %d", src[i:i+n], i+1)
				}
			}
			toks = append(toks, token{kind: tokNumber, pos: i, num: f, text: src[i : i+n]})
			i += n
		default:
			r := []rune(src[i:])[0]
			if unicode.IsSpace(r) {
				i += len(string(r))
				continue
			}
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i+1)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanNumber returns the length of the numeric literal at the start of s:
// digits with an optional fraction and exponent.
func scanNumber(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}
