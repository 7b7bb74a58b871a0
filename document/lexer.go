package document

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

type tokenType int

const (
	tokenDict    tokenType = iota // '<<'
	tokenArray                    // '['
	tokenName                     // '/Name'
	tokenString                   // literal or hex string
	tokenNumber                   // numeric value
	tokenBoolean                  // true/false
	tokenNull                     // null
	tokenRef                      // indirect ref '5 0 R'
	tokenKeyword                  // obj, endobj, stream, >>, ], operators
)

type token struct {
	typ   tokenType
	value interface{}
	pos   int
}

var errUnterminated = errors.New("document: unterminated token")

// lexer tokenizes an in-memory byte slice. Content streams and file
// bodies share it; content operators come back as keywords.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer { return &lexer{data: data} }

func (l *lexer) next() (token, error) {
	l.skipWSAndComments()
	if l.pos >= len(l.data) {
		return token{}, io.EOF
	}
	start := l.pos
	c := l.data[l.pos]
	switch c {
	case '<':
		if l.peek(1) == '<' {
			l.pos += 2
			return token{typ: tokenDict, value: "<<", pos: start}, nil
		}
		return l.scanHexString()
	case '>':
		if l.peek(1) == '>' {
			l.pos += 2
			return token{typ: tokenKeyword, value: ">>", pos: start}, nil
		}
		l.pos++
		return token{typ: tokenKeyword, value: ">", pos: start}, nil
	case '[':
		l.pos++
		return token{typ: tokenArray, value: "[", pos: start}, nil
	case ']':
		l.pos++
		return token{typ: tokenKeyword, value: "]", pos: start}, nil
	case '(':
		return l.scanLiteralString()
	case '/':
		return l.scanName(), nil
	}
	if isDigitStart(c) {
		return l.scanNumberOrRef()
	}
	return l.scanKeyword(), nil
}

func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.data) {
		return 0
	}
	return l.data[l.pos+n]
}

func (l *lexer) skipWSAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && !isEOL(l.data[l.pos]) {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) scanName() token {
	start := l.pos
	l.pos++ // skip '/'
	var out bytes.Buffer
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isDelimiter(c) {
			break
		}
		if c == '#' && l.pos+2 < len(l.data) {
			out.WriteByte(fromHex(l.data[l.pos+1])<<4 | fromHex(l.data[l.pos+2]))
			l.pos += 3
			continue
		}
		out.WriteByte(c)
		l.pos++
	}
	return token{typ: tokenName, value: out.String(), pos: start}
}

func (l *lexer) scanLiteralString() (token, error) {
	start := l.pos
	l.pos++ // skip '('
	var buf bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return token{}, errUnterminated
			}
			esc := l.data[l.pos]
			switch {
			case esc == '\r':
				l.pos++
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case esc == '\n':
				l.pos++
			case esc >= '0' && esc <= '7':
				val := 0
				for k := 0; k < 3 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; k++ {
					val = val<<3 + int(l.data[l.pos]-'0')
					l.pos++
				}
				buf.WriteByte(byte(val))
			default:
				buf.WriteByte(translateEscape(esc))
				l.pos++
			}
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				l.pos++
				return token{typ: tokenString, value: StringObj{Bytes: buf.Bytes()}, pos: start}, nil
			}
		}
		buf.WriteByte(c)
		l.pos++
	}
	return token{}, errUnterminated
}

func (l *lexer) scanHexString() (token, error) {
	start := l.pos
	l.pos++ // skip '<'
	var hexbuf []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if len(hexbuf)%2 == 1 {
				hexbuf = append(hexbuf, '0')
			}
			out := make([]byte, 0, len(hexbuf)/2)
			for i := 0; i < len(hexbuf); i += 2 {
				out = append(out, fromHex(hexbuf[i])<<4|fromHex(hexbuf[i+1]))
			}
			return token{typ: tokenString, value: StringObj{Bytes: out, Hex: true}, pos: start}, nil
		}
		if !isWhitespace(c) {
			hexbuf = append(hexbuf, c)
		}
	}
	return token{}, errUnterminated
}

func (l *lexer) scanKeyword() token {
	start := l.pos
	for l.pos < len(l.data) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		// stray delimiter such as '{'
		l.pos++
	}
	kw := string(l.data[start:l.pos])
	switch kw {
	case "true", "false":
		return token{typ: tokenBoolean, value: kw == "true", pos: start}
	case "null":
		return token{typ: tokenNull, pos: start}
	}
	return token{typ: tokenKeyword, value: kw, pos: start}
}

func (l *lexer) scanNumberOrRef() (token, error) {
	start := l.pos
	num1 := l.scanNumberString()
	if num1 == "" {
		return l.scanKeyword(), nil
	}
	if i1, err := strconv.Atoi(num1); err == nil {
		save := l.pos
		l.skipWSAndComments()
		num2 := l.scanNumberString()
		if num2 != "" {
			l.skipWSAndComments()
			if l.pos < len(l.data) && l.data[l.pos] == 'R' && (l.pos+1 >= len(l.data) || isDelimiter(l.data[l.pos+1])) {
				if i2, err := strconv.Atoi(num2); err == nil {
					l.pos++
					return token{typ: tokenRef, value: ObjectRef{Num: i1, Gen: i2}, pos: start}, nil
				}
			}
		}
		l.pos = save
		return token{typ: tokenNumber, value: NumberInt(int64(i1)), pos: start}, nil
	}
	f, err := strconv.ParseFloat(num1, 64)
	if err != nil {
		return token{}, errors.New("document: invalid number " + num1)
	}
	return token{typ: tokenNumber, value: NumberFloat(f), pos: start}, nil
}

func (l *lexer) scanNumberString() string {
	start := l.pos
	seenDigit := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			seenDigit = seenDigit || (c >= '0' && c <= '9')
			l.pos++
			continue
		}
		break
	}
	if !seenDigit {
		l.pos = start
		return ""
	}
	return string(l.data[start:l.pos])
}

func isDigitStart(c byte) bool { return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') }

func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isEOL(c byte) bool { return c == '\r' || c == '\n' }

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return isWhitespace(c)
	}
}

func fromHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return c
	}
}
