package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// Literal parses an integer, float, char or string literal. Adjacent string
// literals concatenate. Invalid tokens that look like literals are hard
// errors; anything else is a soft non-match.
func Literal(in Input) (Input, *ast.Literal, error) {
	tok := in.Peek()
	switch tok.Kind {
	case token.IntLit:
		lit, err := intLiteral(tok)
		if err != nil {
			return in, nil, err
		}
		return in.Advance(), lit, nil
	case token.FloatLit:
		lit, err := floatLiteral(tok)
		if err != nil {
			return in, nil, err
		}
		return in.Advance(), lit, nil
	case token.CharLit:
		lit, err := charLiteral(tok)
		if err != nil {
			return in, nil, err
		}
		return in.Advance(), lit, nil
	case token.StringLit:
		return stringLiteral(in)
	case token.Invalid:
		if looksLikeLiteral(tok.Text) {
			return in, nil, hard(diag.SynBadLiteral, tok.Span, "%s", invalidLiteral(tok.Text))
		}
	}
	return in, nil, nil
}

// invalidLiteral describes a literal the lexer rejected.
func invalidLiteral(text string) string {
	if len(text) >= 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			return "integer literal " + strconv.Quote(text) + " has no hexadecimal digits"
		case 'b', 'B':
			return "integer literal " + strconv.Quote(text) + " has no binary digits"
		}
	}
	return "malformed literal " + strconv.Quote(text)
}

func looksLikeLiteral(text string) bool {
	if text == "" {
		return false
	}
	c := text[0]
	if c >= '0' && c <= '9' || c == '"' || c == '\'' {
		return true
	}
	t := strings.TrimLeft(text, "LuU8")
	return t != "" && len(t) < len(text) && (t[0] == '"' || t[0] == '\'')
}

// splitNumber separates the digit part of an integer token from its suffix.
func splitNumber(text string) (digits, suffix string) {
	i := 0
	if len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		i = 2
		for i < len(text) && isHexDigit(text[i]) {
			i++
		}
	} else {
		for i < len(text) && (text[i] >= '0' && text[i] <= '9' ||
			i == 1 && (text[i] == 'b' || text[i] == 'B') && text[0] == '0') {
			i++
		}
	}
	return text[:i], text[i:]
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

func intLiteral(tok token.Token) (*ast.Literal, error) {
	digits, suffix := splitNumber(tok.Text)
	unsigned, longs, ok := intSuffix(suffix)
	if !ok {
		return nil, hard(diag.SynBadLiteralSuffix, tok.Span, "invalid suffix %q on integer literal %q", suffix, tok.Text)
	}

	base := 10
	body := digits
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base, body = 16, body[2:]
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		base, body = 2, body[2:]
	case len(body) > 1 && body[0] == '0':
		base, body = 8, body[1:]
	}
	if body == "" {
		return nil, hard(diag.SynBadLiteral, tok.Span, "integer literal %q has no %s digits", tok.Text, baseName(base))
	}
	v, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, hard(diag.SynBadLiteral, tok.Span, "integer literal %q out of range", tok.Text)
		}
		return nil, hard(diag.SynBadLiteral, tok.Span, "invalid digit in %s literal %q", baseName(base), tok.Text)
	}

	return &ast.Literal{
		Kind:   ast.LitInt,
		Type:   intType(v, base == 10, unsigned, longs),
		Raw:    tok.Text,
		Digits: digits,
		Int:    v,
		Span:   tok.Span,
	}, nil
}

// intSuffix accepts u, l, ll in either order and any case. "lL" is rejected.
func intSuffix(s string) (unsigned bool, longs int, ok bool) {
	rest := s
	take := func() {
		switch {
		case strings.HasPrefix(rest, "ll") || strings.HasPrefix(rest, "LL"):
			longs, rest = 2, rest[2:]
		case strings.HasPrefix(rest, "l") || strings.HasPrefix(rest, "L"):
			longs, rest = 1, rest[1:]
		}
	}
	take()
	if strings.HasPrefix(rest, "u") || strings.HasPrefix(rest, "U") {
		unsigned, rest = true, rest[1:]
		if longs == 0 {
			take()
		}
	}
	return unsigned, longs, rest == ""
}

// intType picks the first type of the C promotion ladder that holds v.
func intType(v uint64, decimal, unsigned bool, longs int) ast.PrimType {
	switch {
	case longs == 2 && unsigned:
		return ast.PrimULongLong
	case longs == 2:
		if v > math.MaxInt64 && !decimal {
			return ast.PrimULongLong
		}
		return ast.PrimLongLong
	case longs == 1 && unsigned:
		return ast.PrimULong
	case longs == 1:
		return ast.PrimLong
	case unsigned:
		if v <= math.MaxUint32 {
			return ast.PrimUInt
		}
		return ast.PrimULongLong
	}
	switch {
	case v <= math.MaxInt32:
		return ast.PrimInt
	case v <= math.MaxUint32 && !decimal:
		return ast.PrimUInt
	case v <= math.MaxInt64:
		return ast.PrimLongLong
	}
	return ast.PrimULongLong
}

func floatLiteral(tok token.Token) (*ast.Literal, error) {
	text := tok.Text
	end := len(text)
	for end > 0 && isSuffixLetter(text[end-1]) {
		end--
	}
	digits, suffix := text[:end], text[end:]
	typ := ast.PrimDouble
	switch strings.ToLower(suffix) {
	case "":
	case "f":
		typ = ast.PrimFloat
	case "l":
		typ = ast.PrimLongDouble
	default:
		return nil, hard(diag.SynBadLiteralSuffix, tok.Span, "invalid suffix %q on floating literal %q", suffix, text)
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil, hard(diag.SynBadLiteral, tok.Span, "malformed floating literal %q", text)
	}
	return &ast.Literal{
		Kind:   ast.LitFloat,
		Type:   typ,
		Raw:    text,
		Digits: digits,
		Float:  v,
		Span:   tok.Span,
	}, nil
}

func isSuffixLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func charLiteral(tok token.Token) (*ast.Literal, error) {
	text := tok.Text
	typ := ast.PrimChar
	q := strings.IndexByte(text, '\'')
	if q < 0 || len(text) < q+2 || text[len(text)-1] != '\'' {
		return nil, hard(diag.SynBadLiteral, tok.Span, "malformed character literal %q", text)
	}
	if q > 0 {
		typ = ast.PrimWChar
	}
	body, err := unescape(text[q+1 : len(text)-1])
	if err != nil || body == "" {
		return nil, hard(diag.SynBadLiteral, tok.Span, "malformed character literal %q", text)
	}
	var v uint64
	if typ == ast.PrimWChar {
		r := []rune(body)
		v = uint64(r[0])
	} else {
		// multi-character constants pack big-endian, as C compilers do
		for i := 0; i < len(body); i++ {
			v = v<<8 | uint64(body[i])
		}
	}
	return &ast.Literal{
		Kind:   ast.LitChar,
		Type:   typ,
		Raw:    text,
		Digits: text,
		Int:    v,
		Str:    body,
		Span:   tok.Span,
	}, nil
}

func stringLiteral(in Input) (Input, *ast.Literal, error) {
	start := in
	var raw []string
	var val strings.Builder
	for in.At(token.StringLit) {
		tok := in.Peek()
		q := strings.IndexByte(tok.Text, '"')
		if q < 0 || len(tok.Text) < q+2 {
			return start, nil, hard(diag.SynBadLiteral, tok.Span, "malformed string literal %q", tok.Text)
		}
		s, err := unescape(tok.Text[q+1 : len(tok.Text)-1])
		if err != nil {
			return start, nil, hard(diag.SynBadLiteral, tok.Span, "%v in string literal", err)
		}
		raw = append(raw, tok.Text)
		val.WriteString(s)
		in = in.Advance()
	}
	return in, &ast.Literal{
		Kind:   ast.LitString,
		Type:   ast.PrimString,
		Raw:    strings.Join(raw, " "),
		Digits: strings.Join(raw, " "),
		Str:    val.String(),
		Span:   in.SpanSince(start),
	}, nil
}

type escapeError string

func (e escapeError) Error() string { return string(e) }

// unescape decodes C escape sequences into bytes.
func unescape(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", escapeError("trailing backslash")
		}
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\', '\'', '"', '?':
			b.WriteByte(e)
		case 'x':
			j := i + 1
			for j < len(s) && isHexDigit(s[j]) {
				j++
			}
			if j == i+1 {
				return "", escapeError("\\x without hex digits")
			}
			v, err := strconv.ParseUint(s[i+1:j], 16, 8)
			if err != nil {
				return "", escapeError("hex escape out of range")
			}
			b.WriteByte(byte(v))
			i = j - 1
		default:
			if e < '0' || e > '7' {
				return "", escapeError("unknown escape \\" + string(e))
			}
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, err := strconv.ParseUint(s[i:j], 8, 16)
			if err != nil || v > 0xFF {
				return "", escapeError("octal escape out of range")
			}
			b.WriteByte(byte(v))
			i = j - 1
		}
	}
	return b.String(), nil
}

func baseName(base int) string {
	switch base {
	case 16:
		return "hexadecimal"
	case 8:
		return "octal"
	case 2:
		return "binary"
	}
	return "decimal"
}
