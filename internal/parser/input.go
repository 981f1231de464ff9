package parser

import (
	"strings"

	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

// Input is an immutable position in a token slice. Primitives take an Input
// and return the remaining one; an unchanged Input means nothing was consumed.
// The slice always ends with an EOF token and Input never moves past it.
type Input struct {
	toks []token.Token
	pos  int
}

// NewInput wraps toks. A trailing EOF is appended when missing.
func NewInput(toks []token.Token) Input {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		var sp source.Span
		if len(toks) > 0 {
			sp = toks[len(toks)-1].Span.ZeroideToEnd()
		}
		toks = append(toks[:len(toks):len(toks)], token.Token{Kind: token.EOF, Span: sp})
	}
	return Input{toks: toks}
}

func (in Input) Peek() token.Token { return in.toks[in.pos] }

// PeekN looks n tokens ahead; PeekN(0) == Peek().
func (in Input) PeekN(n int) token.Token {
	if in.pos+n >= len(in.toks) {
		return in.toks[len(in.toks)-1]
	}
	return in.toks[in.pos+n]
}

func (in Input) At(k token.Kind) bool { return in.toks[in.pos].Kind == k }

func (in Input) AtEOF() bool { return in.At(token.EOF) }

// Advance returns the input after the current token.
func (in Input) Advance() Input {
	if in.pos < len(in.toks)-1 {
		in.pos++
	}
	return in
}

// Next returns the current token and the input after it.
func (in Input) Next() (token.Token, Input) {
	return in.Peek(), in.Advance()
}

func (in Input) Pos() int { return in.pos }

// Same reports whether both inputs are at the same position of the same slice.
func (in Input) Same(other Input) bool {
	return in.pos == other.pos && len(in.toks) == len(other.toks)
}

// Len is the number of tokens left before EOF.
func (in Input) Len() int { return len(in.toks) - 1 - in.pos }

// SpanSince covers every token consumed between start and in.
func (in Input) SpanSince(start Input) source.Span {
	if in.pos <= start.pos {
		return start.Peek().Span.ZeroideToStart()
	}
	return start.toks[start.pos].Span.Cover(in.toks[in.pos-1].Span)
}

// Line splits off the rest of the current preprocessor line. The first
// returned Input holds the line's tokens followed by a synthetic EOF, the
// second continues at the first token of the next line.
func (in Input) Line() (line, rest Input) {
	end := in.pos
	for end < len(in.toks)-1 {
		if end > in.pos && in.toks[end].StartsLine() {
			break
		}
		end++
	}
	lineToks := make([]token.Token, 0, end-in.pos+1)
	lineToks = append(lineToks, in.toks[in.pos:end]...)
	sp := in.toks[end].Span.ZeroideToStart()
	if end > in.pos {
		sp = in.toks[end-1].Span.ZeroideToEnd()
	}
	lineToks = append(lineToks, token.Token{Kind: token.EOF, Span: sp})
	rest = in
	rest.pos = end
	return Input{toks: lineToks}, rest
}

// lastSpan is the span of the last token before EOF, or of EOF itself.
func (in Input) lastSpan() source.Span {
	n := len(in.toks)
	if n >= 2 && n-2 >= in.pos {
		return in.toks[n-2].Span
	}
	return in.toks[n-1].Span
}

// text joins the remaining token texts with single spaces.
func (in Input) text() string {
	var b strings.Builder
	for i := in.pos; i < len(in.toks)-1; i++ {
		if i > in.pos {
			b.WriteByte(' ')
		}
		b.WriteString(in.toks[i].Text)
	}
	return b.String()
}
