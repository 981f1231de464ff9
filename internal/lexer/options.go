package lexer

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
)

type Options struct {
	// Reporter receives LEX diagnostics. It may be nil: the lexer keeps going
	// and only marks bad input with Invalid tokens.
	Reporter diag.Reporter
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
