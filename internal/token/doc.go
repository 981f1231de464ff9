// Package token defines C token kinds and trivia for the header scanner.
// Invariants:
//   - Token.Text is the exact source text of Token.Span.
//   - Comments and whitespace never appear in the token stream; they are
//     attached to the following token as leading Trivia.
//   - Built-in type names (int, char, Uint32, ...) are identifiers; only
//     storage, qualifier and aggregate keywords get their own kinds.
//   - Preprocessor directives are a Hash token that starts a line followed by
//     ordinary tokens up to the next token that starts a line.
package token
