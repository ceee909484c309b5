// Package token defines lexical token kinds and trivia for oxide.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Comments and whitespace never appear in the main token stream; they are
//     attached to the following token as leading Trivia.
//   - Contextual words (union, auto, default, macro_rules) are identifiers;
//     the parser recognises them by text.
package token
