package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident is an identifier, including raw identifiers (r#name).
	Ident
	// Lifetime is a lifetime or loop label ('a).
	Lifetime
	IntLit
	FloatLit
	StringLit
	RawStringLit
	ByteStringLit
	RawByteStringLit
	CharLit
	ByteLit

	// keywords
	KwAs       // as
	KwAsync    // async
	KwAwait    // await
	KwBreak    // break
	KwConst    // const
	KwContinue // continue
	KwCrate    // crate
	KwDyn      // dyn
	KwElse     // else
	KwEnum     // enum
	KwExtern   // extern
	KwFalse    // false
	KwFn       // fn
	KwFor      // for
	KwIf       // if
	KwImpl     // impl
	KwIn       // in
	KwLet      // let
	KwLoop     // loop
	KwMatch    // match
	KwMod      // mod
	KwMove     // move
	KwMut      // mut
	KwPub      // pub
	KwRef      // ref
	KwReturn   // return
	KwSelf     // self
	KwSelfType // Self
	KwStatic   // static
	KwStruct   // struct
	KwSuper    // super
	KwTrait    // trait
	KwTrue     // true
	KwType     // type
	KwUnsafe   // unsafe
	KwUse      // use
	KwWhere    // where
	KwWhile    // while

	// punctuation and operators
	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Caret         // ^
	Bang          // !
	Amp           // &
	Pipe          // |
	AndAnd        // &&
	OrOr          // ||
	Shl           // <<
	Shr           // >>
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	CaretAssign   // ^=
	AmpAssign     // &=
	PipeAssign    // |=
	ShlAssign     // <<=
	ShrAssign     // >>=
	Assign        // =
	EqEq          // ==
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	At            // @
	Underscore    // _
	Dot           // .
	DotDot        // ..
	DotDotDot     // ...
	DotDotEq      // ..=
	Comma         // ,
	Semicolon     // ;
	Colon         // :
	ColonColon    // ::
	Arrow         // ->
	FatArrow      // =>
	Hash          // #
	Dollar        // $
	Question      // ?
	Tilde         // ~
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]

	kindCount
)

const (
	kwBegin    = KwAs
	kwEnd      = KwWhile + 1
	punctBegin = Plus
	punctEnd   = kindCount
)

var kindNames = [kindCount]string{
	Invalid:          "Invalid",
	EOF:              "EOF",
	Ident:            "Ident",
	Lifetime:         "Lifetime",
	IntLit:           "IntLit",
	FloatLit:         "FloatLit",
	StringLit:        "StringLit",
	RawStringLit:     "RawStringLit",
	ByteStringLit:    "ByteStringLit",
	RawByteStringLit: "RawByteStringLit",
	CharLit:          "CharLit",
	ByteLit:          "ByteLit",
	KwAs:             "KwAs",
	KwAsync:          "KwAsync",
	KwAwait:          "KwAwait",
	KwBreak:          "KwBreak",
	KwConst:          "KwConst",
	KwContinue:       "KwContinue",
	KwCrate:          "KwCrate",
	KwDyn:            "KwDyn",
	KwElse:           "KwElse",
	KwEnum:           "KwEnum",
	KwExtern:         "KwExtern",
	KwFalse:          "KwFalse",
	KwFn:             "KwFn",
	KwFor:            "KwFor",
	KwIf:             "KwIf",
	KwImpl:           "KwImpl",
	KwIn:             "KwIn",
	KwLet:            "KwLet",
	KwLoop:           "KwLoop",
	KwMatch:          "KwMatch",
	KwMod:            "KwMod",
	KwMove:           "KwMove",
	KwMut:            "KwMut",
	KwPub:            "KwPub",
	KwRef:            "KwRef",
	KwReturn:         "KwReturn",
	KwSelf:           "KwSelf",
	KwSelfType:       "KwSelfType",
	KwStatic:         "KwStatic",
	KwStruct:         "KwStruct",
	KwSuper:          "KwSuper",
	KwTrait:          "KwTrait",
	KwTrue:           "KwTrue",
	KwType:           "KwType",
	KwUnsafe:         "KwUnsafe",
	KwUse:            "KwUse",
	KwWhere:          "KwWhere",
	KwWhile:          "KwWhile",
	Plus:             "Plus",
	Minus:            "Minus",
	Star:             "Star",
	Slash:            "Slash",
	Percent:          "Percent",
	Caret:            "Caret",
	Bang:             "Bang",
	Amp:              "Amp",
	Pipe:             "Pipe",
	AndAnd:           "AndAnd",
	OrOr:             "OrOr",
	Shl:              "Shl",
	Shr:              "Shr",
	PlusAssign:       "PlusAssign",
	MinusAssign:      "MinusAssign",
	StarAssign:       "StarAssign",
	SlashAssign:      "SlashAssign",
	PercentAssign:    "PercentAssign",
	CaretAssign:      "CaretAssign",
	AmpAssign:        "AmpAssign",
	PipeAssign:       "PipeAssign",
	ShlAssign:        "ShlAssign",
	ShrAssign:        "ShrAssign",
	Assign:           "Assign",
	EqEq:             "EqEq",
	BangEq:           "BangEq",
	Lt:               "Lt",
	LtEq:             "LtEq",
	Gt:               "Gt",
	GtEq:             "GtEq",
	At:               "At",
	Underscore:       "Underscore",
	Dot:              "Dot",
	DotDot:           "DotDot",
	DotDotDot:        "DotDotDot",
	DotDotEq:         "DotDotEq",
	Comma:            "Comma",
	Semicolon:        "Semicolon",
	Colon:            "Colon",
	ColonColon:       "ColonColon",
	Arrow:            "Arrow",
	FatArrow:         "FatArrow",
	Hash:             "Hash",
	Dollar:           "Dollar",
	Question:         "Question",
	Tilde:            "Tilde",
	LParen:           "LParen",
	RParen:           "RParen",
	LBrace:           "LBrace",
	RBrace:           "RBrace",
	LBracket:         "LBracket",
	RBracket:         "RBracket",
}

// kindText is the source spelling used in diagnostics.
var kindText = [kindCount]string{
	Invalid:          "invalid token",
	EOF:              "end of file",
	Ident:            "identifier",
	Lifetime:         "lifetime",
	IntLit:           "integer literal",
	FloatLit:         "float literal",
	StringLit:        "string literal",
	RawStringLit:     "raw string literal",
	ByteStringLit:    "byte string literal",
	RawByteStringLit: "raw byte string literal",
	CharLit:          "char literal",
	ByteLit:          "byte literal",
	KwAs:             "`as`",
	KwAsync:          "`async`",
	KwAwait:          "`await`",
	KwBreak:          "`break`",
	KwConst:          "`const`",
	KwContinue:       "`continue`",
	KwCrate:          "`crate`",
	KwDyn:            "`dyn`",
	KwElse:           "`else`",
	KwEnum:           "`enum`",
	KwExtern:         "`extern`",
	KwFalse:          "`false`",
	KwFn:             "`fn`",
	KwFor:            "`for`",
	KwIf:             "`if`",
	KwImpl:           "`impl`",
	KwIn:             "`in`",
	KwLet:            "`let`",
	KwLoop:           "`loop`",
	KwMatch:          "`match`",
	KwMod:            "`mod`",
	KwMove:           "`move`",
	KwMut:            "`mut`",
	KwPub:            "`pub`",
	KwRef:            "`ref`",
	KwReturn:         "`return`",
	KwSelf:           "`self`",
	KwSelfType:       "`Self`",
	KwStatic:         "`static`",
	KwStruct:         "`struct`",
	KwSuper:          "`super`",
	KwTrait:          "`trait`",
	KwTrue:           "`true`",
	KwType:           "`type`",
	KwUnsafe:         "`unsafe`",
	KwUse:            "`use`",
	KwWhere:          "`where`",
	KwWhile:          "`while`",
	Plus:             "`+`",
	Minus:            "`-`",
	Star:             "`*`",
	Slash:            "`/`",
	Percent:          "`%`",
	Caret:            "`^`",
	Bang:             "`!`",
	Amp:              "`&`",
	Pipe:             "`|`",
	AndAnd:           "`&&`",
	OrOr:             "`||`",
	Shl:              "`<<`",
	Shr:              "`>>`",
	PlusAssign:       "`+=`",
	MinusAssign:      "`-=`",
	StarAssign:       "`*=`",
	SlashAssign:      "`/=`",
	PercentAssign:    "`%=`",
	CaretAssign:      "`^=`",
	AmpAssign:        "`&=`",
	PipeAssign:       "`|=`",
	ShlAssign:        "`<<=`",
	ShrAssign:        "`>>=`",
	Assign:           "`=`",
	EqEq:             "`==`",
	BangEq:           "`!=`",
	Lt:               "`<`",
	LtEq:             "`<=`",
	Gt:               "`>`",
	GtEq:             "`>=`",
	At:               "`@`",
	Underscore:       "`_`",
	Dot:              "`.`",
	DotDot:           "`..`",
	DotDotDot:        "`...`",
	DotDotEq:         "`..=`",
	Comma:            "`,`",
	Semicolon:        "`;`",
	Colon:            "`:`",
	ColonColon:       "`::`",
	Arrow:            "`->`",
	FatArrow:         "`=>`",
	Hash:             "`#`",
	Dollar:           "`$`",
	Question:         "`?`",
	Tilde:            "`~`",
	LParen:           "`(`",
	RParen:           "`)`",
	LBrace:           "`{`",
	RBrace:           "`}`",
	LBracket:         "`[`",
	RBracket:         "`]`",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Describe returns a human readable form for diagnostics ("`::`", "identifier").
func (k Kind) Describe() string {
	if k < kindCount {
		return kindText[k]
	}
	return "unknown token"
}

// IsOpen reports whether k opens a delimited group.
func (k Kind) IsOpen() bool {
	return k == LParen || k == LBrace || k == LBracket
}

// IsClose reports whether k closes a delimited group.
func (k Kind) IsClose() bool {
	return k == RParen || k == RBrace || k == RBracket
}

// Closer returns the closing delimiter for an opening one.
func (k Kind) Closer() Kind {
	switch k {
	case LParen:
		return RParen
	case LBrace:
		return RBrace
	case LBracket:
		return RBracket
	default:
		return Invalid
	}
}

// IsCompoundAssign reports whether k is an operator-assignment (+=, <<=, ...).
func (k Kind) IsCompoundAssign() bool {
	switch k {
	case PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign,
		CaretAssign, AmpAssign, PipeAssign, ShlAssign, ShrAssign:
		return true
	default:
		return false
	}
}
