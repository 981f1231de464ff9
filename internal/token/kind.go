package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	KwTypedef  // typedef
	KwStruct   // struct
	KwUnion    // union
	KwEnum     // enum
	KwConst    // const
	KwVolatile // volatile
	KwRestrict // restrict
	KwExtern   // extern
	KwStatic   // static
	KwInline   // inline
	KwSigned   // signed
	KwUnsigned // unsigned
	KwSizeof   // sizeof

	IntLit    // 123, 0x7Fu, 1ull
	FloatLit  // 1.0f, 3e-5
	CharLit   // 'a', L'a'
	StringLit // "abc"
	// RawText is the unlexed remainder of a #error or #warning line.
	RawText

	Hash     // #
	HashHash // ##

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	PlusPlus      // ++
	MinusMinus    // --
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	Ellipsis      // ...
	Arrow         // ->
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	Backslash     // \ outside a line continuation
)

var kindNames = [...]string{
	Invalid: "Invalid", EOF: "EOF", Ident: "Ident",
	KwTypedef: "typedef", KwStruct: "struct", KwUnion: "union", KwEnum: "enum",
	KwConst: "const", KwVolatile: "volatile", KwRestrict: "restrict", KwExtern: "extern",
	KwStatic: "static", KwInline: "inline", KwSigned: "signed", KwUnsigned: "unsigned",
	KwSizeof: "sizeof",
	IntLit:   "IntLit", FloatLit: "FloatLit", CharLit: "CharLit", StringLit: "StringLit",
	RawText: "RawText", Hash: "#", HashHash: "##",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=",
	PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=",
	PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=", CaretAssign: "^=",
	ShlAssign: "<<=", ShrAssign: ">>=", PlusPlus: "++", MinusMinus: "--",
	EqEq: "==", Bang: "!", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Shl: "<<", Shr: ">>", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	AndAnd: "&&", OrOr: "||", Question: "?", Colon: ":", Semicolon: ";",
	Comma: ",", Dot: ".", Ellipsis: "...", Arrow: "->",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Backslash: "\\",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
