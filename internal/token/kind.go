package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	StringLit

	KwLet    // let
	KwIn     // in
	KwFun    // fun
	KwIf     // if
	KwThen   // then
	KwElse   // else
	KwForall // forall
	KwTrue   // true
	KwFalse  // false
	KwType   // Type

	Plus     // +
	PlusPlus // ++
	Minus    // -
	Star     // *
	Slash    // /
	Percent  // %
	EqEq     // ==
	BangEq   // !=
	Lt       // <
	LtEq     // <=
	Gt       // >
	GtEq     // >=
	AndAnd   // &&
	OrOr     // ||
	Bang     // !
	Assign   // =
	Colon    // :
	Comma    // ,
	Dot      // .
	Arrow    // ->
	At       // @

	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
)

var kindText = [...]string{
	Invalid:   "invalid",
	EOF:       "end of input",
	Ident:     "identifier",
	IntLit:    "integer literal",
	StringLit: "string literal",
	KwLet:     "let",
	KwIn:      "in",
	KwFun:     "fun",
	KwIf:      "if",
	KwThen:    "then",
	KwElse:    "else",
	KwForall:  "forall",
	KwTrue:    "true",
	KwFalse:   "false",
	KwType:    "Type",
	Plus:      "+",
	PlusPlus:  "++",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	EqEq:      "==",
	BangEq:    "!=",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	AndAnd:    "&&",
	OrOr:      "||",
	Bang:      "!",
	Assign:    "=",
	Colon:     ":",
	Comma:     ",",
	Dot:       ".",
	Arrow:     "->",
	At:        "@",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
}

func (k Kind) String() string {
	if int(k) < len(kindText) {
		return kindText[k]
	}
	return "unknown"
}
