package query

// TokenKind is the type of lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokQuotedIdent
	TokString
	TokNumber
	TokComma
	TokLParen
	TokRParen
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokCaret
	TokEq
	TokNeq
	TokLt
	TokLte
	TokGt
	TokGte
	TokDotDot
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of input"
	case TokIdent:
		return "identifier"
	case TokQuotedIdent:
		return "quoted identifier"
	case TokString:
		return "string"
	case TokNumber:
		return "number"
	case TokComma:
		return "','"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokPlus:
		return "'+'"
	case TokMinus:
		return "'-'"
	case TokStar:
		return "'*'"
	case TokSlash:
		return "'/'"
	case TokPercent:
		return "'%'"
	case TokCaret:
		return "'^'"
	case TokEq:
		return "'='"
	case TokNeq:
		return "'<>'"
	case TokLt:
		return "'<'"
	case TokLte:
		return "'<='"
	case TokGt:
		return "'>'"
	case TokGte:
		return "'>='"
	case TokDotDot:
		return "'..'"
	default:
		return "?"
	}
}

// Token carries its source offsets so the parser can slice raw input back
// out, which is how WKT geometry literals are captured.
type Token struct {
	Kind  TokenKind
	Value string
	Num   float64
	Pos   int
	End   int
}
