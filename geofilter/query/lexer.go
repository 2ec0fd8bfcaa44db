package query

import (
	"strconv"
	"strings"
	"unicode"
)

// Lex tokenizes a text-encoded filter expression. Keywords are not
// distinguished here; the parser matches identifier values
// case-insensitively.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)
	i := 0

	byteOffset := func(runeIdx int) int {
		return len(string(runes[:runeIdx]))
	}

	for i < len(runes) {
		r := runes[i]

		if unicode.IsSpace(r) {
			i++
			continue
		}

		start := i
		switch {
		case r == ',':
			i++
			tokens = append(tokens, tok(TokComma, ",", byteOffset(start), byteOffset(i)))
		case r == '(':
			i++
			tokens = append(tokens, tok(TokLParen, "(", byteOffset(start), byteOffset(i)))
		case r == ')':
			i++
			tokens = append(tokens, tok(TokRParen, ")", byteOffset(start), byteOffset(i)))
		case r == '+':
			i++
			tokens = append(tokens, tok(TokPlus, "+", byteOffset(start), byteOffset(i)))
		case r == '-':
			i++
			tokens = append(tokens, tok(TokMinus, "-", byteOffset(start), byteOffset(i)))
		case r == '*':
			i++
			tokens = append(tokens, tok(TokStar, "*", byteOffset(start), byteOffset(i)))
		case r == '/':
			i++
			tokens = append(tokens, tok(TokSlash, "/", byteOffset(start), byteOffset(i)))
		case r == '%':
			i++
			tokens = append(tokens, tok(TokPercent, "%", byteOffset(start), byteOffset(i)))
		case r == '^':
			i++
			tokens = append(tokens, tok(TokCaret, "^", byteOffset(start), byteOffset(i)))
		case r == '=':
			i++
			tokens = append(tokens, tok(TokEq, "=", byteOffset(start), byteOffset(i)))
		case r == '<':
			i++
			if i < len(runes) && runes[i] == '>' {
				i++
				tokens = append(tokens, tok(TokNeq, "<>", byteOffset(start), byteOffset(i)))
			} else if i < len(runes) && runes[i] == '=' {
				i++
				tokens = append(tokens, tok(TokLte, "<=", byteOffset(start), byteOffset(i)))
			} else {
				tokens = append(tokens, tok(TokLt, "<", byteOffset(start), byteOffset(i)))
			}
		case r == '>':
			i++
			if i < len(runes) && runes[i] == '=' {
				i++
				tokens = append(tokens, tok(TokGte, ">=", byteOffset(start), byteOffset(i)))
			} else {
				tokens = append(tokens, tok(TokGt, ">", byteOffset(start), byteOffset(i)))
			}
		case r == '.' && i+1 < len(runes) && runes[i+1] == '.':
			i += 2
			tokens = append(tokens, tok(TokDotDot, "..", byteOffset(start), byteOffset(i)))
		case r == '\'':
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '\'' {
					// doubled quote is an escaped quote
					if i+1 < len(runes) && runes[i+1] == '\'' {
						sb.WriteRune('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, &ParseError{
					Pos:     byteOffset(start),
					Message: "unterminated string literal",
				}
			}
			tokens = append(tokens, tok(TokString, sb.String(), byteOffset(start), byteOffset(i)))
		case r == '"':
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '"' {
					i++
					closed = true
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, &ParseError{
					Pos:     byteOffset(start),
					Message: "unterminated quoted identifier",
				}
			}
			tokens = append(tokens, tok(TokQuotedIdent, sb.String(), byteOffset(start), byteOffset(i)))
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				// stop before a '..' interval bound
				if runes[i] == '.' && i+1 < len(runes) && runes[i+1] == '.' {
					break
				}
				i++
			}
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			text := string(runes[start:i])
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{
					Pos:     byteOffset(start),
					Found:   text,
					Message: "invalid numeric literal",
				}
			}
			t := tok(TokNumber, text, byteOffset(start), byteOffset(i))
			t.Num = n
			tokens = append(tokens, t)
		case unicode.IsLetter(r) || r == '_':
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '.' || runes[i] == ':') {
				// identifiers may be dotted paths; stop before '..'
				if runes[i] == '.' && i+1 < len(runes) && runes[i+1] == '.' {
					break
				}
				i++
			}
			tokens = append(tokens, tok(TokIdent, string(runes[start:i]), byteOffset(start), byteOffset(i)))
		default:
			return nil, &ParseError{
				Pos:     byteOffset(start),
				Found:   string(r),
				Message: "unexpected character",
			}
		}
	}

	tokens = append(tokens, tok(TokEOF, "", len(input), len(input)))
	return tokens, nil
}

func tok(kind TokenKind, value string, pos, end int) Token {
	return Token{Kind: kind, Value: value, Pos: pos, End: end}
}
