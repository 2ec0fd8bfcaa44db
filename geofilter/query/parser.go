package query

import (
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/geo"
)

// predicateOps maps the function-style predicate keywords onto operators.
var predicateOps = map[string]Op{
	"S_INTERSECTS": OpSIntersects, "S_EQUALS": OpSEquals,
	"S_DISJOINT": OpSDisjoint, "S_TOUCHES": OpSTouches,
	"S_WITHIN": OpSWithin, "S_OVERLAPS": OpSOverlaps,
	"S_CROSSES": OpSCrosses, "S_CONTAINS": OpSContains,
	"T_AFTER": OpTAfter, "T_BEFORE": OpTBefore, "T_CONTAINS": OpTContains,
	"T_DISJOINT": OpTDisjoint, "T_DURING": OpTDuring, "T_EQUALS": OpTEquals,
	"T_FINISHEDBY": OpTFinishedBy, "T_FINISHES": OpTFinishes,
	"T_INTERSECTS": OpTIntersects, "T_MEETS": OpTMeets, "T_METBY": OpTMetBy,
	"T_OVERLAPPEDBY": OpTOverlappedBy, "T_OVERLAPS": OpTOverlaps,
	"T_STARTEDBY": OpTStartedBy, "T_STARTS": OpTStarts,
	"A_EQUALS": OpAEquals, "A_CONTAINS": OpAContains,
	"A_CONTAINEDBY": OpAContainedBy, "A_OVERLAPS": OpAOverlaps,
}

var geometryKeywords = map[string]bool{
	"POINT": true, "LINESTRING": true, "POLYGON": true,
	"MULTIPOINT": true, "MULTILINESTRING": true, "MULTIPOLYGON": true,
	"GEOMETRYCOLLECTION": true,
}

// Parse parses a text-encoded filter expression. Geometry coordinates are
// rounded to the default precision.
func Parse(input string) (Expr, error) {
	return ParseWithPrecision(input, geofilter.DefaultPrecision)
}

// ParseWithPrecision parses a text-encoded filter expression, rounding
// geometry coordinates to the given number of decimal places.
func ParseWithPrecision(input string, precision int) (Expr, error) {
	toks, err := Lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{src: input, toks: toks, precision: precision}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokEOF {
		return nil, errExpected(p.cur(), "end of input")
	}
	return e, nil
}

type parser struct {
	src       string
	toks      []Token
	i         int
	precision int
}

func (p *parser) cur() Token  { return p.toks[p.i] }
func (p *parser) next() Token { t := p.toks[p.i]; p.i++; return t }

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, errExpected(p.cur(), kind.String())
	}
	return p.next(), nil
}

// isKeyword reports whether the current token is the given keyword,
// matched case-insensitively.
func (p *parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == TokIdent && strings.EqualFold(t.Value, kw)
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.i++
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.acceptKeyword(kw) {
		return errExpected(p.cur(), kw)
	}
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("OR") {
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: OpOr, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseAnd() (Expr, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("AND") {
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: OpAnd, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.acceptKeyword("NOT") {
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Unary{Op: OpNot, X: x}, nil
	}
	return p.parseBooleanPrimary()
}

// parseBooleanPrimary resolves the grammar's parenthesis ambiguity by
// backtracking: a '(' may open a grouped boolean expression or a
// parenthesized scalar inside a predicate.
func (p *parser) parseBooleanPrimary() (Expr, error) {
	mark := p.i
	e, err := p.parsePredicate()
	if err == nil {
		return e, nil
	}
	p.i = mark

	if p.cur().Kind == TokLParen {
		p.next()
		inner, gerr := p.parseOr()
		if gerr != nil {
			return nil, gerr
		}
		if _, gerr := p.expect(TokRParen); gerr != nil {
			return nil, gerr
		}
		return inner, nil
	}
	return nil, err
}

func (p *parser) parsePredicate() (Expr, error) {
	if t := p.cur(); t.Kind == TokIdent {
		if op, ok := predicateOps[strings.ToUpper(t.Value)]; ok {
			return p.parsePredicateCall(op)
		}
	}

	l, err := p.parseScalar()
	if err != nil {
		return nil, err
	}

	negated := p.acceptKeyword("NOT")

	switch t := p.cur(); {
	case !negated && t.Kind == TokEq:
		p.next()
		return p.parseComparisonTail(OpEq, l)
	case !negated && t.Kind == TokNeq:
		p.next()
		return p.parseComparisonTail(OpNeq, l)
	case !negated && t.Kind == TokLt:
		p.next()
		return p.parseComparisonTail(OpLt, l)
	case !negated && t.Kind == TokLte:
		p.next()
		return p.parseComparisonTail(OpLte, l)
	case !negated && t.Kind == TokGt:
		p.next()
		return p.parseComparisonTail(OpGt, l)
	case !negated && t.Kind == TokGte:
		p.next()
		return p.parseComparisonTail(OpGte, l)

	case !negated && p.isKeyword("IS"):
		p.next()
		op := OpIsNull
		if p.acceptKeyword("NOT") {
			op = OpIsNotNull
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		return Unary{Op: op, X: l}, nil

	case p.isKeyword("LIKE"):
		p.next()
		r, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		op := OpLike
		if negated {
			op = OpNotLike
		}
		return Binary{Op: op, L: l, R: r}, nil

	case p.isKeyword("BETWEEN"):
		p.next()
		lo, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}
		hi, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		op := OpBetween
		if negated {
			op = OpNotBetween
		}
		return Binary{Op: op, L: l, R: Array{Elems: []Expr{lo, hi}}}, nil

	case p.isKeyword("IN"):
		p.next()
		if _, err := p.expect(TokLParen); err != nil {
			return nil, err
		}
		var elems []Expr
		for {
			e, err := p.parseScalar()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.cur().Kind != TokComma {
				break
			}
			p.next()
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		op := OpIn
		if negated {
			op = OpNotIn
		}
		return Binary{Op: op, L: l, R: Array{Elems: elems}}, nil
	}

	if negated {
		return nil, errExpected(p.cur(), "LIKE", "BETWEEN", "IN")
	}

	// A bare property, function call or boolean literal can stand as a
	// predicate on its own.
	switch x := l.(type) {
	case Property, Call:
		return l, nil
	case Literal:
		if x.Val.IsBool() {
			return l, nil
		}
	}
	return nil, errExpected(p.cur(), "comparison operator", "IS", "LIKE", "BETWEEN", "IN")
}

func (p *parser) parseComparisonTail(op Op, l Expr) (Expr, error) {
	r, err := p.parseScalar()
	if err != nil {
		return nil, err
	}
	return Binary{Op: op, L: l, R: r}, nil
}

func (p *parser) parsePredicateCall(op Op) (Expr, error) {
	p.next()
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	l, err := p.parseScalar()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokComma); err != nil {
		return nil, err
	}
	r, err := p.parseScalar()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return Binary{Op: op, L: l, R: r}, nil
}

func (p *parser) parseScalar() (Expr, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.cur().Kind {
		case TokPlus:
			op = OpAdd
		case TokMinus:
			op = OpSub
		default:
			return l, nil
		}
		p.next()
		r, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: op, L: l, R: r}
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	l, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch {
		case p.cur().Kind == TokStar:
			op = OpMul
		case p.cur().Kind == TokSlash:
			op = OpDiv
		case p.cur().Kind == TokPercent:
			op = OpMod
		case p.isKeyword("DIV"):
			op = OpIntDiv
		default:
			return l, nil
		}
		p.next()
		r, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: op, L: l, R: r}
	}
}

func (p *parser) parsePower() (Expr, error) {
	l, err := p.parseUnaryScalar()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TokCaret {
		p.next()
		r, err := p.parseUnaryScalar()
		if err != nil {
			return nil, err
		}
		return Binary{Op: OpPow, L: l, R: r}, nil
	}
	return l, nil
}

func (p *parser) parseUnaryScalar() (Expr, error) {
	if p.cur().Kind == TokMinus {
		p.next()
		x, err := p.parseUnaryScalar()
		if err != nil {
			return nil, err
		}
		if lit, ok := x.(Literal); ok && lit.Val.IsNum() {
			n, _ := lit.Val.AsNum()
			return Literal{Val: geofilter.Num(-n)}, nil
		}
		return Unary{Op: OpNeg, X: x}, nil
	}
	return p.parsePrimaryScalar()
}

func (p *parser) parsePrimaryScalar() (Expr, error) {
	t := p.cur()
	switch t.Kind {
	case TokNumber:
		p.next()
		return Literal{Val: geofilter.Num(t.Num)}, nil

	case TokString:
		p.next()
		return Literal{Val: geofilter.Str(t.Value)}, nil

	case TokQuotedIdent:
		p.next()
		return Property{Name: t.Value}, nil

	case TokLParen:
		return p.parseParenScalar()

	case TokIdent:
		return p.parseIdentScalar()
	}
	return nil, errExpected(t, "expression")
}

// parseParenScalar parses either a parenthesized scalar or, when a comma
// follows the first element, an array literal.
func (p *parser) parseParenScalar() (Expr, error) {
	p.next()
	if p.cur().Kind == TokRParen {
		p.next()
		return Array{}, nil
	}
	first, err := p.parseScalar()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TokComma {
		elems := []Expr{first}
		for p.cur().Kind == TokComma {
			p.next()
			e, err := p.parseScalar()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return Array{Elems: elems}, nil
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *parser) parseIdentScalar() (Expr, error) {
	t := p.cur()
	upper := strings.ToUpper(t.Value)

	switch upper {
	case "TRUE":
		p.next()
		return Literal{Val: geofilter.Bool(true)}, nil
	case "FALSE":
		p.next()
		return Literal{Val: geofilter.Bool(false)}, nil
	}

	if geometryKeywords[upper] {
		return p.parseGeometry()
	}

	followedByParen := p.toks[p.i+1].Kind == TokLParen
	if followedByParen {
		switch upper {
		case "DATE":
			return p.parseInstantLiteral(geofilter.ParseDate)
		case "TIMESTAMP":
			return p.parseInstantLiteral(geofilter.ParseTimestamp)
		case "INTERVAL":
			return p.parseInterval()
		case "CASEI":
			return p.parseMonadic(OpCaseI)
		case "ACCENTI":
			return p.parseMonadic(OpAccentI)
		case "BBOX":
			return p.parseBBox()
		}
		return p.parseFunctionCall()
	}

	p.next()
	return Property{Name: t.Value}, nil
}

func (p *parser) parseInstantLiteral(parse func(string) (geofilter.Instant, error)) (Expr, error) {
	p.next()
	p.next() // '('
	s, err := p.expect(TokString)
	if err != nil {
		return nil, err
	}
	inst, perr := parse(s.Value)
	if perr != nil {
		return nil, &ParseError{Pos: s.Pos, Found: s.Value, Message: perr.Error()}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return Literal{Val: geofilter.InstantVal(inst)}, nil
}

func (p *parser) parseInterval() (Expr, error) {
	p.next()
	p.next() // '('
	lo, err := p.parseIntervalBound(geofilter.MinInstant)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokComma); err != nil {
		return nil, err
	}
	hi, err := p.parseIntervalBound(geofilter.MaxInstant)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return Interval{Lo: lo, Hi: hi}, nil
}

// parseIntervalBound parses one interval endpoint: '..' for an open bound,
// a string holding a date or timestamp, or any scalar expression.
func (p *parser) parseIntervalBound(open geofilter.Instant) (Expr, error) {
	if p.cur().Kind == TokDotDot {
		p.next()
		return Literal{Val: geofilter.InstantVal(open)}, nil
	}
	if p.cur().Kind == TokString {
		s := p.next()
		inst, err := geofilter.ParseTimestamp(s.Value)
		if err != nil {
			inst, err = geofilter.ParseDate(s.Value)
		}
		if err != nil {
			return nil, &ParseError{Pos: s.Pos, Found: s.Value, Message: "invalid interval bound"}
		}
		return Literal{Val: geofilter.InstantVal(inst)}, nil
	}
	return p.parseScalar()
}

func (p *parser) parseMonadic(op Op) (Expr, error) {
	p.next()
	p.next() // '('
	x, err := p.parseScalar()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return Unary{Op: op, X: x}, nil
}

func (p *parser) parseBBox() (Expr, error) {
	p.next()
	p.next() // '('
	var coords []float64
	for {
		neg := false
		if p.cur().Kind == TokMinus {
			p.next()
			neg = true
		}
		n, err := p.expect(TokNumber)
		if err != nil {
			return nil, err
		}
		v := n.Num
		if neg {
			v = -v
		}
		coords = append(coords, v)
		if p.cur().Kind != TokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	var g geo.Geometry
	switch len(coords) {
	case 4:
		g = geo.FromBBox(coords[0], coords[1], coords[2], coords[3])
	case 6:
		// elevation bounds are dropped
		g = geo.FromBBox(coords[0], coords[1], coords[3], coords[4])
	default:
		return nil, &ParseError{Pos: p.cur().Pos, Message: "BBOX takes 4 or 6 coordinates"}
	}
	return Literal{Val: geofilter.Geom(g.Round(p.precision))}, nil
}

func (p *parser) parseFunctionCall() (Expr, error) {
	name := p.next().Value
	p.next() // '('
	var args []Expr
	if p.cur().Kind != TokRParen {
		for {
			a, err := p.parseScalar()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().Kind != TokComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return Call{Name: name, Args: args}, nil
}

// parseGeometry captures a WKT literal by slicing the raw input across the
// keyword and its balanced parentheses, then hands it to the WKT reader.
func (p *parser) parseGeometry() (Expr, error) {
	start := p.cur()
	p.next()

	// optional dimension tag
	if t := p.cur(); t.Kind == TokIdent {
		switch strings.ToUpper(t.Value) {
		case "Z", "M", "ZM":
			p.next()
		}
	}

	var end int
	if p.isKeyword("EMPTY") {
		end = p.next().End
	} else {
		if p.cur().Kind != TokLParen {
			return nil, errExpected(p.cur(), "'('", "EMPTY")
		}
		depth := 0
		for {
			t := p.cur()
			if t.Kind == TokEOF {
				return nil, &ParseError{Pos: t.Pos, Message: "unterminated geometry literal"}
			}
			p.next()
			if t.Kind == TokLParen {
				depth++
			} else if t.Kind == TokRParen {
				depth--
				if depth == 0 {
					end = t.End
					break
				}
			}
		}
	}

	wkt := p.src[start.Pos:end]
	g, err := geo.ParseWKT(wkt, p.precision)
	if err != nil {
		return nil, &ParseError{Pos: start.Pos, Found: wkt, Message: err.Error()}
	}
	return Literal{Val: geofilter.Geom(g)}, nil
}
