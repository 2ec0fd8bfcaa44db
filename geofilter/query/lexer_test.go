package query

import "testing"

func TestLexOperators(t *testing.T) {
	tokens, err := Lex("height >= 10 AND depth <> 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := []TokenKind{
		TokIdent, TokGte, TokNumber, TokIdent, TokIdent, TokNeq, TokNumber, TokEOF,
	}
	if len(tokens) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(tokens), tokens)
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d: expected %v, got %v", i, k, tokens[i].Kind)
		}
	}
}

func TestLexStringEscape(t *testing.T) {
	tokens, err := Lex("name = 'O''Brien'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[2].Kind != TokString || tokens[2].Value != "O'Brien" {
		t.Errorf("expected string O'Brien, got %v", tokens[2])
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex("name = 'oops")
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestLexQuotedIdentifier(t *testing.T) {
	tokens, err := Lex(`"max speed" > 3`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokQuotedIdent || tokens[0].Value != "max speed" {
		t.Errorf("expected quoted identifier, got %v", tokens[0])
	}
}

func TestLexNumberForms(t *testing.T) {
	tokens, err := Lex("1.5 2e3 .25 7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1.5, 2000, 0.25, 7}
	for i, n := range want {
		if tokens[i].Kind != TokNumber || tokens[i].Num != n {
			t.Errorf("token %d: expected number %v, got %v", i, n, tokens[i])
		}
	}
}

func TestLexIntervalDots(t *testing.T) {
	tokens, err := Lex("INTERVAL('2020-01-01', ..)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawDots bool
	for _, tok := range tokens {
		if tok.Kind == TokDotDot {
			sawDots = true
		}
	}
	if !sawDots {
		t.Error("expected a '..' token")
	}
}

func TestLexDottedIdentifier(t *testing.T) {
	tokens, err := Lex("properties.name = 'x'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokIdent || tokens[0].Value != "properties.name" {
		t.Errorf("expected dotted identifier, got %v", tokens[0])
	}
}

func TestLexOffsetsSliceSource(t *testing.T) {
	src := "POINT(1 2)"
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := tokens[len(tokens)-2]
	if got := src[tokens[0].Pos:last.End]; got != src {
		t.Errorf("token offsets do not recover the source: %q", got)
	}
}
