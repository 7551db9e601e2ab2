package diag

import (
	"testing"

	"ea/src/token"
)

func TestBagAccumulatesAndReportsErrors(t *testing.T) {
	b := NewBag()
	if b.HasErrors() {
		t.Fatal("a fresh Bag should have no errors")
	}
	b.Errorf(TypeUndefinedName, token.Span{Line: 1, Col: 1}, "undefined name %q", "x")
	if !b.HasErrors() {
		t.Error("expected HasErrors to be true after Errorf")
	}
	if b.Len() != 1 {
		t.Errorf("expected 1 diagnostic, got %d", b.Len())
	}
}

func TestDiagnosticsAreSortedBySpan(t *testing.T) {
	b := NewBag()
	b.Errorf(ParseUnexpectedToken, token.Span{Line: 3, Col: 1}, "third")
	b.Errorf(ParseUnexpectedToken, token.Span{Line: 1, Col: 5}, "first")
	b.Errorf(ParseUnexpectedToken, token.Span{Line: 1, Col: 1}, "second")

	out := b.Diagnostics()
	if len(out) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(out))
	}
	if out[0].Message != "second" || out[1].Message != "first" || out[2].Message != "third" {
		t.Errorf("expected sort by (line, col), got %v", out)
	}
}

func TestDiagnosticsDeduplicatesIdenticalMessages(t *testing.T) {
	b := NewBag()
	span := token.Span{Line: 2, Col: 4}
	b.Add(Diagnostic{Kind: TypeUndefinedName, Message: "undefined name \"x\"", PrimarySpan: span})
	b.Add(Diagnostic{Kind: TypeUndefinedName, Message: "undefined name \"x\"", PrimarySpan: span})

	out := b.Diagnostics()
	if len(out) != 1 {
		t.Fatalf("expected duplicate diagnostics to collapse to 1, got %d", len(out))
	}
}

func TestDidYouMeanFindsCloseMatch(t *testing.T) {
	matches := DidYouMean("retrun", []string{"return", "let", "mut"})
	if len(matches) == 0 || matches[0] != "return" {
		t.Errorf("expected \"return\" as the closest match, got %v", matches)
	}
}

func TestDidYouMeanIgnoresFarMatches(t *testing.T) {
	matches := DidYouMean("xyz123", []string{"return", "let", "mut"})
	if len(matches) != 0 {
		t.Errorf("expected no suggestions for an unrelated word, got %v", matches)
	}
}

func TestSuggestDidYouMeanForBuildsSuggestion(t *testing.T) {
	sg, ok := SuggestDidYouMeanFor("flase", []string{"false", "true"})
	if !ok {
		t.Fatal("expected a suggestion for \"flase\"")
	}
	if sg.Kind != SuggestDidYouMean {
		t.Errorf("expected SuggestDidYouMean, got %v", sg.Kind)
	}
}
