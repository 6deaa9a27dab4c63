package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	for text, want := range keywords {
		got, ok := LookupKeyword(text)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v, %v", text, got, ok)
		}
		if got.String() != text {
			t.Fatalf("String() = %q, want %q", got.String(), text)
		}
	}
	if _, ok := LookupKeyword("type"); ok {
		t.Fatalf("keywords are case sensitive")
	}
}

func TestIsKeyword(t *testing.T) {
	if !(Token{Kind: KwForall}).IsKeyword() || (Token{Kind: Ident}).IsKeyword() {
		t.Fatalf("IsKeyword misclassifies")
	}
	if !(Token{Kind: KwTrue}).IsLiteral() {
		t.Fatalf("true is a literal")
	}
}
