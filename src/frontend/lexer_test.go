package frontend

import "testing"

func TestLexerTokensInOrder(t *testing.T) {
	src := `int main() {
  const int N = 2;
  return N + 3 * (1 - 4) / 2 % 5 && a[1] != b;
}`
	l := newLexer(src)

	want := []struct {
		typ itemType
		val string
	}{
		{itemKeyword, "int"}, {itemIdent, "main"}, {itemPunct, "("}, {itemPunct, ")"}, {itemPunct, "{"},
		{itemKeyword, "const"}, {itemKeyword, "int"}, {itemIdent, "N"}, {itemPunct, "="}, {itemNumber, "2"}, {itemPunct, ";"},
		{itemKeyword, "return"}, {itemIdent, "N"}, {itemPunct, "+"}, {itemNumber, "3"}, {itemPunct, "*"},
		{itemPunct, "("}, {itemNumber, "1"}, {itemPunct, "-"}, {itemNumber, "4"}, {itemPunct, ")"},
		{itemPunct, "/"}, {itemNumber, "2"}, {itemPunct, "%"}, {itemNumber, "5"}, {itemPunct, "&&"},
		{itemIdent, "a"}, {itemPunct, "["}, {itemNumber, "1"}, {itemPunct, "]"}, {itemPunct, "!="},
		{itemIdent, "b"}, {itemPunct, ";"}, {itemPunct, "}"},
	}

	for i, w := range want {
		it := l.nextItem()
		if it.typ != w.typ || it.val != w.val {
			t.Fatalf("token %d: got {%v %q}, want {%v %q}", i, it.typ, it.val, w.typ, w.val)
		}
	}
	if it := l.nextItem(); it.typ != itemEOF {
		t.Fatalf("expected EOF after last token, got %v", it)
	}
}

func TestLexerHexAndOctalNumbers(t *testing.T) {
	l := newLexer("0x1A 017 0")
	for _, want := range []string{"0x1A", "017", "0"} {
		it := l.nextItem()
		if it.typ != itemNumber || it.val != want {
			t.Fatalf("got %v, want number %q", it, want)
		}
	}
}

func TestLexerLineAndBlockComments(t *testing.T) {
	l := newLexer("int // trailing comment\nx /* block\ncomment */ = 1;")
	want := []string{"int", "x", "=", "1", ";"}
	for _, w := range want {
		it := l.nextItem()
		if it.val != w {
			t.Fatalf("got %q, want %q", it.val, w)
		}
	}
}

func TestLexerRejectsMalformedNumber(t *testing.T) {
	l := newLexer("123abc")
	it := l.nextItem()
	if it.typ != itemError {
		t.Fatalf("expected a lex error for a malformed numeric literal, got %v", it)
	}
}
