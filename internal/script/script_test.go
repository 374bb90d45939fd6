package script

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func tokenize(t *testing.T, src string) []Entity {
	t.Helper()
	rd := NewReader(strings.NewReader(src), "infrared")
	var out []Entity
	for {
		ent, err := rd.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, ent)
		if ent.Kind == KindEOF {
			return out
		}
	}
}

func kinds(ents []Entity) []Kind {
	out := make([]Kind, len(ents))
	for i, e := range ents {
		out[i] = e.Kind
	}
	return out
}

func TestBasicStream(t *testing.T) {
	src := "%infrared;\n5 -12 \"hi\" {0a ff} ?x @c :x =x ( ) art |;\n"
	ents := tokenize(t, src)
	want := []Kind{
		KindNumeric, KindNumeric, KindText, KindBlobHex,
		KindVarDecl, KindConstDecl, KindAssign, KindGet,
		KindBeginGroup, KindEndGroup, KindOperation, KindEOF,
	}
	if diff := deep.Equal(kinds(ents), want); diff != nil {
		t.Fatal(diff)
	}
	if ents[0].Num != 5 || ents[1].Num != -12 {
		t.Errorf("numeric values %d %d", ents[0].Num, ents[1].Num)
	}
	if ents[2].Text != "hi" {
		t.Errorf("text %q", ents[2].Text)
	}
	if ents[3].Text != "0a ff" {
		t.Errorf("blob hex %q", ents[3].Text)
	}
	if ents[4].Text != "x" || ents[5].Text != "c" {
		t.Errorf("names %q %q", ents[4].Text, ents[5].Text)
	}
	if ents[10].Text != "art" {
		t.Errorf("operation %q", ents[10].Text)
	}
}

func TestNumericSuffixes(t *testing.T) {
	src := "%infrared; 0s 10q -2r -1g 3t 2m 7 |;"
	ents := tokenize(t, src)
	type sv struct {
		num    int32
		suffix byte
	}
	var got []sv
	for _, e := range ents {
		if e.Kind == KindNumeric {
			got = append(got, sv{e.Num, e.Suffix})
		}
	}
	want := []sv{{0, 's'}, {10, 'q'}, {-2, 'r'}, {-1, 'g'}, {3, 't'}, {2, 'm'}, {7, 0}}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestArrays(t *testing.T) {
	src := "%infrared; [] [1] [1, 2, 3] |;"
	ents := tokenize(t, src)
	var counts []int32
	for _, e := range ents {
		if e.Kind == KindArray {
			counts = append(counts, e.Num)
		}
	}
	if diff := deep.Equal(counts, []int32{0, 1, 3}); diff != nil {
		t.Fatal(diff)
	}
}

func TestStringEscapes(t *testing.T) {
	src := "%infrared; \"a\\\\b\\\"c\" |;"
	ents := tokenize(t, src)
	if ents[0].Text != `a\b"c` {
		t.Errorf("escaped text %q", ents[0].Text)
	}
}

func TestMetacommandsSkipped(t *testing.T) {
	src := "%infrared;\n% a comment ;\n5\n|;"
	ents := tokenize(t, src)
	if len(ents) != 2 || ents[0].Kind != KindNumeric || ents[0].Num != 5 {
		t.Errorf("unexpected entities %v", ents)
	}
}

func TestHeaderRequired(t *testing.T) {
	rd := NewReader(strings.NewReader("5 |;"), "infrared")
	if _, err := rd.Next(); err == nil {
		t.Error("missing header accepted")
	}
	rd = NewReader(strings.NewReader("%other; 5 |;"), "infrared")
	if _, err := rd.Next(); err == nil {
		t.Error("wrong header name accepted")
	}
}

func TestLineNumbers(t *testing.T) {
	src := "%infrared;\n\n5\nart\n|;"
	ents := tokenize(t, src)
	if ents[0].Line != 3 {
		t.Errorf("numeric line = %d, want 3", ents[0].Line)
	}
	if ents[1].Line != 4 {
		t.Errorf("operation line = %d, want 4", ents[1].Line)
	}
}

func TestAfterEOFStaysEOF(t *testing.T) {
	rd := NewReader(strings.NewReader("%infrared; |; trailing garbage"), "infrared")
	for i := 0; i < 3; i++ {
		ent, err := rd.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if ent.Kind != KindEOF {
			t.Fatalf("entity %d is %v, want EOF", i, ent.Kind)
		}
	}
}

func TestMalformedInput(t *testing.T) {
	bad := []string{
		"%infrared; \"unterminated |;",
		"%infrared; {0a |;",
		"%infrared; ] |;",
		"%infrared; , |;",
		"%infrared; ?9bad |;",
		"%infrared; 99999999999 |;",
	}
	for _, src := range bad {
		rd := NewReader(strings.NewReader(src), "infrared")
		var err error
		for i := 0; i < 16; i++ {
			var ent Entity
			ent, err = rd.Next()
			if err != nil || ent.Kind == KindEOF {
				break
			}
		}
		if err == nil {
			t.Errorf("input %q tokenized without error", src)
		}
	}
}
