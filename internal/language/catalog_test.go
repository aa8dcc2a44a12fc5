package language

import "testing"

func TestLookupByCodeAndName(t *testing.T) {
	for _, want := range All {
		byCode, err := Lookup(want.Code)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", want.Code, err)
		}
		byName, err := Lookup(want.Name)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", want.Name, err)
		}
		if byCode != want || byName != want {
			t.Fatalf("Lookup(%q)=%v, Lookup(%q)=%v, want %v", want.Code, byCode, want.Name, byName, want)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, v := range []string{"", "xx", "klingon", "EN"} {
		if _, err := Lookup(v); err == nil {
			t.Fatalf("Lookup(%q) should have failed", v)
		}
	}
}

func TestCatalogEntriesAreComparable(t *testing.T) {
	de, _ := Lookup("de")
	german, _ := Lookup("german")
	if de != german {
		t.Fatal("expected both lookups to yield the identical canonical entry")
	}
	if de == English {
		t.Fatal("distinct languages must not compare equal")
	}
}

func TestSimpleEntry(t *testing.T) {
	simple, err := Lookup("simple")
	if err != nil {
		t.Fatalf("Lookup(simple) failed: %v", err)
	}
	if simple != Simple {
		t.Fatalf("got %v, want Simple", simple)
	}
	if simple.Tesseract != "" {
		t.Fatal("simple must not carry an OCR recognition code")
	}
}
