package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeMinimalPDF assembles a syntactically valid PDF with the given number
// of empty pages, computing the cross-reference table as it goes.
func writeMinimalPDF(t *testing.T, pageCount int) string {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	add := func(obj string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(obj)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, pageCount)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	add("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	add(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pageCount))
	for i := 0; i < pageCount; i++ {
		add(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", 3+i))
	}

	xrefOffset := buf.Len()
	size := len(offsets) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefOffset)

	path := filepath.Join(t.TempDir(), "minimal.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPagesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := PDFExtractor{}.Pages(path)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
}

func TestPagesMissingFile(t *testing.T) {
	_, err := PDFExtractor{}.Pages(filepath.Join(t.TempDir(), "absent.pdf"))
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
}

func TestPagesWithoutTextLayer(t *testing.T) {
	path := writeMinimalPDF(t, 3)

	pages, err := PDFExtractor{}.Pages(path)
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i, p := range pages {
		if p != "" {
			t.Fatalf("page %d without text layer yielded %q", i+1, p)
		}
	}
}
