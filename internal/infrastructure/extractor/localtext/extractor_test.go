package localtext

import (
	"context"
	"strings"
	"testing"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

func TestExtractPlainTextPassthrough(t *testing.T) {
	e := New()
	text, err := e.Extract(context.Background(), "report.txt", strings.NewReader("  BIRADS 2, normal exam  \n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "BIRADS 2, normal exam" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractBinaryWithoutOCRIsInvalid(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "scan.tiff", strings.NewReader("\xff\xfe\x00binary"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestExtractCorruptPDFFails(t *testing.T) {
	e := New()
	if _, err := e.Extract(context.Background(), "report.pdf", strings.NewReader("not a pdf")); err == nil {
		t.Fatalf("expected error for corrupt pdf")
	}
}
