package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFile_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("plain text body"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, src, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if text != "plain text body" {
		t.Errorf("text = %q", text)
	}
	if src.Key != path {
		t.Errorf("source key = %q", src.Key)
	}
	if src.Attrs["file_name"] != "note.txt" || src.Attrs["file_type"] != "txt" {
		t.Errorf("attrs = %v", src.Attrs)
	}
}

func TestFile_MarkdownRendersToPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	md := "# Heading\n\nSome *emphasized* body text.\n\n- item one\n- item two\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	text, src, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if strings.Contains(text, "#") || strings.Contains(text, "*") {
		t.Errorf("markdown markers leaked into text: %q", text)
	}
	for _, want := range []string{"Heading", "emphasized", "item one"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q: %q", want, text)
		}
	}
	if src.Attrs["file_type"] != "md" {
		t.Errorf("file_type = %q", src.Attrs["file_type"])
	}
}

func TestFile_UnsupportedExtension(t *testing.T) {
	if _, _, err := File("something.exe"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
