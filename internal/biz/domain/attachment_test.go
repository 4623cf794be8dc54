package domain

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const mb = 1024 * 1024

func TestValidateAttachments_AggregateLimit(t *testing.T) {
	var files []AttachedFile
	for i := 0; i < 9; i++ {
		files = append(files, AttachedFile{Name: "part.pdf", Size: 6 * mb})
	}

	err := ValidateAttachments(files)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(vErr.Problems) != 1 || !strings.Contains(vErr.Problems[0], "total attachment size") {
		t.Errorf("Expected only the aggregate problem, got %v", vErr.Problems)
	}
}

func TestValidateAttachments_PerFileLimit(t *testing.T) {
	err := ValidateAttachments([]AttachedFile{{Name: "big.png", Size: 11 * mb}})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Problems[0], "big.png is too large") {
		t.Errorf("Unexpected problem: %v", vErr.Problems)
	}
}

func TestValidateAttachments_VideoAllowance(t *testing.T) {
	if err := ValidateAttachments([]AttachedFile{{Name: "clip.mp4", Size: 40 * mb}}); err != nil {
		t.Errorf("Expected 40MB video to pass, got %v", err)
	}
	if err := ValidateAttachments([]AttachedFile{{Name: "a.pdf", Size: 10 * mb}, {Name: "b.pdf", Size: 10 * mb}}); err != nil {
		t.Errorf("Expected files at the limit to pass, got %v", err)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{10 * mb, "10 MB"},
		{54 * mb, "54 MB"},
		{1234567, "1.18 MB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.in); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileTypeAndMime(t *testing.T) {
	if FileTypeOf("photo.JPG") != FileTypeImage {
		t.Error("Expected .JPG to be an image")
	}
	if FileTypeOf("notes.md") != FileTypeDocument {
		t.Error("Expected .md to be a document")
	}
	if FileTypeOf("clip.webm") != FileTypeVideo {
		t.Error("Expected .webm to be a video")
	}
	if FileTypeOf("archive.zip") != FileTypeOther {
		t.Error("Expected .zip to be other")
	}
	if MimeTypeFor("a.docx") != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("Unexpected docx mime: %s", MimeTypeFor("a.docx"))
	}
	if MimeTypeFor("a.unknown") != "application/octet-stream" {
		t.Errorf("Unexpected fallback mime: %s", MimeTypeFor("a.unknown"))
	}
	if !IsImageMime("image/png") || IsImageMime("application/pdf") {
		t.Error("IsImageMime misclassified")
	}
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	f, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if f.Name != "hello.txt" || f.Size != 5 || f.MimeType != "text/plain" || f.Extension != ".txt" {
		t.Errorf("Unexpected attachment: %+v", f)
	}
	if f.ID == "" {
		t.Error("Expected an id")
	}
	raw, err := base64.StdEncoding.DecodeString(f.Data)
	if err != nil || string(raw) != "hello" {
		t.Errorf("Expected base64 of file content, got %q (%v)", f.Data, err)
	}

	if _, err := LoadAttachment(dir); err == nil {
		t.Error("Expected error for a directory")
	}
}

func TestValidateAttachments_NegativeSize(t *testing.T) {
	files := []AttachedFile{{Name: "trick.bin", Size: -40 * mb}}
	for i := 0; i < 6; i++ {
		files = append(files, AttachedFile{Name: "part.pdf", Size: 9 * mb})
	}

	err := ValidateAttachments(files)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	joined := strings.Join(vErr.Problems, "; ")
	if !strings.Contains(joined, "trick.bin has a negative size") {
		t.Errorf("Expected negative size problem, got %v", vErr.Problems)
	}
	if !strings.Contains(joined, "total attachment size") {
		t.Errorf("Expected negative size not to lower the total, got %v", vErr.Problems)
	}
}
