package domain

import (
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Size limits for attachments
const (
	MaxFileSize      int64 = 10 * 1024 * 1024
	MaxVideoFileSize int64 = 50 * 1024 * 1024
	MaxTotalSize           = MaxFileSize * 5
)

// FileType is a coarse attachment category
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeOther    FileType = "other"
)

var fileTypesByExt = map[string]FileType{
	".jpg": FileTypeImage, ".jpeg": FileTypeImage, ".png": FileTypeImage,
	".gif": FileTypeImage, ".bmp": FileTypeImage, ".webp": FileTypeImage,
	".pdf": FileTypeDocument, ".doc": FileTypeDocument, ".docx": FileTypeDocument,
	".txt": FileTypeDocument, ".md": FileTypeDocument, ".csv": FileTypeDocument,
	".xlsx": FileTypeDocument, ".xls": FileTypeDocument,
	".mp4": FileTypeVideo, ".mov": FileTypeVideo, ".avi": FileTypeVideo,
	".mkv": FileTypeVideo, ".wmv": FileTypeVideo, ".flv": FileTypeVideo,
	".webm": FileTypeVideo,
}

var mimeTypesByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
}

// AttachedFile is a file picked for sending along with a memo
type AttachedFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Extension    string    `json:"extension"`
	Data         string    `json:"data,omitempty"` // base64
	MimeType     string    `json:"mime_type"`
	LastModified time.Time `json:"last_modified"`
}

// FileTypeOf classifies a file by its extension
func FileTypeOf(name string) FileType {
	if t, ok := fileTypesByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return FileTypeOther
}

// MimeTypeFor returns the MIME type for a file name
func MimeTypeFor(name string) string {
	if m, ok := mimeTypesByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	return "application/octet-stream"
}

// IsImageMime reports whether the MIME type goes through the image endpoint
func IsImageMime(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// FormatFileSize renders a byte count as e.g. "1.5 KB"
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

// SizeLimit returns the per-file ceiling for this file
func (f *AttachedFile) SizeLimit() int64 {
	if FileTypeOf(f.Name) == FileTypeVideo {
		return MaxVideoFileSize
	}
	return MaxFileSize
}

// LoadAttachment reads a local file into an AttachedFile
func LoadAttachment(path string) (*AttachedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, &ValidationError{Entity: "attachment", Problems: []string{path + " is not a regular file"}}
	}

	f := &AttachedFile{
		ID:           uuid.NewString(),
		Name:         info.Name(),
		Path:         path,
		Size:         info.Size(),
		Extension:    strings.ToLower(filepath.Ext(path)),
		MimeType:     MimeTypeFor(path),
		LastModified: info.ModTime(),
	}
	if f.Size > f.SizeLimit() {
		return nil, &ValidationError{Entity: "attachment", Problems: []string{
			fmt.Sprintf("%s is too large (%s / %s)", f.Name, FormatFileSize(f.Size), FormatFileSize(f.SizeLimit())),
		}}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	f.Data = base64.StdEncoding.EncodeToString(raw)
	return f, nil
}

// ValidateAttachments enforces the per-file and aggregate size ceilings
func ValidateAttachments(files []AttachedFile) error {
	var problems []string
	var total int64
	for i := range files {
		f := &files[i]
		if f.Size < 0 {
			problems = append(problems, fmt.Sprintf("%s has a negative size", f.Name))
			continue
		}
		total += f.Size
		if f.Size > f.SizeLimit() {
			problems = append(problems, fmt.Sprintf("%s is too large (%s / %s)",
				f.Name, FormatFileSize(f.Size), FormatFileSize(f.SizeLimit())))
		}
	}
	if total > MaxTotalSize {
		problems = append(problems, fmt.Sprintf("total attachment size exceeds the limit (%s / %s)",
			FormatFileSize(total), FormatFileSize(MaxTotalSize)))
	}
	if len(problems) > 0 {
		return &ValidationError{Entity: "attachments", Problems: problems}
	}
	return nil
}
