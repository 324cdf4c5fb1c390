package workflow

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const defaultMimeType = "application/octet-stream"

// UploadTarget is a selected local file ready to be streamed.
type UploadTarget struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	Source    io.ReadCloser
}

// OpenUploadTarget opens path for upload. Upload closes the target; callers that may
// never reach Upload should defer Close as well.
func OpenUploadTarget(path string) (*UploadTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &UploadTarget{
		FileName:  filepath.Base(path),
		MimeType:  MimeTypeOf(path),
		SizeBytes: info.Size(),
		Source:    f,
	}, nil
}

// MimeTypeOf guesses the content type from the file extension.
func MimeTypeOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return defaultMimeType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	switch ext {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	}
	return defaultMimeType
}

// Close releases the source. It is safe to call more than once.
func (t *UploadTarget) Close() error {
	if t == nil || t.Source == nil {
		return nil
	}
	err := t.Source.Close()
	t.Source = nil
	return err
}
