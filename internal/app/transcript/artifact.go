package transcript

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TextExtension is the extension of downloadable transcript artifacts.
const TextExtension = ".txt"

// Artifact is a transcript staged on local disk.
type Artifact struct {
	Name string
	Path string
	Size int64
}

// SaveTo copies the artifact into dir and returns the destination path.
func (a *Artifact) SaveTo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	src, err := os.Open(a.Path)
	if err != nil {
		return "", fmt.Errorf("artifact is no longer available: %w", err)
	}
	defer src.Close()

	dest := filepath.Join(dir, a.Name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

// Stage is a private directory holding the artifacts of one workflow run.
type Stage struct {
	dir string
}

// NewStage creates a staging directory under parent (the system temp dir when empty).
func NewStage(parent string) (*Stage, error) {
	dir, err := os.MkdirTemp(parent, "transcript-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Stage{dir: dir}, nil
}

// Dir is the staging directory.
func (s *Stage) Dir() string {
	return s.dir
}

// Write stages text as <baseName>.txt.
func (s *Stage) Write(baseName, text string) (*Artifact, error) {
	name := baseName + TextExtension
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", name, err)
	}
	return &Artifact{Name: name, Path: path, Size: int64(len(text))}, nil
}

// Remove deletes a staged artifact. Removing an artifact twice is not an error.
func (s *Stage) Remove(a *Artifact) error {
	if a == nil {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close removes the staging directory and everything in it.
func (s *Stage) Close() error {
	return os.RemoveAll(s.dir)
}
