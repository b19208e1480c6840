// =============================================================================
// Tally Bridge - File Manager Utility
// =============================================================================
//
// This module handles output placement and input archival:
//   - Directory management
//   - Output file naming ({uuid} and {timestamp} placeholders)
//   - Moving processed report files to the input archive
//
// ARCHIVAL STRATEGY:
//   Report files are moved to the input archive only after the voucher
//   document has been written successfully. Failed runs leave the inputs
//   where they are.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileManager handles file operations for the converter.
type FileManager struct {
	// OutputDir is where voucher documents are written.
	OutputDir string

	// InputArchiveDir is where processed report files are moved.
	InputArchiveDir string
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates the managed directories if they do not exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// BuildOutputName expands the naming format's placeholders:
//
//	{uuid}      - a random UUID
//	{timestamp} - now as YYYYMMDD_HHMMSS
func BuildOutputName(format string, now time.Time) string {
	name := strings.ReplaceAll(format, "{uuid}", uuid.NewString())
	name = strings.ReplaceAll(name, "{timestamp}", now.Format("20060102_150405"))
	return name
}

// CreateOutput creates the output file under OutputDir using the naming
// format and returns the open file plus its path. The caller closes the file.
func (fm *FileManager) CreateOutput(format string) (*os.File, string, error) {
	path := filepath.Join(fm.OutputDir, BuildOutputName(format, time.Now()))

	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file: %w", err)
	}
	return f, path, nil
}

// ArchiveInput moves a processed report file into the input archive and
// returns the archived path. Rename is tried first; a cross-device move
// falls back to copy-and-remove.
func (fm *FileManager) ArchiveInput(path string) (string, error) {
	target := filepath.Join(fm.InputArchiveDir, filepath.Base(path))

	if err := os.Rename(path, target); err == nil {
		return target, nil
	}

	if err := copyFile(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove %s after archiving: %w", path, err)
	}
	return target, nil
}

// copyFile copies src to dst, preserving nothing but the bytes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
