// Package sinks provides writable destinations for downloaded media. The
// downloader only needs an io.Writer; these sinks add finalize/abort
// semantics so an interrupted download never leaves a half-written
// destination behind.
package sinks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/ivannaranjo/gmedia/internal/utils"
)

// FileSink accumulates bytes in a .part file inside a temp directory next to
// the destination and renames it into place on Close.
type FileSink struct {
	outputPath string
	tempPath   string
	file       *os.File
}

func NewFileSink(outputPath string) (*FileSink, error) {
	tempDir := filepath.Join(filepath.Dir(outputPath), utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating temp directory: %v", err)
	}
	tempPath := fmt.Sprintf("%s.part", filepath.Join(tempDir, filepath.Base(outputPath)))
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %v", err)
	}
	return &FileSink{
		outputPath: outputPath,
		tempPath:   tempPath,
		file:       file,
	}, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Close flushes the part file and renames it to the destination path.
func (s *FileSink) Close() error {
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("error syncing output file: %v", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("error closing output file: %v", err)
	}
	if err := os.Rename(s.tempPath, s.outputPath); err != nil {
		return fmt.Errorf("error renaming (finalizing) output file: %v", err)
	}
	s.removeTempDir()
	log.Debug().Str("op", "sinks/file").Msgf("finalized %s", s.outputPath)
	return nil
}

// Abort discards the part file, leaving no destination file behind.
func (s *FileSink) Abort() error {
	s.file.Close()
	if err := os.Remove(s.tempPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing partial file: %v", err)
	}
	s.removeTempDir()
	return nil
}

// removeTempDir drops the temp directory when this sink was its last user.
func (s *FileSink) removeTempDir() {
	tempDir := filepath.Dir(s.tempPath)
	if remaining, err := os.ReadDir(tempDir); err == nil && len(remaining) == 0 {
		os.Remove(tempDir)
	}
}
