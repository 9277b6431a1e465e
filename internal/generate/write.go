package generate

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteFiles writes each output, creating parent directories. Files whose
// content is already up to date are left untouched.
func WriteFiles(outputs []OutputFile, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	for _, file := range outputs {
		if existing, err := os.ReadFile(file.Path); err == nil && bytes.Equal(existing, file.Content) {
			log.Debug("prober unchanged", "path", file.Path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", filepath.Dir(file.Path), err)
		}
		if err := os.WriteFile(file.Path, file.Content, 0o644); err != nil {
			return fmt.Errorf("write file %s: %w", file.Path, err)
		}
		log.Info("wrote prober", "path", file.Path, "bytes", len(file.Content))
	}
	return nil
}
