package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// FormatEntry renders one entry as "[ts] stream LEVEL line"
func FormatEntry(e types.LogEntry) string {
	return fmt.Sprintf("[%d] %s %s %s", e.TimestampMs, e.Stream, strings.ToUpper(string(e.Level)), e.Line)
}

// Format renders entries one per line
func Format(entries []types.LogEntry) []byte {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(FormatEntry(e))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// ResolvePath makes target absolute against baseDir
func ResolvePath(target, baseDir string) string {
	if filepath.IsAbs(target) || baseDir == "" {
		return target
	}
	return filepath.Join(baseDir, target)
}

// Export atomically writes entries to path, creating parent directories.
// It returns the path that was written.
func Export(path, baseDir string, entries []types.LogEntry) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("export path cannot be empty")
	}

	target := ResolvePath(path, baseDir)
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export directory: %w", err)
		}
	}

	if err := renameio.WriteFile(target, Format(entries), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return target, nil
}
