package archive

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"subcatalog/internal/tools"
)

// AppendUnique appends lines to the log at path, skipping any line already
// present in the log or earlier in lines. It returns how many were written.
func AppendUnique(path string, lines []string) (int, error) {
	existing, err := tools.ReadLines(path)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, line := range existing {
		seen[line] = struct{}{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(f)
	written := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		w.WriteString(line)
		w.WriteByte('\n')
		written++
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return written, err
	}
	return written, f.Close()
}
