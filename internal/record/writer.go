package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// FileName returns the record file name for an implementation, e.g.
// "c++ mpi" -> "cpp_mpi_results.json".
func FileName(implementation string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(CanonicalName(implementation)) {
		switch {
		case r == '+':
			b.WriteByte('p')
		case r == '#':
			b.WriteString("sharp")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		slug = "unnamed"
	}
	return slug + "_results.json"
}

// Write validates rec and stores it as indented JSON in dir, creating the
// directory if needed. The file is written to a temporary name and renamed so
// readers never see a partial record. It returns the final path.
func Write(dir string, rec RunRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create record dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, FileName(rec.Language))
	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename record: %w", err)
	}
	return path, nil
}
