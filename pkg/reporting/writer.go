/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Writes exported reports to disk. Handles timestamped file naming, creates
the output directory and removes partial files when encoding fails.
*/

package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportFileName builds "2024-06-11_01-30-00_<name>.<ext>" with name sanitised
func ReportFileName(name, ext string, at time.Time) string {
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s_%s.%s", at.Format("2006-01-02_15-04-05"), name, strings.TrimPrefix(ext, "."))
}

// WriteReport creates dir if needed and writes a timestamped report file through encode.
// Returns the path of the written file.
func WriteReport(dir, name, ext string, encode func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, ReportFileName(name, ext, time.Now()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if err := encode(file); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
