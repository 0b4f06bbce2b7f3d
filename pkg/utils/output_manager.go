package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File formats understood by the file sink
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// OutputManager lays out job exports as <base>/<jobID>/<file>
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a manager rooted at baseOutputDir. An empty dir
// disables file output.
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// Enabled reports whether files can be written at all
func (om *OutputManager) Enabled() bool {
	return om != nil && strings.TrimSpace(om.BaseOutputDir) != ""
}

// JobFilePath creates the job's directory and returns the export path in it.
// Directory parts of name are dropped so exports never leave the job dir.
func (om *OutputManager) JobFilePath(jobID, name string) (string, error) {
	if !om.Enabled() {
		return "", fmt.Errorf("output directory is not configured")
	}
	jobDir := filepath.Join(om.BaseOutputDir, jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir for job %s: %w", jobID, err)
	}
	return filepath.Join(jobDir, filepath.Base(name)), nil
}

// FormatOf picks the export format from the file extension, JSON by default
func FormatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	default:
		return FormatJSON
	}
}

// FileSize returns the size of path in bytes
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
