package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// InitLogging sends the standard logger to stdout and to dir/file. When the
// file cannot be opened logging stays on stdout and the returned file is nil.
func InitLogging(dir, file string) (*os.File, io.Writer) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.Printf("⚠️ Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(dir, file), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("⚠️ Failed to open log file: %v", err)
		log.SetOutput(os.Stdout)
		return nil, os.Stdout
	}

	w := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(w)
	return logFile, w
}
