package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eddielth/check-sensorprobe/logger"
)

// FileStorage writes each result as a JSON document
type FileStorage struct {
	basePath string
}

// NewFileStorage creates the base directory if needed
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create dir %s failed: %w", basePath, err)
	}

	logger.Debug("init file storage: %s", basePath)
	return &FileStorage{
		basePath: basePath,
	}, nil
}

// Store writes <base>/<host>/<timestamp>.json
func (fs *FileStorage) Store(res Result) error {
	hostDir := filepath.Join(fs.basePath, safeName(res.Host))
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		return fmt.Errorf("create dir %s failed: %w", hostDir, err)
	}

	timestamp := res.CheckedAt.Format("20060102-150405.000")
	filename := filepath.Join(hostDir, fmt.Sprintf("%s.json", timestamp))

	jsonData, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize result failed: %w", err)
	}

	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("write file %s failed: %w", filename, err)
	}

	logger.Debug("stored result to file: %s", filename)
	return nil
}

// Close implements StorageBackend
func (fs *FileStorage) Close() error {
	return nil
}

// safeName keeps a host name usable as a directory name.
func safeName(host string) string {
	if host == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, host)
}
