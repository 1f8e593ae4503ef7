// Package file provides helpers for persisting named vector sets and for
// opening log files on disk.
//
// Vector sets are stored as models.VectorFile JSON. Failures are reported with
// the engine's error codes (FILE_NOT_FOUND, VECTOR_NOT_FOUND, IO_ERROR) wrapped
// with context, so callers classify them with errors.Is.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/CK6170/densevec-go/models"
)

// VectorFile is re-exported so callers can use file.VectorFile directly.
type VectorFile = models.VectorFile

// LoadVectors reads and decodes a vector set from path.
func LoadVectors(path string) (*VectorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, models.FILE_NOT_FOUND)
		}
		return nil, fmt.Errorf("read %s: %w: %v", path, models.IO_ERROR, err)
	}
	var vf VectorFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", path, models.IO_ERROR, err)
	}
	if vf.VECTORS == nil {
		vf.VECTORS = map[string][]float64{}
	}
	return &vf, nil
}

// SaveVectors overwrites the JSON file at path with vf.
func SaveVectors(path string, vf *VectorFile) error {
	data, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vectors: %w: %v", models.IO_ERROR, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w: %v", path, models.IO_ERROR, err)
	}
	return nil
}

// Lookup returns the named vector's values, or VECTOR_NOT_FOUND.
func Lookup(vf *VectorFile, name string) ([]float64, error) {
	if vf == nil {
		return nil, fmt.Errorf("lookup %q: %w", name, models.NULLPTR_ERROR)
	}
	values, ok := vf.VECTORS[name]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, models.VECTOR_NOT_FOUND)
	}
	return values, nil
}

// Names lists the vector names in vf in sorted order.
func Names(vf *VectorFile) []string {
	if vf == nil {
		return nil
	}
	out := make([]string, 0, len(vf.VECTORS))
	for name := range vf.VECTORS {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// OpenLog opens path for writing log lines, creating it if it does not exist.
// With overwrite the file is truncated, otherwise lines are appended.
func OpenLog(path string, overwrite bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	return os.OpenFile(path, flags, 0644)
}

// AppendToFile appends content + newline to file, creating it if it does not
// exist.
func AppendToFile(path, content string) error {
	f, err := OpenLog(path, false)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteString(content + "\n")
	return err
}
