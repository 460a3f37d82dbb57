package validation

import (
	"fmt"
	"os"
)

// DirWritableError indicates a directory cannot be created or written to.
type DirWritableError struct {
	Path    string
	Message string
}

func (e *DirWritableError) Error() string {
	return e.Message
}

// CheckDirWritable verifies that the directory at path exists and accepts
// new files. A missing directory is created, matching what the pipeline
// does for its uploads and reports directories at startup. The probe file
// is removed before returning.
//
// Returns nil on success, or a *DirWritableError describing the failure.
func CheckDirWritable(path string) error {
	if path == "" {
		return &DirWritableError{
			Path:    path,
			Message: "directory path cannot be empty",
		}
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return &DirWritableError{
			Path:    path,
			Message: fmt.Sprintf("cannot create directory %s: %v", path, err),
		}
	}

	probe, err := os.CreateTemp(path, ".writecheck-*")
	if err != nil {
		return &DirWritableError{
			Path:    path,
			Message: fmt.Sprintf("cannot write to directory %s: %v", path, err),
		}
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return nil
}
