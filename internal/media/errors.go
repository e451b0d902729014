package media

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyImage  = errors.New("media: empty image")
	ErrUnsupported = errors.New("media: unsupported image format")
	ErrInvalidName = errors.New("media: invalid file name")
)

// UploadError reports a failed upload. Op names the step that failed:
// "optimize", "store" or "delete".
type UploadError struct {
	Op  string
	Key string
	Err error
}

func (e *UploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("media: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("media: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
