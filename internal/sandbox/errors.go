package sandbox

import "errors"

var (
	ErrSandbox        = errors.New("sandbox error")
	ErrEmptyArchive   = errors.New("archive contains no image")
	ErrMultipleImages = errors.New("archive contains multiple images")
)
