package publish

import "errors"

var (
	ErrEnvironment = errors.New("environment check failed")
	ErrDependency  = errors.New("missing required tool")
	ErrTests       = errors.New("test suite failed")
	ErrBuild       = errors.New("build failed")
	ErrValidation  = errors.New("distribution validation failed")
	ErrUpload      = errors.New("upload failed")
)
