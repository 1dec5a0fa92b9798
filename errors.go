package gosfs

import (
	"errors"
	"fmt"
	"os"
)

// These errors may occur while working with an image.
// They are usually returned decorated by the checkpoint package, so always
// check them with errors.Is.
var (
	ErrImageOpen         = errors.New("could not open the image")
	ErrTruncated         = errors.New("image is truncated")
	ErrInvalidSuperblock = errors.New("invalid superblock")
	ErrNotFound          = fmt.Errorf("no such file or directory: %w", os.ErrNotExist)
	ErrNoSpace           = errors.New("no space left in the image")
	ErrIO                = errors.New("image i/o failed")
	ErrCorrupt           = errors.New("image is corrupt")
	ErrInvalidPath       = errors.New("invalid path")
	ErrExist             = fmt.Errorf("entry already exists: %w", os.ErrExist)
	ErrFileTooLarge      = errors.New("file too large for the image format")
	ErrReadOnly          = errors.New("operation not supported on an sfs image")
)
