package gosfs

import (
	"errors"
	"os"
	"path"
	"time"

	"github.com/spf13/afero"
)

// Fs exposes an Image as afero.Fs.
// Files can only be read, but directories may be created.
type Fs struct {
	img *Image
}

// NewFs wraps img. Closing files of the Fs never closes img.
func NewFs(img *Image) *Fs {
	return &Fs{img: img}
}

// cleanPath turns the relative names used by io/fs and the absolute ones
// used by afero into the same absolute path.
func cleanPath(name string) string {
	return path.Clean("/" + name)
}

func (fs *Fs) readFileAt(start uint32, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	buf := make([]byte, readSize)
	n, err := fs.img.readAt(start, uint32(fileSize), buf, offset)
	return buf[:n], err
}

func (fs *Fs) readRoot() ([]DirEntry, error) {
	return fs.img.dir.entries(fs.img.dir.root())
}

func (fs *Fs) readDir(start uint32, blockCount uint32) ([]DirEntry, error) {
	loc, err := fs.img.dir.open(DirEntry{Status: statusNewDirectory, StartingBlock: start, BlockCount: blockCount})
	if err != nil {
		return nil, err
	}
	return fs.img.dir.entries(loc)
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens name for reading. Any flag which would allow writing
// results in ErrReadOnly.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrReadOnly}
	}

	p := cleanPath(name)
	e, err := fs.img.Stat(p)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}

	return &File{
		fs:          fs,
		path:        p,
		isDirectory: e.Status.IsDir(),
		isRoot:      p == "/",
		firstBlock:  e.StartingBlock,
		blockCount:  e.BlockCount,
		stat:        e.FileInfo(),
	}, nil
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	e, err := fs.img.Stat(cleanPath(name))
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return e.FileInfo(), nil
}

func (fs *Fs) Name() string {
	return "sfs"
}

// Mkdir creates a directory of a single block. perm is ignored.
func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	if _, err := fs.img.Mkdir(cleanPath(name), 1); err != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return nil
}

// MkdirAll creates name and all missing parents. perm is ignored.
func (fs *Fs) MkdirAll(name string, perm os.FileMode) error {
	segments, err := SplitPath(cleanPath(name))
	if err != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: err}
	}

	for i := range segments {
		p := "/" + joinSegments(segments[:i+1])
		e, err := fs.img.Stat(p)
		switch {
		case err == nil && e.Status.IsDir():
			continue
		case err == nil:
			return &os.PathError{Op: "mkdir", Path: p, Err: ErrExist}
		case !errors.Is(err, ErrNotFound):
			return &os.PathError{Op: "mkdir", Path: p, Err: err}
		}

		if err := fs.Mkdir(p, perm); err != nil {
			return err
		}
	}
	return nil
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "create", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) Remove(name string) error {
	return &os.PathError{Op: "remove", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) RemoveAll(path string) error {
	return &os.PathError{Op: "removeall", Path: path, Err: ErrReadOnly}
}

func (fs *Fs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrReadOnly}
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return &os.PathError{Op: "chmod", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return &os.PathError{Op: "chown", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return &os.PathError{Op: "chtimes", Path: name, Err: ErrReadOnly}
}
