package gosfs

import (
	"os"
	"time"
)

// FileInfo returns the entry as os.FileInfo.
// Timestamps are interpreted in the local time zone.
func (e DirEntry) FileInfo() os.FileInfo {
	return entryFileInfo{entry: e}
}

type entryFileInfo struct {
	entry DirEntry
}

func (e entryFileInfo) Name() string {
	return e.entry.Name
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.Size)
}

// Mode is always read only, as the afero adapter cannot write files.
func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0555
	}
	return 0444
}

// ModTime returns time.Time{} if the stored timestamp is invalid.
func (e entryFileInfo) ModTime() time.Time {
	return e.entry.ModifyTime.Time(time.Local)
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.Status.IsDir()
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}
