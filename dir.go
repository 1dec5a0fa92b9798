package gosfs

import (
	"fmt"
	"strings"

	"github.com/aligator/gosfs/checkpoint"
	"github.com/sirupsen/logrus"
)

// dirLocation lists the blocks holding the slots of one directory in storage order.
type dirLocation struct {
	blocks []uint32
}

// slot addresses a single directory entry inside of a directory block.
type slot struct {
	block uint32
	index int
}

func (s slot) offset() int {
	return s.index * DirEntrySize
}

// walker resolves paths by walking the directory tree.
// It never recurses: the current directory is carried through a loop over the
// path segments.
type walker struct {
	store *BlockStore
	sb    Superblock
	fat   *FAT
	log   logrus.FieldLogger
}

// root returns the location of the root directory, a contiguous block range.
func (w *walker) root() dirLocation {
	loc := dirLocation{blocks: make([]uint32, w.sb.RootDirBlocks)}
	for i := range loc.blocks {
		loc.blocks[i] = w.sb.RootDirStart + uint32(i)
	}
	return loc
}

// open returns the location of the subdirectory described by e.
// Its block count blocks are found like file data, see FAT.Next.
func (w *walker) open(e DirEntry) (dirLocation, error) {
	if !e.Status.IsDir() {
		return dirLocation{}, checkpoint.Wrap(ErrNotFound, fmt.Errorf("%q is not a directory", e.Name))
	}
	if e.BlockCount == 0 {
		return dirLocation{}, nil
	}

	blocks, err := w.fat.Blocks(e.StartingBlock, e.BlockCount)
	if err != nil {
		return dirLocation{}, err
	}
	return dirLocation{blocks: blocks}, nil
}

// each calls fn for every used slot of loc in storage order until fn returns false.
func (w *walker) each(loc dirLocation, fn func(s slot, e DirEntry) bool) error {
	return w.eachSlot(loc, func(s slot, e DirEntry) bool {
		if e.Status.IsEmpty() {
			return true
		}
		return fn(s, e)
	})
}

// eachSlot is like each but also visits empty slots.
func (w *walker) eachSlot(loc dirLocation, fn func(s slot, e DirEntry) bool) error {
	perBlock := w.sb.entriesPerBlock()
	for _, block := range loc.blocks {
		buf, err := w.store.ReadBlock(block)
		if err != nil {
			return err
		}

		for i := 0; i < perBlock; i++ {
			s := slot{block: block, index: i}
			e, err := DecodeDirEntry(buf[s.offset():])
			if err != nil {
				return err
			}
			if !fn(s, e) {
				return nil
			}
		}
	}
	return nil
}

// lookup searches loc for a used slot called name for which match returns
// true. A nil match accepts any entry.
func (w *walker) lookup(loc dirLocation, name string, match func(Status) bool) (DirEntry, slot, bool, error) {
	var (
		found DirEntry
		at    slot
		ok    bool
	)
	err := w.each(loc, func(s slot, e DirEntry) bool {
		if e.Name != name || (match != nil && !match(e.Status)) {
			return true
		}
		found, at, ok = e, s, true
		return false
	})
	return found, at, ok, err
}

// dir descends from the root through segments, each of which must name a
// directory.
func (w *walker) dir(segments []string) (dirLocation, error) {
	loc := w.root()
	for i, name := range segments {
		e, _, ok, err := w.lookup(loc, name, Status.IsDir)
		if err != nil {
			return dirLocation{}, err
		}
		if !ok {
			return dirLocation{}, checkpoint.Wrap(ErrNotFound, fmt.Errorf("directory %q not found in /%s", name, joinSegments(segments[:i])))
		}

		loc, err = w.open(e)
		if err != nil {
			return dirLocation{}, err
		}
	}
	return loc, nil
}

// resolve returns the file entry segments point to.
// All segments except the last must be directories, the last one must be a file.
func (w *walker) resolve(segments []string) (DirEntry, error) {
	e, _, err := w.resolveEntry(segments, Status.IsFile)
	return e, err
}

// resolveEntry returns the entry named by the last segment and its slot,
// given it satisfies match.
func (w *walker) resolveEntry(segments []string, match func(Status) bool) (DirEntry, slot, error) {
	if len(segments) == 0 {
		return DirEntry{}, slot{}, checkpoint.Wrap(ErrNotFound, fmt.Errorf("the root directory has no entry"))
	}

	last := len(segments) - 1
	loc, err := w.dir(segments[:last])
	if err != nil {
		return DirEntry{}, slot{}, err
	}

	e, s, ok, err := w.lookup(loc, segments[last], match)
	if err != nil {
		return DirEntry{}, slot{}, err
	}
	if !ok {
		return DirEntry{}, slot{}, checkpoint.Wrap(ErrNotFound, fmt.Errorf("/%s not found", joinSegments(segments)))
	}
	return e, s, nil
}

// list returns all used entries of the directory segments point to, in
// storage order.
func (w *walker) list(segments []string) ([]DirEntry, error) {
	loc, err := w.dir(segments)
	if err != nil {
		return nil, err
	}
	return w.entries(loc)
}

func (w *walker) entries(loc dirLocation) ([]DirEntry, error) {
	var entries []DirEntry
	err := w.each(loc, func(_ slot, e DirEntry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, err
}

// findEmptySlot returns the first empty slot of loc.
// It returns ErrNoSpace if the directory is full.
func (w *walker) findEmptySlot(loc dirLocation) (slot, error) {
	var (
		found slot
		ok    bool
	)
	err := w.eachSlot(loc, func(s slot, e DirEntry) bool {
		if e.Status.IsEmpty() {
			found, ok = s, true
			return false
		}
		return true
	})
	if err != nil {
		return slot{}, err
	}
	if !ok {
		return slot{}, checkpoint.Wrap(ErrNoSpace, fmt.Errorf("no empty slot in %d directory blocks", len(loc.blocks)))
	}
	return found, nil
}

// writeEntry stores e in s.
func (w *walker) writeEntry(s slot, e DirEntry) error {
	b, err := e.Encode()
	if err != nil {
		return err
	}

	if err := w.store.WriteBlockAt(b, s.block, s.offset()); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"name": e.Name, "block": s.block, "slot": s.index}).Debug("wrote directory entry")
	return nil
}

func joinSegments(segments []string) string {
	return strings.Join(segments, "/")
}
