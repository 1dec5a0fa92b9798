package gosfs

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/aligator/gosfs/checkpoint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Options configure an Image. The zero value is usable.
type Options struct {
	// Logger receives debug messages about allocations and transfers.
	// Defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger

	// Now returns the time stored in new entries. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) logger() logrus.FieldLogger {
	if o == nil || o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

func (o *Options) clock() func() time.Time {
	if o == nil || o.Now == nil {
		return time.Now
	}
	return o.Now
}

// Info summarizes an image like diskinfo does.
type Info struct {
	Superblock Superblock
	FAT        FATStats
}

// Image is an opened SFS image.
// It is not safe for concurrent use.
type Image struct {
	dev    Device
	closer io.Closer

	store *BlockStore
	sb    Superblock
	fat   *FAT
	dir   *walker

	log logrus.FieldLogger
	now func() time.Time
}

// New reads the superblock from dev and returns the image it describes.
func New(dev Device, opts *Options) (*Image, error) {
	if _, err := dev.Seek(0, io.SeekStart); err != nil {
		return nil, checkpoint.Wrap(err, ErrImageOpen)
	}

	header := make([]byte, SuperblockSize)
	if n, err := io.ReadFull(dev, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, checkpoint.Wrap(ErrTruncated, fmt.Errorf("superblock needs %d bytes, got %d", SuperblockSize, n))
		}
		return nil, checkpoint.Wrap(err, ErrImageOpen)
	}

	sb, err := DecodeSuperblock(header)
	if err != nil {
		return nil, err
	}
	if err := sb.Validate(); err != nil {
		return nil, err
	}

	end, err := dev.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrImageOpen)
	}
	if want := int64(sb.BlockCount) * int64(sb.BlockSize); end < want {
		return nil, checkpoint.Wrap(ErrTruncated, fmt.Errorf("image has %d bytes, %d blocks of %d bytes need %d", end, sb.BlockCount, sb.BlockSize, want))
	}

	log := opts.logger()
	store := NewBlockStore(dev, sb.BlockSize, sb.BlockCount)
	fat := NewFAT(store, sb, log)
	img := &Image{
		dev:   dev,
		store: store,
		sb:    sb,
		fat:   fat,
		dir: &walker{
			store: store,
			sb:    sb,
			fat:   fat,
			log:   log,
		},
		log: log,
		now: opts.clock(),
	}

	log.WithFields(logrus.Fields{
		"blockSize":  sb.BlockSize,
		"blockCount": sb.BlockCount,
	}).Debug("opened image")
	return img, nil
}

// Open opens the image file name on fs. Use os.O_RDONLY for read only access
// and os.O_RDWR to be able to insert files.
// The returned Image closes the file on Close.
func Open(fs afero.Fs, name string, flag int, opts *Options) (*Image, error) {
	f, err := fs.OpenFile(name, flag, 0)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrImageOpen)
	}

	img, err := New(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	img.closer = f
	return img, nil
}

// Close closes the underlying file if the image was created by Open.
func (img *Image) Close() error {
	if img.closer == nil {
		return nil
	}
	err := img.closer.Close()
	img.closer = nil
	return err
}

// Superblock returns the decoded superblock.
func (img *Image) Superblock() Superblock {
	return img.sb
}

// Info returns the superblock together with the FAT statistics.
func (img *Image) Info() (Info, error) {
	stats, err := img.fat.Stats()
	if err != nil {
		return Info{}, err
	}
	return Info{Superblock: img.sb, FAT: stats}, nil
}

// List returns the entries of the directory at path in storage order.
func (img *Image) List(path string) ([]DirEntry, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	return img.dir.list(segments)
}

// Stat returns the entry at path. It may be a file or a directory.
// The root directory is described by a synthetic entry named "/".
func (img *Image) Stat(path string) (DirEntry, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return DirEntry{}, err
	}
	if len(segments) == 0 {
		return img.rootEntry(), nil
	}

	e, _, err := img.dir.resolveEntry(segments, nil)
	return e, err
}

func (img *Image) rootEntry() DirEntry {
	return DirEntry{
		Status:        statusNewDirectory,
		StartingBlock: img.sb.RootDirStart,
		BlockCount:    img.sb.RootDirBlocks,
		Size:          img.sb.RootDirBlocks * uint32(img.sb.BlockSize),
		Name:          "/",
	}
}

// Extract writes the content of the file at path to w and returns the number
// of bytes written.
func (img *Image) Extract(path string, w io.Writer) (int64, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return 0, err
	}

	e, err := img.dir.resolve(segments)
	if err != nil {
		return 0, err
	}
	return img.copyOut(w, e.StartingBlock, e.Size)
}

// Insert stores size bytes read from r as a new file called name in the
// directory dirPath. An empty dirPath or "/" selects the root directory.
func (img *Image) Insert(r io.Reader, name string, size int64, dirPath string) (DirEntry, error) {
	if err := validName(name); err != nil {
		return DirEntry{}, err
	}
	if size < 0 || size > math.MaxUint32 {
		return DirEntry{}, checkpoint.Wrap(ErrFileTooLarge, fmt.Errorf("%q has %d bytes", name, size))
	}

	loc, err := img.targetDir(dirPath, name)
	if err != nil {
		return DirEntry{}, err
	}
	if err := img.ensureFree(img.sb.blocksFor(uint32(size))); err != nil {
		return DirEntry{}, err
	}

	return img.copyIn(r, name, uint32(size), loc)
}

// Mkdir creates a directory at path with blocks zeroed blocks.
// All parents must exist already.
func (img *Image) Mkdir(path string, blocks uint32) (DirEntry, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return DirEntry{}, err
	}
	if len(segments) == 0 {
		return DirEntry{}, checkpoint.Wrap(ErrExist, fmt.Errorf("the root directory always exists"))
	}
	if blocks == 0 {
		blocks = 1
	}

	last := len(segments) - 1
	name := segments[last]
	loc, err := img.targetDir(joinSegments(segments[:last]), name)
	if err != nil {
		return DirEntry{}, err
	}
	if err := img.ensureFree(blocks); err != nil {
		return DirEntry{}, err
	}

	s, err := img.dir.findEmptySlot(loc)
	if err != nil {
		return DirEntry{}, err
	}
	start, err := img.fat.FindFreeBlock()
	if err != nil {
		return DirEntry{}, err
	}
	if err := img.fat.ExtendChain(start, blocks); err != nil {
		return DirEntry{}, err
	}

	chain, err := img.fat.Chain(start, blocks)
	if err != nil {
		return DirEntry{}, err
	}
	empty := make([]byte, img.sb.BlockSize)
	for _, block := range chain {
		if err := img.store.WriteBlock(block, empty); err != nil {
			return DirEntry{}, err
		}
	}

	now := NewTimestamp(img.now())
	e := DirEntry{
		Status:        statusNewDirectory,
		StartingBlock: start,
		BlockCount:    blocks,
		Size:          blocks * uint32(img.sb.BlockSize),
		CreateTime:    now,
		ModifyTime:    now,
		Name:          name,
	}
	if err := img.dir.writeEntry(s, e); err != nil {
		return DirEntry{}, err
	}
	return e, nil
}

// targetDir resolves the directory dirPath and makes sure it has no entry
// called name yet.
func (img *Image) targetDir(dirPath, name string) (dirLocation, error) {
	segments, err := SplitPath(dirPath)
	if err != nil {
		return dirLocation{}, err
	}
	loc, err := img.dir.dir(segments)
	if err != nil {
		return dirLocation{}, err
	}

	_, _, exists, err := img.dir.lookup(loc, name, nil)
	if err != nil {
		return dirLocation{}, err
	}
	if exists {
		return dirLocation{}, checkpoint.Wrap(ErrExist, &os.PathError{Op: "create", Path: "/" + joinSegments(append(segments, name)), Err: os.ErrExist})
	}
	return loc, nil
}

func (img *Image) ensureFree(blocks uint32) error {
	free, err := img.fat.FreeBlocks()
	if err != nil {
		return err
	}
	if free < blocks {
		return checkpoint.Wrap(ErrNoSpace, fmt.Errorf("%d blocks needed, %d free", blocks, free))
	}
	return nil
}
