package gosfs

import (
	"fmt"
	"io"

	"github.com/aligator/gosfs/checkpoint"
)

// Device is the backing store of an image, usually an afero.File or *os.File.
// Images opened read-only may return errors from Write.
type Device interface {
	io.ReadWriteSeeker
}

// BlockStore reads and writes whole or partial blocks of a Device.
// There is no cache: every call seeks and transfers on the device.
type BlockStore struct {
	dev        Device
	blockSize  int64
	blockCount uint32
}

// NewBlockStore returns a BlockStore addressing blockCount blocks of
// blockSize bytes on dev.
func NewBlockStore(dev Device, blockSize uint16, blockCount uint32) *BlockStore {
	return &BlockStore{
		dev:        dev,
		blockSize:  int64(blockSize),
		blockCount: blockCount,
	}
}

// BlockSize returns the size of one block in bytes.
func (s *BlockStore) BlockSize() int {
	return int(s.blockSize)
}

// ReadBlock reads one complete block.
func (s *BlockStore) ReadBlock(block uint32) ([]byte, error) {
	buf := make([]byte, s.blockSize)
	if err := s.ReadBlockAt(buf, block, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadBlockAt fills p with the bytes starting at off inside of block.
// The range must not cross the end of the block.
func (s *BlockStore) ReadBlockAt(p []byte, block uint32, off int) error {
	if err := s.seek(block, off, len(p)); err != nil {
		return err
	}

	if _, err := io.ReadFull(s.dev, p); err != nil {
		// A block is never optional, so even reading nothing is unexpected.
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return checkpoint.Wrap(err, fmt.Errorf("%w: reading %d bytes of block %d", ErrIO, len(p), block))
	}
	return nil
}

// WriteBlock writes data to the start of block. data may be shorter than a
// block, in which case the rest of the block is left untouched.
func (s *BlockStore) WriteBlock(block uint32, data []byte) error {
	return s.WriteBlockAt(data, block, 0)
}

// WriteBlockAt writes p starting at off inside of block.
// The range must not cross the end of the block.
func (s *BlockStore) WriteBlockAt(p []byte, block uint32, off int) error {
	if err := s.seek(block, off, len(p)); err != nil {
		return err
	}

	n, err := s.dev.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return checkpoint.Wrap(err, fmt.Errorf("%w: writing %d bytes of block %d", ErrIO, len(p), block))
	}
	return nil
}

func (s *BlockStore) seek(block uint32, off int, n int) error {
	if block >= s.blockCount {
		return checkpoint.Wrap(ErrCorrupt, fmt.Errorf("block %d outside of %d blocks", block, s.blockCount))
	}
	if off < 0 || int64(off)+int64(n) > s.blockSize {
		return checkpoint.Wrap(ErrIO, fmt.Errorf("range [%d, +%d) crosses the end of block %d", off, n, block))
	}

	offset := int64(block)*s.blockSize + int64(off)
	if _, err := s.dev.Seek(offset, io.SeekStart); err != nil {
		return checkpoint.Wrap(err, fmt.Errorf("%w: seeking to block %d", ErrIO, block))
	}
	return nil
}
