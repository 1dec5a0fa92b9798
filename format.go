package gosfs

import (
	"fmt"

	"github.com/aligator/gosfs/checkpoint"
	"github.com/sirupsen/logrus"
)

// DefaultRootDirBlocks is used by Format if Geometry.RootDirBlocks is 0.
const DefaultRootDirBlocks = 8

// DefaultGeometry matches the layout of the images the course tools were
// tested with: 6400 blocks of 512 bytes, a 50 block FAT at block 1 and an
// 8 block root directory right after it.
var DefaultGeometry = Geometry{
	BlockSize:     512,
	BlockCount:    6400,
	FATBlocks:     50,
	RootDirBlocks: DefaultRootDirBlocks,
}

// Geometry describes the layout of a new image.
type Geometry struct {
	BlockSize  uint16
	BlockCount uint32

	// FATBlocks may be 0 to use the smallest FAT covering all blocks.
	FATBlocks uint32

	// RootDirBlocks may be 0 to use DefaultRootDirBlocks.
	RootDirBlocks uint32
}

// Superblock returns the superblock of an image formatted with g.
// The FAT always starts at block 1, directly followed by the root directory.
func (g Geometry) Superblock() (Superblock, error) {
	sb := Superblock{
		Tag:           DefaultTag,
		BlockSize:     g.BlockSize,
		BlockCount:    g.BlockCount,
		FATStart:      1,
		FATBlocks:     g.FATBlocks,
		RootDirBlocks: g.RootDirBlocks,
	}

	if err := sb.validateBlockSize(); err != nil {
		return Superblock{}, err
	}
	if sb.FATBlocks == 0 {
		perBlock := uint64(sb.BlockSize) / fatEntrySize
		sb.FATBlocks = uint32((uint64(sb.BlockCount) + perBlock - 1) / perBlock)
	}
	if sb.RootDirBlocks == 0 {
		sb.RootDirBlocks = DefaultRootDirBlocks
	}
	sb.RootDirStart = sb.FATStart + sb.FATBlocks

	if err := sb.Validate(); err != nil {
		return Superblock{}, err
	}
	if uint64(sb.RootDirStart)+uint64(sb.RootDirBlocks) >= uint64(sb.BlockCount) {
		return Superblock{}, checkpoint.Wrap(ErrInvalidSuperblock, fmt.Errorf("%d blocks leave no room for data", sb.BlockCount))
	}
	return sb, nil
}

// Validate reports if g describes a usable image.
func (g Geometry) Validate() error {
	_, err := g.Superblock()
	return err
}

// Format writes an empty image with geometry g to dev.
// All blocks are zeroed, the blocks holding the superblock, the FAT and the
// root directory are marked reserved.
func Format(dev Device, g Geometry, opts *Options) error {
	sb, err := g.Superblock()
	if err != nil {
		return err
	}
	log := opts.logger()

	store := NewBlockStore(dev, sb.BlockSize, sb.BlockCount)
	empty := make([]byte, sb.BlockSize)
	for block := uint32(0); block < sb.BlockCount; block++ {
		if err := store.WriteBlock(block, empty); err != nil {
			return err
		}
	}

	if err := store.WriteBlock(0, sb.Encode()); err != nil {
		return err
	}

	perBlock := uint32(sb.BlockSize) / fatEntrySize
	entries := sb.fatEntries()
	var reserved uint32
	for fb := uint32(0); fb < sb.FATBlocks; fb++ {
		buf := make([]byte, sb.BlockSize)
		for j := uint32(0); j < perBlock; j++ {
			i := fb*perBlock + j
			if i >= entries {
				break
			}
			if sb.isMetadata(i) {
				copy(buf[j*fatEntrySize:], encodeFATEntry(FATReserved))
				reserved++
			}
		}
		if err := store.WriteBlock(sb.FATStart+fb, buf); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"blockSize":  sb.BlockSize,
		"blockCount": sb.BlockCount,
		"fatBlocks":  sb.FATBlocks,
		"rootBlocks": sb.RootDirBlocks,
		"reserved":   reserved,
	}).Debug("formatted image")
	return nil
}
