package gosfs

import (
	"fmt"

	"github.com/aligator/gosfs/checkpoint"
	"github.com/sirupsen/logrus"
)

// FATStats counts the FAT entries by state, like diskinfo prints them.
type FATStats struct {
	Free      uint32
	Reserved  uint32
	Allocated uint32
}

// FAT gives access to the file allocation table of an image.
// The index of an entry is also the number of the block it describes.
type FAT struct {
	store *BlockStore
	sb    Superblock
	log   logrus.FieldLogger
}

// NewFAT returns the allocation table described by sb.
func NewFAT(store *BlockStore, sb Superblock, log logrus.FieldLogger) *FAT {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FAT{
		store: store,
		sb:    sb,
		log:   log,
	}
}

// Len returns the number of entries which address blocks of the image.
func (f *FAT) Len() uint32 {
	return f.sb.fatEntries()
}

func (f *FAT) locate(i uint32) (block uint32, off int, err error) {
	if i >= f.Len() {
		return 0, 0, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("FAT index %d outside of %d entries", i, f.Len()))
	}
	byteOff := uint64(i) * fatEntrySize
	bs := uint64(f.sb.BlockSize)
	return f.sb.FATStart + uint32(byteOff/bs), int(byteOff % bs), nil
}

// Entry reads entry i.
func (f *FAT) Entry(i uint32) (uint32, error) {
	block, off, err := f.locate(i)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, fatEntrySize)
	if err := f.store.ReadBlockAt(buf, block, off); err != nil {
		return 0, err
	}
	return decodeFATEntry(buf), nil
}

// SetEntry writes v into entry i.
func (f *FAT) SetEntry(i, v uint32) error {
	block, off, err := f.locate(i)
	if err != nil {
		return err
	}
	return f.store.WriteBlockAt(encodeFATEntry(v), block, off)
}

// scan calls fn for every entry addressing a block in table order until fn
// returns false.
func (f *FAT) scan(fn func(i, v uint32) bool) error {
	return f.scanN(f.Len(), fn)
}

// scanN is like scan but visits the first n entries of the table.
// The table is read one block at a time.
func (f *FAT) scanN(n uint32, fn func(i, v uint32) bool) error {
	perBlock := uint32(f.sb.BlockSize) / fatEntrySize

	for i := uint32(0); i < n; {
		buf, err := f.store.ReadBlock(f.sb.FATStart + i/perBlock)
		if err != nil {
			return err
		}
		for off := 0; off < len(buf) && i < n; off, i = off+fatEntrySize, i+1 {
			if !fn(i, decodeFATEntry(buf[off:off+fatEntrySize])) {
				return nil
			}
		}
	}
	return nil
}

// FindFreeBlock returns the first free block in table order.
// Blocks holding the superblock, the FAT or the root directory are never
// returned, even if their entry claims they are free.
// It returns ErrNoSpace if no block is left.
func (f *FAT) FindFreeBlock() (uint32, error) {
	found := false
	var block uint32
	err := f.scan(func(i, v uint32) bool {
		if v == FATFree && !f.sb.isMetadata(i) {
			found = true
			block = i
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, checkpoint.Wrap(ErrNoSpace, fmt.Errorf("all %d FAT entries are in use", f.Len()))
	}
	return block, nil
}

// FreeBlocks counts the blocks FindFreeBlock could still return.
func (f *FAT) FreeBlocks() (uint32, error) {
	var free uint32
	err := f.scan(func(i, v uint32) bool {
		if v == FATFree && !f.sb.isMetadata(i) {
			free++
		}
		return true
	})
	return free, err
}

// ExtendChain turns start into a chain of count blocks. Every block gets
// claimed before the next free block is searched, so a block is never linked
// to itself. The last block is terminated with FATEOF.
//
// If the FAT runs out of free blocks on the way, ErrNoSpace is returned and
// the blocks linked so far stay allocated.
func (f *FAT) ExtendChain(start, count uint32) error {
	if count == 0 {
		count = 1
	}

	if err := f.SetEntry(start, FATEOF); err != nil {
		return err
	}

	current := start
	for i := uint32(1); i < count; i++ {
		next, err := f.FindFreeBlock()
		if err != nil {
			f.log.WithFields(logrus.Fields{"start": start, "linked": i, "count": count}).Debug("chain left partially linked")
			return err
		}
		if err := f.SetEntry(next, FATEOF); err != nil {
			return err
		}
		if err := f.SetEntry(current, next); err != nil {
			return err
		}
		current = next
	}

	f.log.WithFields(logrus.Fields{"start": start, "count": count, "last": current}).Debug("linked chain")
	return nil
}

// Chain follows the chain from start and returns at most max of its blocks.
// Links to free, reserved or non-existent entries and chains visiting a block
// twice are reported as ErrCorrupt.
func (f *FAT) Chain(start, max uint32) ([]uint32, error) {
	if max > f.Len() {
		max = f.Len()
	}

	var blocks []uint32
	seen := make(map[uint32]bool)
	current := start
	for uint32(len(blocks)) < max {
		if current >= f.Len() {
			return blocks, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("chain from %d reaches block %d outside of the image", start, current))
		}
		if seen[current] {
			return blocks, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("chain from %d loops back to block %d", start, current))
		}
		seen[current] = true
		blocks = append(blocks, current)

		next, err := f.Entry(current)
		if err != nil {
			return blocks, err
		}
		switch next {
		case FATEOF:
			return blocks, nil
		case FATFree, FATReserved:
			return blocks, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("chain from %d is broken at block %d (entry %#x)", start, current, next))
		}
		current = next
	}
	return blocks, nil
}

// isLink reports if v, the entry of block, points to another block.
func (f *FAT) isLink(block, v uint32) bool {
	switch v {
	case FATEOF, FATFree, FATReserved:
		return false
	}
	return v != block && v < f.Len()
}

// Next returns the block holding the data which follows block.
// A link in the FAT is followed. Otherwise the data continues in the adjacent
// block, which is how images written without FAT updates store it.
// ErrCorrupt is returned if block is the last block of the image.
func (f *FAT) Next(block uint32) (uint32, error) {
	if block < f.Len() {
		next, err := f.Entry(block)
		if err != nil {
			return 0, err
		}
		if f.isLink(block, next) {
			return next, nil
		}
	}

	if uint64(block)+1 >= uint64(f.sb.BlockCount) {
		return 0, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("data continues after block %d, the last block of the image", block))
	}
	return block + 1, nil
}

// Blocks returns the count blocks of the data starting at start, stepping
// from block to block like Next. It returns ErrCorrupt if they do not fit
// into the image or a block would be visited twice.
func (f *FAT) Blocks(start, count uint32) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	if count > f.sb.BlockCount {
		return nil, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("%d blocks from %d do not fit into %d blocks", count, start, f.sb.BlockCount))
	}

	blocks := make([]uint32, 0, count)
	seen := make(map[uint32]bool, count)
	current := start
	for {
		if current >= f.sb.BlockCount {
			return blocks, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("blocks from %d reach block %d outside of the image", start, current))
		}
		if seen[current] {
			return blocks, checkpoint.Wrap(ErrCorrupt, fmt.Errorf("blocks from %d loop back to block %d", start, current))
		}
		seen[current] = true
		blocks = append(blocks, current)
		if uint32(len(blocks)) == count {
			return blocks, nil
		}

		next, err := f.Next(current)
		if err != nil {
			return blocks, err
		}
		current = next
	}
}

// Stats counts free, reserved and allocated entries of the whole table,
// including the entries past the last block which pad the final FAT block.
func (f *FAT) Stats() (FATStats, error) {
	var stats FATStats
	err := f.scanN(f.sb.fatTableEntries(), func(i, v uint32) bool {
		switch v {
		case FATFree:
			stats.Free++
		case FATReserved:
			stats.Reserved++
		default:
			stats.Allocated++
		}
		return true
	})
	return stats, err
}
