package gosfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/aligator/gosfs/checkpoint"
)

// All multi-byte fields of an SFS image are big-endian.
// The conversion happens here and nowhere else.
var byteOrder = binary.BigEndian

// DecodeSuperblock reads the packed header from the start of b.
// It returns ErrTruncated if b is shorter than SuperblockSize.
func DecodeSuperblock(b []byte) (Superblock, error) {
	if len(b) < SuperblockSize {
		return Superblock{}, checkpoint.Wrap(ErrTruncated, fmt.Errorf("superblock needs %d bytes, got %d", SuperblockSize, len(b)))
	}

	var sb Superblock
	copy(sb.Tag[:], b[0:8])
	sb.BlockSize = byteOrder.Uint16(b[8:10])
	sb.BlockCount = byteOrder.Uint32(b[10:14])
	sb.FATStart = byteOrder.Uint32(b[14:18])
	sb.FATBlocks = byteOrder.Uint32(b[18:22])
	sb.RootDirStart = byteOrder.Uint32(b[22:26])
	sb.RootDirBlocks = byteOrder.Uint32(b[26:30])
	return sb, nil
}

// Encode returns the packed on-disk form of the superblock.
func (sb Superblock) Encode() []byte {
	b := make([]byte, SuperblockSize)
	copy(b[0:8], sb.Tag[:])
	byteOrder.PutUint16(b[8:10], sb.BlockSize)
	byteOrder.PutUint32(b[10:14], sb.BlockCount)
	byteOrder.PutUint32(b[14:18], sb.FATStart)
	byteOrder.PutUint32(b[18:22], sb.FATBlocks)
	byteOrder.PutUint32(b[22:26], sb.RootDirStart)
	byteOrder.PutUint32(b[26:30], sb.RootDirBlocks)
	return b
}

// Validate checks that the geometry can be used safely.
func (sb Superblock) Validate() error {
	if err := sb.validateBlockSize(); err != nil {
		return err
	}
	if !sb.inImage(sb.FATStart, sb.FATBlocks) || sb.FATBlocks == 0 {
		return checkpoint.Wrap(ErrInvalidSuperblock, fmt.Errorf("FAT [%d, +%d) outside of %d blocks", sb.FATStart, sb.FATBlocks, sb.BlockCount))
	}
	if !sb.inImage(sb.RootDirStart, sb.RootDirBlocks) || sb.RootDirBlocks == 0 {
		return checkpoint.Wrap(ErrInvalidSuperblock, fmt.Errorf("root directory [%d, +%d) outside of %d blocks", sb.RootDirStart, sb.RootDirBlocks, sb.BlockCount))
	}
	return nil
}

func (sb Superblock) validateBlockSize() error {
	if sb.BlockSize == 0 || bits.OnesCount16(sb.BlockSize) != 1 {
		return checkpoint.Wrap(ErrInvalidSuperblock, fmt.Errorf("block size %d is not a power of two", sb.BlockSize))
	}
	if sb.BlockSize < DirEntrySize {
		return checkpoint.Wrap(ErrInvalidSuperblock, fmt.Errorf("block size %d cannot hold a directory entry", sb.BlockSize))
	}
	return nil
}

func (sb Superblock) inImage(start, count uint32) bool {
	end := uint64(start) + uint64(count)
	return end <= uint64(sb.BlockCount)
}

// entriesPerBlock is the number of directory slots in one block.
func (sb Superblock) entriesPerBlock() int {
	return int(sb.BlockSize) / DirEntrySize
}

// fatEntries is the number of usable FAT entries. Entries past the end of the
// image would address blocks which do not exist.
func (sb Superblock) fatEntries() uint32 {
	n := uint64(sb.FATBlocks) * uint64(sb.BlockSize) / fatEntrySize
	if n > uint64(sb.BlockCount) {
		return sb.BlockCount
	}
	return uint32(n)
}

// fatTableEntries is the number of entries stored in the FAT blocks.
func (sb Superblock) fatTableEntries() uint32 {
	n := uint64(sb.FATBlocks) * uint64(sb.BlockSize) / fatEntrySize
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// blocksFor returns how many blocks size bytes occupy, at least one.
func (sb Superblock) blocksFor(size uint32) uint32 {
	bs := uint32(sb.BlockSize)
	n := size / bs
	if size%bs > 0 {
		n++
	}
	if n == 0 {
		return 1
	}
	return n
}

// isMetadata reports if block belongs to the superblock, the FAT or the root
// directory.
func (sb Superblock) isMetadata(block uint32) bool {
	switch {
	case block == 0:
		return true
	case block >= sb.FATStart && block-sb.FATStart < sb.FATBlocks:
		return true
	case block >= sb.RootDirStart && block-sb.RootDirStart < sb.RootDirBlocks:
		return true
	}
	return false
}

// DecodeDirEntry reads one packed directory entry from the start of b.
func DecodeDirEntry(b []byte) (DirEntry, error) {
	if len(b) < DirEntrySize {
		return DirEntry{}, checkpoint.Wrap(ErrTruncated, fmt.Errorf("directory entry needs %d bytes, got %d", DirEntrySize, len(b)))
	}

	e := DirEntry{
		Status:        Status(b[0]),
		StartingBlock: byteOrder.Uint32(b[1:5]),
		BlockCount:    byteOrder.Uint32(b[5:9]),
		Size:          byteOrder.Uint32(b[9:13]),
		CreateTime:    decodeTimestamp(b[13:20]),
		ModifyTime:    decodeTimestamp(b[20:27]),
	}

	// The last byte of the name field is always treated as terminator.
	name := b[27 : 27+MaxNameLen]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	e.Name = string(name)
	return e, nil
}

// Encode returns the packed on-disk form of the entry.
// It fails with ErrInvalidPath if the name does not fit the name field.
func (e DirEntry) Encode() ([]byte, error) {
	if err := validName(e.Name); err != nil {
		return nil, err
	}

	b := make([]byte, DirEntrySize)
	b[0] = byte(e.Status)
	byteOrder.PutUint32(b[1:5], e.StartingBlock)
	byteOrder.PutUint32(b[5:9], e.BlockCount)
	byteOrder.PutUint32(b[9:13], e.Size)
	encodeTimestamp(b[13:20], e.CreateTime)
	encodeTimestamp(b[20:27], e.ModifyTime)
	copy(b[27:27+nameFieldSize], e.Name)
	// b[58:64] stays zero (unused).
	return b, nil
}

func decodeTimestamp(b []byte) Timestamp {
	return Timestamp{
		Year:   byteOrder.Uint16(b[0:2]),
		Month:  b[2],
		Day:    b[3],
		Hour:   b[4],
		Minute: b[5],
		Second: b[6],
	}
}

func encodeTimestamp(b []byte, ts Timestamp) {
	byteOrder.PutUint16(b[0:2], ts.Year)
	b[2] = ts.Month
	b[3] = ts.Day
	b[4] = ts.Hour
	b[5] = ts.Minute
	b[6] = ts.Second
}

func decodeFATEntry(b []byte) uint32 {
	return byteOrder.Uint32(b)
}

func encodeFATEntry(v uint32) []byte {
	b := make([]byte, fatEntrySize)
	byteOrder.PutUint32(b, v)
	return b
}
