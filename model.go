// File model contains the types matching the on-disk structures of an SFS image.
// They are never read or written through their in-memory layout, see codec.go.

package gosfs

const (
	// SuperblockSize is the size of the packed header at offset 0.
	SuperblockSize = 30

	// DirEntrySize is the size of one packed directory entry.
	DirEntrySize = 64

	// MaxNameLen is the longest name which still fits the 31 byte name field
	// including its NUL terminator.
	MaxNameLen = 30

	// MaxDepth is the maximum number of segments in a path.
	MaxDepth = 10

	fatEntrySize  = 4
	timestampSize = 7
	nameFieldSize = 31
)

// Well known FAT entry values.
const (
	FATFree     uint32 = 0x00000000
	FATReserved uint32 = 0x00000001
	FATEOF      uint32 = 0xFFFFFFFF
)

// DefaultTag is written by Format into new images.
var DefaultTag = [8]byte{'C', 'S', 'C', '3', '6', '0', 'F', 'S'}

// Superblock describes the geometry of an image.
type Superblock struct {
	Tag           [8]byte
	BlockSize     uint16
	BlockCount    uint32
	FATStart      uint32
	FATBlocks     uint32
	RootDirStart  uint32
	RootDirBlocks uint32
}

// Status is the first byte of a directory entry.
type Status uint8

const (
	StatusEmpty     Status = 0x00
	StatusInUse     Status = 0x01
	StatusFile      Status = 0x02
	StatusDirectory Status = 0x04
	StatusTombstone Status = 0xFF

	// statusNewFile and statusNewDirectory are written for new entries.
	statusNewFile      = StatusInUse | StatusFile
	statusNewDirectory = StatusInUse | StatusDirectory
)

// IsEmpty reports if the slot carries no entry.
func (s Status) IsEmpty() bool {
	return s == StatusEmpty || s == StatusTombstone
}

// IsFile reports if the slot is a used slot with the file bit set.
func (s Status) IsFile() bool {
	return !s.IsEmpty() && s&StatusFile != 0
}

// IsDir reports if the slot is a used slot without the file bit.
func (s Status) IsDir() bool {
	return !s.IsEmpty() && s&StatusFile == 0
}

// Timestamp is the 7 byte wall clock time stored in directory entries.
type Timestamp struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}

// DirEntry is a single directory slot.
type DirEntry struct {
	Status        Status
	StartingBlock uint32
	BlockCount    uint32
	Size          uint32
	CreateTime    Timestamp
	ModifyTime    Timestamp
	Name          string
}
