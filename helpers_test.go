package gosfs

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

// testGeometry is a small image: block 0 superblock, block 1 FAT,
// blocks 2-3 root directory and 60 free data blocks starting at 4.
var testGeometry = Geometry{
	BlockSize:     512,
	BlockCount:    64,
	FATBlocks:     1,
	RootDirBlocks: 2,
}

func testNow() time.Time {
	return time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
}

// newTestImage formats an in-memory image with g and opens it.
// All debug logs end up in the returned hook.
func newTestImage(t *testing.T, g Geometry) (*Image, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := &Options{Logger: logger, Now: testNow}

	fs := afero.NewMemMapFs()
	f, err := fs.Create("test.img")
	if err != nil {
		t.Fatal(err)
	}
	if err := Format(f, g, opts); err != nil {
		t.Fatal(err)
	}

	img, err := New(f, opts)
	if err != nil {
		t.Fatal(err)
	}
	img.closer = f
	t.Cleanup(func() { img.Close() })
	return img, hook
}

// placeFile writes a single block file into the root directory by hand,
// the way an image created by other tools would contain it.
func placeFile(t *testing.T, img *Image, rootSlot int, block uint32, name string, content []byte) DirEntry {
	t.Helper()

	if err := img.fat.SetEntry(block, FATEOF); err != nil {
		t.Fatal(err)
	}
	if err := img.store.WriteBlock(block, content); err != nil {
		t.Fatal(err)
	}

	e := DirEntry{
		Status:        statusNewFile,
		StartingBlock: block,
		BlockCount:    1,
		Size:          uint32(len(content)),
		CreateTime:    NewTimestamp(testNow()),
		ModifyTime:    NewTimestamp(testNow()),
		Name:          name,
	}
	perBlock := img.sb.entriesPerBlock()
	s := slot{block: img.sb.RootDirStart + uint32(rootSlot/perBlock), index: rootSlot % perBlock}
	if err := img.dir.writeEntry(s, e); err != nil {
		t.Fatal(err)
	}
	return e
}

// chainOf follows the chain from start like a direct FAT scan would.
func chainOf(t *testing.T, img *Image, start uint32) []uint32 {
	t.Helper()

	var blocks []uint32
	for block := start; ; {
		blocks = append(blocks, block)
		if len(blocks) > int(img.fat.Len()) {
			t.Fatalf("chain from %d does not terminate", start)
		}
		next, err := img.fat.Entry(block)
		if err != nil {
			t.Fatal(err)
		}
		if next == FATEOF {
			return blocks
		}
		block = next
	}
}
