package gosfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func TestImage_HelloScenario(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)
	placeFile(t, img, 0, 10, "hello.txt", []byte("hello"))

	var out bytes.Buffer
	n, err := img.Extract("/hello.txt", &out)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 5 || out.String() != "hello" {
		t.Errorf("Extract() = %d bytes %q, want 5 bytes %q", n, out.String(), "hello")
	}

	entries, err := img.List("/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() = %v, want one entry", entries)
	}
	e := entries[0]
	if !e.Status.IsFile() || e.Size != 5 || e.Name != "hello.txt" || e.StartingBlock != 10 {
		t.Errorf("List() entry = %+v", e)
	}
}

func TestImage_InsertMultiBlock(t *testing.T) {
	img, hook := newTestImage(t, testGeometry)

	// Block 5 is taken, so the chain is not contiguous.
	if err := img.fat.SetEntry(5, FATEOF); err != nil {
		t.Fatal(err)
	}

	content := make([]byte, 3*512+17)
	rand.New(rand.NewSource(1)).Read(content)

	e, err := img.Insert(bytes.NewReader(content), "data.bin", int64(len(content)), "")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	want := DirEntry{
		Status:        statusNewFile,
		StartingBlock: 4,
		BlockCount:    4,
		Size:          uint32(len(content)),
		CreateTime:    NewTimestamp(testNow()),
		ModifyTime:    NewTimestamp(testNow()),
		Name:          "data.bin",
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("Insert() diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{4, 6, 7, 8}, chainOf(t, img, e.StartingBlock)); diff != "" {
		t.Errorf("chain diff (-want +got):\n%s", diff)
	}

	var out bytes.Buffer
	if _, err := img.Extract("data.bin", &out); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(content, out.Bytes()) {
		t.Errorf("Extract() returned %d bytes which differ from the %d inserted", out.Len(), len(content))
	}

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.DebugLevel && entry.Message == "copied data into the image" && entry.Data["name"] == "data.bin" {
			logged = true
		}
	}
	if !logged {
		t.Error("Insert() did not log the transfer")
	}
}

func TestImage_RoundTripThroughHost(t *testing.T) {
	src, _ := newTestImage(t, testGeometry)
	dst, _ := newTestImage(t, testGeometry)
	host := afero.NewMemMapFs()

	content := bytes.Repeat([]byte("0123456789"), 130)
	if _, err := src.Insert(bytes.NewReader(content), "copy.txt", int64(len(content)), "/"); err != nil {
		t.Fatal(err)
	}

	f, err := host.Create("/copy.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Extract("/copy.txt", f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = host.Open("/copy.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("extracted %d bytes, want %d", info.Size(), len(content))
	}

	if _, err := dst.Mkdir("/in", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := dst.Insert(f, info.Name(), info.Size(), "/in"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	var out bytes.Buffer
	if _, err := dst.Extract("/in/copy.txt", &out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, out.Bytes()) {
		t.Error("content changed on the way through the host filesystem")
	}
}

func TestImage_InsertErrors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, img *Image)
		file    string
		size    int64
		dir     string
		wantErr error
	}{
		{
			name: "duplicate name",
			prepare: func(t *testing.T, img *Image) {
				placeFile(t, img, 3, 10, "dup.txt", []byte("x"))
			},
			file:    "dup.txt",
			size:    1,
			wantErr: ErrExist,
		},
		{
			name: "name of a directory",
			prepare: func(t *testing.T, img *Image) {
				if _, err := img.Mkdir("/dir", 1); err != nil {
					t.Fatal(err)
				}
			},
			file:    "dir",
			size:    1,
			wantErr: os.ErrExist,
		},
		{
			name:    "too large for the FAT",
			file:    "big.bin",
			size:    61 * 512,
			wantErr: ErrNoSpace,
		},
		{
			name:    "too large for the format",
			file:    "huge.bin",
			size:    1 << 32,
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "missing directory",
			file:    "a.txt",
			size:    1,
			dir:     "/nope",
			wantErr: ErrNotFound,
		},
		{
			name:    "name too long",
			file:    "this-name-is-way-too-long-for-sfs.txt",
			size:    1,
			wantErr: ErrInvalidPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, _ := newTestImage(t, testGeometry)
			if tt.prepare != nil {
				tt.prepare(t, img)
			}
			before, err := img.fat.Stats()
			if err != nil {
				t.Fatal(err)
			}

			_, err = img.Insert(bytes.NewReader(make([]byte, 16)), tt.file, tt.size, tt.dir)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Insert() error = %v, wantErr %v", err, tt.wantErr)
			}

			after, err := img.fat.Stats()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(before, after); diff != "" {
				t.Errorf("failed Insert() changed the FAT (-before +after):\n%s", diff)
			}
		})
	}
}

func TestImage_InsertShortSource(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)

	_, err := img.Insert(bytes.NewReader([]byte("short")), "short.txt", 1000, "/")
	if !errors.Is(err, ErrIO) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Insert() error = %v, want ErrIO", err)
	}

	// Entry and chain stay in place.
	e, err := img.Stat("/short.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if e.BlockCount != 2 || len(chainOf(t, img, e.StartingBlock)) != 2 {
		t.Errorf("Stat() = %+v, want a linked entry of 2 blocks", e)
	}
}

func TestImage_InsertEmptyFile(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)

	e, err := img.Insert(bytes.NewReader(nil), "empty", 0, "/")
	if err != nil {
		t.Fatal(err)
	}
	if e.BlockCount != 1 || e.Size != 0 {
		t.Errorf("Insert() = %+v, want 1 block and size 0", e)
	}

	var out bytes.Buffer
	n, err := img.Extract("/empty", &out)
	if err != nil || n != 0 {
		t.Errorf("Extract() = %d, %v", n, err)
	}
}

func TestImage_Extract_Contiguous(t *testing.T) {
	content := make([]byte, 600)
	for i := range content {
		content[i] = byte(i % 251)
	}

	// Data stored in adjacent blocks without any FAT update, the way the
	// C diskput tool writes it. Entry 10 stays free or ends the chain early.
	for _, entry := range []uint32{FATFree, FATEOF} {
		t.Run(fmt.Sprintf("entry %#x", entry), func(t *testing.T) {
			img, _ := newTestImage(t, testGeometry)
			if err := img.fat.SetEntry(10, entry); err != nil {
				t.Fatal(err)
			}
			if err := img.store.WriteBlock(10, content[:512]); err != nil {
				t.Fatal(err)
			}
			if err := img.store.WriteBlock(11, content[512:]); err != nil {
				t.Fatal(err)
			}
			e := DirEntry{Status: statusNewFile, StartingBlock: 10, BlockCount: 2, Size: 600, Name: "flat.bin"}
			if err := img.dir.writeEntry(slot{block: img.sb.RootDirStart}, e); err != nil {
				t.Fatal(err)
			}

			var out bytes.Buffer
			n, err := img.Extract("/flat.bin", &out)
			if err != nil || n != 600 {
				t.Fatalf("Extract() = %d, %v", n, err)
			}
			if !bytes.Equal(out.Bytes(), content) {
				t.Error("Extract() returned the wrong bytes")
			}

			p := make([]byte, 100)
			if n, err := img.readAt(10, 600, p, 480); err != nil || n != 100 {
				t.Fatalf("readAt() = %d, %v", n, err)
			}
			if !bytes.Equal(p, content[480:580]) {
				t.Error("readAt() returned the wrong bytes")
			}
		})
	}
}

func TestImage_Extract_PastTheImage(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)
	e := placeFile(t, img, 0, 63, "last", bytes.Repeat([]byte{1}, 512))

	// Claim the file continues after the last block of the image.
	e.Size = 700
	e.BlockCount = 2
	if err := img.dir.writeEntry(slot{block: img.sb.RootDirStart}, e); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	n, err := img.Extract("/last", &out)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Extract() error = %v, want ErrCorrupt", err)
	}
	if n != 512 {
		t.Errorf("Extract() wrote %d bytes before failing, want 512", n)
	}
}

func TestImage_List_ContiguousDirectory(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)

	d := DirEntry{Status: statusNewDirectory, StartingBlock: 20, BlockCount: 2, Size: 1024, Name: "d"}
	if err := img.dir.writeEntry(slot{block: img.sb.RootDirStart}, d); err != nil {
		t.Fatal(err)
	}
	f := DirEntry{Status: statusNewFile, StartingBlock: 30, BlockCount: 1, Size: 3, Name: "in-second-block"}
	if err := img.dir.writeEntry(slot{block: 21, index: 1}, f); err != nil {
		t.Fatal(err)
	}

	entries, err := img.List("/d")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "in-second-block" {
		t.Errorf("List() = %v, want only in-second-block", entries)
	}
}

func TestImage_List_LoopingDirectory(t *testing.T) {
	tests := []struct {
		name   string
		links  map[uint32]uint32
		blocks uint32
	}{
		{name: "self link", links: map[uint32]uint32{20: 20}, blocks: 200000},
		{name: "cycle", links: map[uint32]uint32{20: 30, 30: 20}, blocks: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, _ := newTestImage(t, testGeometry)
			for b, next := range tt.links {
				if err := img.fat.SetEntry(b, next); err != nil {
					t.Fatal(err)
				}
			}
			d := DirEntry{Status: statusNewDirectory, StartingBlock: 20, BlockCount: tt.blocks, Name: "d"}
			if err := img.dir.writeEntry(slot{block: img.sb.RootDirStart}, d); err != nil {
				t.Fatal(err)
			}

			if _, err := img.List("/d"); !errors.Is(err, ErrCorrupt) {
				t.Errorf("List() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestImage_Stat(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)
	buildTree(t, img)

	tests := []struct {
		name    string
		path    string
		wantDir bool
		wantErr error
	}{
		{name: "root", path: "/", wantDir: true},
		{name: "directory", path: "/a/b", wantDir: true},
		{name: "file", path: "/a/b/file.txt"},
		{name: "missing", path: "/a/c", wantErr: ErrNotFound},
		{name: "too deep", path: "/1/2/3/4/5/6/7/8/9/10/11", wantErr: ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := img.Stat(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Stat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if e.Status.IsDir() != tt.wantDir {
				t.Errorf("Stat() = %+v, wantDir %v", e, tt.wantDir)
			}
		})
	}
}

func TestImage_Mkdir(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)

	if _, err := img.Mkdir("/a", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := img.Mkdir("/a", 1); !errors.Is(err, ErrExist) {
		t.Errorf("Mkdir() twice error = %v, want ErrExist", err)
	}
	if _, err := img.Mkdir("/", 1); !errors.Is(err, ErrExist) {
		t.Errorf("Mkdir(/) error = %v, want ErrExist", err)
	}
	if _, err := img.Mkdir("/x/y", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Mkdir() without parent error = %v, want ErrNotFound", err)
	}

	e, err := img.Stat("/a")
	if err != nil {
		t.Fatal(err)
	}
	want := DirEntry{
		Status:        statusNewDirectory,
		StartingBlock: 4,
		BlockCount:    2,
		Size:          1024,
		CreateTime:    NewTimestamp(testNow()),
		ModifyTime:    NewTimestamp(testNow()),
		Name:          "a",
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("Stat() diff (-want +got):\n%s", diff)
	}

	// Both blocks hold slots.
	for i := 0; i < 2*img.sb.entriesPerBlock(); i++ {
		if _, err := img.Mkdir("/a/"+string(rune('a'+i)), 1); err != nil {
			t.Fatalf("Mkdir() #%d error = %v", i, err)
		}
	}
	if _, err := img.Mkdir("/a/full", 1); !errors.Is(err, ErrNoSpace) {
		t.Errorf("Mkdir() in a full directory error = %v, want ErrNoSpace", err)
	}
}

func TestImage_Info(t *testing.T) {
	img, _ := newTestImage(t, testGeometry)
	if _, err := img.Insert(bytes.NewReader(make([]byte, 1500)), "f", 1500, "/"); err != nil {
		t.Fatal(err)
	}

	got, err := img.Info()
	if err != nil {
		t.Fatal(err)
	}
	want := Info{
		Superblock: Superblock{
			Tag:           DefaultTag,
			BlockSize:     512,
			BlockCount:    64,
			FATStart:      1,
			FATBlocks:     1,
			RootDirStart:  2,
			RootDirBlocks: 2,
		},
		FAT: FATStats{Free: 121, Reserved: 4, Allocated: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Info() diff (-want +got):\n%s", diff)
	}
}

func TestNew_Errors(t *testing.T) {
	valid, err := testGeometry.Superblock()
	if err != nil {
		t.Fatal(err)
	}
	badSize := valid
	badSize.BlockSize = 500

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty image", data: nil, wantErr: ErrTruncated},
		{name: "short header", data: valid.Encode()[:20], wantErr: ErrTruncated},
		{name: "image smaller than its block count", data: valid.Encode(), wantErr: ErrTruncated},
		{name: "invalid block size", data: append(badSize.Encode(), make([]byte, 64*512)...), wantErr: ErrInvalidSuperblock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "img", tt.data, 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Open(fs, "img", os.O_RDONLY, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(afero.NewMemMapFs(), "missing.img", os.O_RDONLY, nil)
	if !errors.Is(err, ErrImageOpen) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want ErrImageOpen", err)
	}
}
