// Package geomflag registers the flags describing the layout of a new image.
package geomflag

import (
	"github.com/aligator/gosfs"
	"github.com/spf13/pflag"
)

// Flags holds the geometry flags of one FlagSet.
type Flags struct {
	fs       *pflag.FlagSet
	geometry gosfs.Geometry
}

// RegisterPflags registers the geometry flags on fs.
// The help text shows gosfs.DefaultGeometry, call Geometry to apply other
// defaults for the flags which were not given.
func RegisterPflags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	def := gosfs.DefaultGeometry
	fs.Uint16Var(&f.geometry.BlockSize, "block-size", def.BlockSize, "size of a block in bytes, a power of two of at least 64")
	fs.Uint32Var(&f.geometry.BlockCount, "block-count", def.BlockCount, "number of blocks in the image")
	fs.Uint32Var(&f.geometry.FATBlocks, "fat-blocks", def.FATBlocks, "number of FAT blocks, 0 for the smallest FAT covering all blocks")
	fs.Uint32Var(&f.geometry.RootDirBlocks, "root-dir-blocks", def.RootDirBlocks, "number of root directory blocks")
	return f
}

// Geometry returns the flag values, using defaults for every flag which was
// not set on the command line.
func (f *Flags) Geometry(defaults gosfs.Geometry) gosfs.Geometry {
	g := defaults
	if f.fs.Changed("block-size") {
		g.BlockSize = f.geometry.BlockSize
	}
	if f.fs.Changed("block-count") {
		g.BlockCount = f.geometry.BlockCount
	}
	if f.fs.Changed("fat-blocks") {
		g.FATBlocks = f.geometry.FATBlocks
	}
	if f.fs.Changed("root-dir-blocks") {
		g.RootDirBlocks = f.geometry.RootDirBlocks
	}
	return g
}
