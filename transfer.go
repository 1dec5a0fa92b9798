package gosfs

import (
	"fmt"
	"io"

	"github.com/aligator/gosfs/checkpoint"
	"github.com/sirupsen/logrus"
)

// copyOut writes exactly size bytes of the data starting at block start to w.
// Blocks are followed with FAT.Next. The padding of the last block is not copied. On failure w keeps what was
// written so far.
func (img *Image) copyOut(w io.Writer, start, size uint32) (int64, error) {
	bs := uint32(img.sb.BlockSize)
	buf := make([]byte, bs)

	var written int64
	block := start
	for remaining := size; remaining > 0; {
		n := bs
		if remaining < n {
			n = remaining
		}

		if err := img.store.ReadBlockAt(buf[:n], block, 0); err != nil {
			return written, err
		}
		m, err := w.Write(buf[:n])
		written += int64(m)
		if err == nil && uint32(m) != n {
			err = io.ErrShortWrite
		}
		if err != nil {
			return written, checkpoint.Wrap(err, fmt.Errorf("%w: writing block %d to the destination", ErrIO, block))
		}

		remaining -= n
		if remaining == 0 {
			break
		}
		if block, err = img.fat.Next(block); err != nil {
			return written, err
		}
	}

	img.log.WithFields(logrus.Fields{"block": start, "size": size}).Debug("copied data out of the image")
	return written, nil
}

// copyIn stores size bytes from r as a new file called name in dir.
//
// The steps are: find an empty slot, allocate the first block, link the chain,
// write the entry and finally stream the data block by block. A failure
// leaves the steps done so far in place.
func (img *Image) copyIn(r io.Reader, name string, size uint32, dir dirLocation) (DirEntry, error) {
	s, err := img.dir.findEmptySlot(dir)
	if err != nil {
		return DirEntry{}, err
	}

	start, err := img.fat.FindFreeBlock()
	if err != nil {
		return DirEntry{}, err
	}

	now := NewTimestamp(img.now())
	e := DirEntry{
		Status:        statusNewFile,
		StartingBlock: start,
		BlockCount:    img.sb.blocksFor(size),
		Size:          size,
		CreateTime:    now,
		ModifyTime:    now,
		Name:          name,
	}

	if err := img.fat.ExtendChain(start, e.BlockCount); err != nil {
		return DirEntry{}, err
	}
	if err := img.dir.writeEntry(s, e); err != nil {
		return DirEntry{}, err
	}

	chain, err := img.fat.Chain(start, e.BlockCount)
	if err != nil {
		return DirEntry{}, err
	}

	bs := uint32(img.sb.BlockSize)
	buf := make([]byte, bs)
	remaining := size
	for _, block := range chain {
		if remaining == 0 {
			break
		}
		n := bs
		if remaining < n {
			n = remaining
		}

		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return e, checkpoint.Wrap(err, fmt.Errorf("%w: reading %d bytes of %q for block %d", ErrIO, n, name, block))
		}
		if err := img.store.WriteBlock(block, buf[:n]); err != nil {
			return e, err
		}
		remaining -= n
	}

	img.log.WithFields(logrus.Fields{
		"name":  name,
		"block": start,
		"count": e.BlockCount,
		"size":  size,
	}).Debug("copied data into the image")
	return e, nil
}

// readAt fills p with the data starting at block start, beginning at off.
// It never reads past size and returns io.EOF if p could not be filled.
func (img *Image) readAt(start, size uint32, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, checkpoint.Wrap(ErrIO, fmt.Errorf("negative offset %d", off))
	}
	if off >= int64(size) {
		return 0, io.EOF
	}

	bs := int64(img.sb.BlockSize)
	block := start
	for i := int64(0); i < off/bs; i++ {
		next, err := img.fat.Next(block)
		if err != nil {
			return 0, err
		}
		block = next
	}

	n := 0
	pos := off
	for n < len(p) && pos < int64(size) {
		inBlock := int(pos % bs)
		chunk := int(bs) - inBlock
		if rest := int(int64(size) - pos); rest < chunk {
			chunk = rest
		}
		if rest := len(p) - n; rest < chunk {
			chunk = rest
		}

		if err := img.store.ReadBlockAt(p[n:n+chunk], block, inBlock); err != nil {
			return n, err
		}
		n += chunk
		pos += int64(chunk)

		if n < len(p) && pos < int64(size) && pos%bs == 0 {
			next, err := img.fat.Next(block)
			if err != nil {
				return n, err
			}
			block = next
		}
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
