package gosfs

import (
	"github.com/spf13/afero"
)

// NewIOFS returns img as io/fs.FS. It just wraps the afero adapter, so all
// restrictions of Fs apply.
func NewIOFS(img *Image) afero.IOFS {
	return afero.NewIOFS(NewFs(img))
}
