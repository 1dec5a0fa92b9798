package main

import (
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func putCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "put <image> <source> [directory]",
		Short: "copy a host file into a directory of an image",
		Long: `Copy a host file into a directory of an image.
The directory defaults to the root directory. The new entry is named like the
source file unless --name is given.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[1]
			dir := "/"
			if len(args) == 3 {
				dir = args[2]
			}
			entryName := name
			if entryName == "" {
				entryName = filepath.Base(src)
			}

			f, err := a.fs.Open(src)
			if err != nil {
				return errors.Wrapf(err, "error opening %s", src)
			}
			defer f.Close()

			stat, err := f.Stat()
			if err != nil {
				return errors.Wrapf(err, "error reading the size of %s", src)
			}
			if stat.IsDir() {
				return errors.Errorf("%s is a directory", src)
			}

			img, err := a.openImage(args[0], true)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			e, err := img.Insert(f, entryName, stat.Size(), dir)
			if err != nil {
				return errors.Wrapf(err, "error adding %s to %s", src, dir)
			}

			log.Infof("Added %s (%d bytes, %d blocks starting at %d)", e.Name, e.Size, e.BlockCount, e.StartingBlock)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the new entry, defaults to the base name of the source")

	return cmd
}
