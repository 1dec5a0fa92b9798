package main

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <image> <path> <destination>",
		Short: "copy a file out of an image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[1], args[2]

			img, err := a.openImage(args[0], false)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			// Resolve first, so a missing file leaves no empty destination behind.
			e, err := img.Stat(src)
			if err != nil {
				return errors.Wrapf(err, "error looking up %s", src)
			}
			if !e.Status.IsFile() {
				return errors.Errorf("%s is a directory", src)
			}

			f, err := a.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return errors.Wrapf(err, "error creating %s", dst)
			}

			n, err := img.Extract(src, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return errors.Wrapf(err, "error copying %s to %s", src, dst)
			}

			log.Infof("Copied %d bytes from %s to %s", n, src, dst)
			return nil
		},
	}
}
