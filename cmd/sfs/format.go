package main

import (
	"os"

	"github.com/aligator/gosfs"
	"github.com/aligator/gosfs/internal/geomflag"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func formatCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "format <image>",
		Short: "create an empty image",
		Long: `Create an empty image.
Flags which are not given are taken from the format section of the config file.`,
		Args: cobra.ExactArgs(1),
	}
	geometry := geomflag.RegisterPflags(cmd.Flags())
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing image")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		g := geometry.Geometry(a.cfg.Format.Geometry())
		if err := g.Validate(); err != nil {
			return errors.Wrap(err, "invalid geometry")
		}

		flag := os.O_RDWR | os.O_CREATE | os.O_TRUNC
		if !force {
			flag |= os.O_EXCL
		}
		f, err := a.fs.OpenFile(args[0], flag, 0644)
		if err != nil {
			return errors.Wrapf(err, "error creating %s", args[0])
		}

		err = gosfs.Format(f, g, a.options())
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return errors.Wrapf(err, "error formatting %s", args[0])
		}

		log.Infof("Formatted %s with %d blocks of %d bytes", args[0], g.BlockCount, g.BlockSize)
		return nil
	}

	return cmd
}
