package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func mkdirCmd(a *app) *cobra.Command {
	var blocks uint32

	cmd := &cobra.Command{
		Use:   "mkdir <image> <path>",
		Short: "create a directory inside an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.openImage(args[0], true)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			e, err := img.Mkdir(args[1], blocks)
			if err != nil {
				return errors.Wrapf(err, "error creating directory %s", args[1])
			}

			log.Infof("Created %s (%d blocks starting at %d)", args[1], e.BlockCount, e.StartingBlock)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&blocks, "blocks", 1, "Number of blocks reserved for the entries of the directory")

	return cmd
}
