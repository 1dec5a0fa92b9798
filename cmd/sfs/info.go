package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "print the superblock and FAT usage of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.openImage(args[0], false)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			info, err := img.Info()
			if err != nil {
				return errors.Wrapf(err, "error reading the FAT of %s", args[0])
			}

			out := cmd.OutOrStdout()
			sb := info.Superblock
			fmt.Fprintln(out, "Super block information")
			fmt.Fprintf(out, "Block size: %d\n", sb.BlockSize)
			fmt.Fprintf(out, "Block count: %d\n", sb.BlockCount)
			fmt.Fprintf(out, "FAT starts: %d\n", sb.FATStart)
			fmt.Fprintf(out, "FAT blocks: %d\n", sb.FATBlocks)
			fmt.Fprintf(out, "Root directory starts: %d\n", sb.RootDirStart)
			fmt.Fprintf(out, "Root directory blocks: %d\n", sb.RootDirBlocks)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "FAT information")
			fmt.Fprintf(out, "Free blocks: %d\n", info.FAT.Free)
			fmt.Fprintf(out, "Reserved blocks: %d\n", info.FAT.Reserved)
			fmt.Fprintf(out, "Allocated blocks: %d\n", info.FAT.Allocated)
			return nil
		},
	}
}
