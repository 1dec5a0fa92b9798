package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aligator/gosfs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func treeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <image> [directory]",
		Short: "recursively list all entries below a directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "/"
			if len(args) == 2 {
				root = args[1]
			}

			img, err := a.openImage(args[0], false)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			out := cmd.OutOrStdout()
			return afero.Walk(gosfs.NewFs(img), root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return errors.Wrapf(err, "error walking %s", path)
				}
				kind := 'F'
				if info.IsDir() {
					kind = 'D'
				}
				fmt.Fprintf(out, "%c %10d %s %s\n", kind, info.Size(), info.ModTime().Format("2006/01/02 15:04:05"), path)
				return nil
			})
		},
	}
}

func catCmd(a *app) *cobra.Command {
	var (
		offset int64
		length int64
	)

	cmd := &cobra.Command{
		Use:   "cat <image> <path>",
		Short: "print a file of an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.openImage(args[0], false)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			f, err := gosfs.NewFs(img).Open(args[1])
			if err != nil {
				return errors.Wrapf(err, "error opening %s", args[1])
			}
			defer f.Close()

			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				return errors.Wrapf(err, "error seeking to %d", offset)
			}

			var r io.Reader = f
			if length >= 0 {
				r = io.LimitReader(f, length)
			}
			if _, err := io.Copy(cmd.OutOrStdout(), r); err != nil {
				return errors.Wrapf(err, "error reading %s", args[1])
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&offset, "offset", 0, "Start printing at this byte offset")
	cmd.Flags().Int64Var(&length, "length", -1, "Print at most this many bytes, -1 prints up to the end")

	return cmd
}
