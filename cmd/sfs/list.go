package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <image> [directory]",
		Aliases: []string{"ls"},
		Short:   "list a directory of an image",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 2 {
				dir = args[1]
			}

			img, err := a.openImage(args[0], false)
			if err != nil {
				return errors.Wrapf(err, "error opening file system image %s", args[0])
			}
			defer img.Close()

			entries, err := img.List(dir)
			if err != nil {
				return errors.Wrapf(err, "error listing %s", dir)
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				kind := 'D'
				if e.Status.IsFile() {
					kind = 'F'
				}
				m := e.ModifyTime
				fmt.Fprintf(out, "%c %10d %30s %04d/%02d/%02d %02d:%02d:%02d\n",
					kind, e.Size, e.Name, m.Year, m.Month, m.Day, m.Hour, m.Minute, m.Second)
			}
			return nil
		},
	}
}
