package main

import (
	"errors"
	"os"

	"github.com/aligator/gosfs"
	"github.com/aligator/gosfs/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const flagVerboseName = "verbose"

var defaultLogFormatter = &log.TextFormatter{}

// infoFormatter overrides the default format for Info() log events to
// provide an easier to read output
type infoFormatter struct {
}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

// setupLogging once the flags have been parsed, setup the logging
func setupLogging(quiet bool, verbose int, verboseSet bool) error {
	log.SetFormatter(new(infoFormatter))
	log.SetLevel(log.InfoLevel)
	if quiet && verboseSet && verbose > 0 {
		return errors.New("can't set quiet and verbose flag at the same time")
	}
	switch {
	case quiet, verbose == 0:
		log.SetLevel(log.ErrorLevel)
	case verbose == 1:
		if verboseSet {
			log.SetFormatter(defaultLogFormatter)
		}
		log.SetLevel(log.InfoLevel)
	case verbose == 2:
		log.SetFormatter(defaultLogFormatter)
		log.SetLevel(log.DebugLevel)
	case verbose == 3:
		log.SetFormatter(defaultLogFormatter)
		log.SetLevel(log.TraceLevel)
	default:
		return errors.New("verbose flag can only be set to 0, 1, 2 or 3")
	}
	return nil
}

// app is the state shared by all subcommands.
type app struct {
	fs  afero.Fs
	cfg config.Config
}

func (a *app) options() *gosfs.Options {
	return &gosfs.Options{Logger: log.StandardLogger()}
}

// openImage opens the image at name on the host.
func (a *app) openImage(name string, write bool) (*gosfs.Image, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_RDWR
	}
	return gosfs.Open(a.fs, name, flag, a.options())
}

func newCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, cfg: config.Default()}

	var (
		flagQuiet   bool
		flagVerbose int
		flagConfig  string
	)

	cmd := &cobra.Command{
		Use:          "sfs",
		Short:        "inspect and modify SFS disk images",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(a.fs, flagConfig)
			if err != nil {
				return err
			}
			a.cfg = cfg

			verboseSet := cmd.Flag(flagVerboseName).Changed
			verbose := flagVerbose
			if !verboseSet {
				verbose = cfg.Verbose
			}
			return setupLogging(flagQuiet, verbose, verboseSet)
		},
	}

	cmd.AddCommand(infoCmd(a))
	cmd.AddCommand(listCmd(a))
	cmd.AddCommand(getCmd(a))
	cmd.AddCommand(putCmd(a))
	cmd.AddCommand(mkdirCmd(a))
	cmd.AddCommand(formatCmd(a))
	cmd.AddCommand(treeCmd(a))
	cmd.AddCommand(catCmd(a))

	cmd.PersistentFlags().StringVar(&flagConfig, "config", config.Path(), "Path to the config file, overrides env var "+config.EnvPath)
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet execution")
	cmd.PersistentFlags().IntVarP(&flagVerbose, flagVerboseName, "v", 1, "Verbosity of logging: 0 = quiet, 1 = info, 2 = debug, 3 = trace. Default is info or the value of the config file.")

	return cmd
}
