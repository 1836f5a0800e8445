// Package main implements the imagelink command-line interface.
//
// imagelink reads the capture time embedded in image files and builds a
// date-organized tree of symbolic links (YYYY/MM/DD/HH-MM-SS-name) pointing
// back at the originals. The files themselves are never moved or modified.
//
// Commands:
//   - imagelink FILE...: create the link tree (the default action)
//   - inspect: print the metadata imagelink sees in a file
//   - version: print build information
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/imagelink/pkg/config"
	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
	"github.com/lucas-albers-lz4/imagelink/pkg/exitcodes"
	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	log "github.com/lucas-albers-lz4/imagelink/pkg/log"
)

// AppFs defines the filesystem interface to use, allows mocking in tests.
var AppFs afero.Fs = afero.NewOsFs()

// SetFs replaces the current filesystem with the provided one and returns a function to restore it.
// This is primarily used for testing.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

// app carries the state shared by all commands of one invocation.
type app struct {
	fs      afero.Fs
	workDir string
	home    string

	cfgFile      string
	debugEnabled bool

	v   *viper.Viper
	cfg *config.Config
}

func newApp() *app {
	a := &app{fs: AppFs}
	if wd, err := os.Getwd(); err == nil {
		a.workDir = wd
	}
	if home, err := os.UserHomeDir(); err == nil {
		a.home = home
	}
	return a
}

func (a *app) fileSystem() fileutil.FS {
	return fileutil.NewAferoFS(a.fs)
}

// newRootCmd builds the command tree. The root command itself runs the link
// action so that `imagelink -n *.jpg` works like the classic tool.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imagelink [flags] FILE...",
		Short: "Organize photos into a dated symlink tree using their EXIF timestamps",
		Long: `imagelink reads the capture date of each image from its EXIF metadata
(DateTimeDigitized, then DateTimeOriginal, then DateTime) and creates a symbolic
link named YYYY/MM/DD/HH-MM-SS-<file> pointing back at the original.

Files can be given as arguments, in list files (--list) or, with --recursive,
as directories. Use --no-execute to print the mkdir/ln commands instead.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, a, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, flagConfig, "", "config file (default is $HOME/.imagelink.yaml, then ./.imagelink.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.debugEnabled, flagDebug, false, "enable debug logging")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "set log level (debug, info, warn, error)")
	addLinkFlags(rootCmd)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
	})

	rootCmd.AddCommand(newInspectCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// setup loads configuration and applies logging settings before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	if a.debugEnabled {
		debug.Enabled = true
		debug.Printf("--debug flag enabled debug logging.")
	}

	a.v = config.New(a.fs)
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
	}

	path, err := config.FindFile(a.fs, a.cfgFile, a.home, a.workDir)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
	}
	if path != "" {
		if err := config.ReadFile(a.v, a.fs, path); err != nil {
			var ve *config.ValidationError
			if errors.As(err, &ve) {
				return &exitcodes.ExitCodeError{Code: exitcodes.ExitConfigValidationError, Err: err}
			}
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
		}
	}
	a.cfg = config.Resolve(a.v)

	level := log.LevelInfo
	if a.debugEnabled || debug.Enabled {
		level = log.LevelDebug
	} else if a.cfg.LogLevel != "" {
		parsed, err := log.ParseLevel(a.cfg.LogLevel)
		if err != nil {
			log.Warnf("Invalid log level specified: '%s'. Using default: %s. Error: %v", a.cfg.LogLevel, level, err)
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)

	debug.Printf("Effective log level set to %s", level)
	if a.cfg.File != "" {
		debug.Printf("Using config file %s", a.cfg.File)
	}
	debug.DumpValue("Resolved config", *a.cfg)
	return nil
}

// Execute builds the command tree and runs it with args.
func Execute(ctx context.Context, args []string) error {
	rootCmd := newRootCmd(newApp())
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}

// rootCause drops the exit code decoration for display.
func rootCause(err error) error {
	var exitErr *exitcodes.ExitCodeError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		return exitErr.Err
	}
	return err
}
