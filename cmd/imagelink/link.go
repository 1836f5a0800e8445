package main

import (
	"errors"
	"fmt"
	"io"

	"al.essio.dev/pkg/shellescape"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lucas-albers-lz4/imagelink/pkg/config"
	"github.com/lucas-albers-lz4/imagelink/pkg/exitcodes"
	"github.com/lucas-albers-lz4/imagelink/pkg/inputs"
	"github.com/lucas-albers-lz4/imagelink/pkg/layout"
	"github.com/lucas-albers-lz4/imagelink/pkg/linker"
	log "github.com/lucas-albers-lz4/imagelink/pkg/log"
	"github.com/lucas-albers-lz4/imagelink/pkg/metadata"
	"github.com/lucas-albers-lz4/imagelink/pkg/metrics"
)

var printer = message.NewPrinter(language.English)

func addLinkFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayP(config.KeyList, "l", nil, "read file names from `FILE`, one per line (repeatable)")
	f.StringP(config.KeyBase, "b", "", "path inserted before each file name in link sources")
	f.BoolP(config.KeyNoExecute, "n", false, "print the mkdir/ln commands instead of running them")
	f.StringP(config.KeyOutput, "o", "", "root directory of the link tree (default: current directory)")
	f.String(config.KeyLayout, layout.DefaultTemplate, "link path template; placeholders $y $m $d $H $M $S")
	f.StringSlice(config.KeyFields, metadata.DefaultDateFields, "date fields to try, in order")
	f.Int64(config.KeyMinSize, linker.DefaultMinSize, "skip files smaller than this many bytes (0 disables)")
	f.Bool(config.KeyAbsolute, false, "make link sources absolute paths")
	f.Bool(config.KeyForce, false, "replace existing entries at the link path")
	f.BoolP(config.KeyRecursive, "r", false, "descend into directory arguments")
	f.StringArray(config.KeyInclude, inputs.DefaultInclude, "doublestar pattern selecting files in directories (repeatable)")
	f.String(config.KeyMetricsFile, "", "write Prometheus textfile metrics to this path after the run")
}

func runLink(cmd *cobra.Command, a *app, args []string) error {
	cfg := a.cfg
	fsys := a.fileSystem()

	lay, err := layout.New(cfg.Layout)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInvalidLayout, Err: err}
	}

	fields := metadata.DefaultDateFields
	if len(cfg.Fields) > 0 {
		if fields, err = metadata.NormalizeFields(cfg.Fields); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitInvalidFieldList, Err: err}
		}
	}

	collected, err := inputs.Collect(fsys, inputs.Options{
		Files:     args,
		Lists:     cfg.List,
		Recursive: cfg.Recursive,
		Include:   cfg.Include,
		WorkDir:   a.workDir,
	})
	if err != nil {
		var lfe *inputs.ListFileError
		if errors.As(err, &lfe) {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitListFileError, Err: err}
		}
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
	}
	if len(collected.Files) == 0 {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitNoInputFiles,
			Err:  errors.New("no input files given (pass files, --list or a directory with --recursive)"),
		}
	}

	lk, err := linker.New(fsys, metadata.Default(), linker.Options{
		OutputRoot: cfg.Output,
		Base:       cfg.Base,
		WorkDir:    a.workDir,
		Layout:     lay,
		Fields:     fields,
		MinSize:    cfg.MinSize,
		DryRun:     cfg.NoExecute,
		Absolute:   cfg.Absolute,
		Force:      cfg.Force,
	})
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
	}

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		outcomes := make([]string, 0, len(linker.Outcomes))
		for _, o := range linker.Outcomes {
			outcomes = append(outcomes, string(o))
		}
		rec = metrics.NewRecorder(outcomes...)
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	sum, runErr := lk.Run(cmd.Context(), collected.Files, func(r linker.Result) {
		reportResult(stdout, stderr, r, cfg.NoExecute)
		if rec != nil {
			rec.Observe(string(r.Outcome))
		}
	})
	printSummary(stderr, sum, len(collected.Skipped), cfg.NoExecute)

	if rec != nil {
		rec.Finish()
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
		}
		log.Debug("Wrote metrics", "path", cfg.MetricsFile)
	}

	if runErr != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitGeneralRuntimeError, Err: fmt.Errorf("run aborted: %w", runErr)}
	}
	return failureError(sum)
}

// reportResult prints dry-run commands to stdout and per-file errors to stderr.
func reportResult(stdout, stderr io.Writer, r linker.Result, dryRun bool) {
	if dryRun && r.CreatedDir != "" {
		fmt.Fprintf(stdout, "mkdir -p %s\n", shellescape.Quote(r.CreatedDir))
	}
	switch r.Outcome {
	case linker.OutcomePlanned:
		fmt.Fprintf(stdout, "ln -s %s %s\n", shellescape.Quote(r.Source), shellescape.Quote(r.Link))
	case linker.OutcomeFailed:
		fmt.Fprintf(stderr, "Error: %v\n", r.Err)
	}
}

func printSummary(w io.Writer, sum *linker.Summary, skippedInputs int, dryRun bool) {
	skipped := sum.Count(linker.OutcomeSkipped) + skippedInputs
	failed := sum.Count(linker.OutcomeFailed)
	if dryRun {
		printer.Fprintf(w, "Planned %d links, %d skipped, %d failed\n", sum.Count(linker.OutcomePlanned), skipped, failed)
		return
	}
	printer.Fprintf(w, "Linked %d files, %d skipped, %d failed\n", sum.Count(linker.OutcomeLinked), skipped, failed)
}

// failureError maps failed files to an exit code: ExitMetadataError when
// every file failed because of its metadata, ExitPartialFailure otherwise.
func failureError(sum *linker.Summary) error {
	failed := sum.Failed()
	if len(failed) == 0 {
		return nil
	}
	code := exitcodes.ExitPartialFailure
	if len(failed) == sum.Total() && allMetadataErrors(failed) {
		code = exitcodes.ExitMetadataError
	}
	return exitcodes.New(code, "%d of %d files could not be linked", len(failed), sum.Total())
}

func allMetadataErrors(results []linker.Result) bool {
	for _, r := range results {
		var pe *linker.ParseError
		if !errors.As(r.Err, &pe) && !errors.Is(r.Err, metadata.ErrMissingField) && !errors.Is(r.Err, layout.ErrMalformedTimestamp) {
			return false
		}
	}
	return true
}
