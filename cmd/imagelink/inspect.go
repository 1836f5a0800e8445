package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/imagelink/pkg/config"
	"github.com/lucas-albers-lz4/imagelink/pkg/exitcodes"
	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	"github.com/lucas-albers-lz4/imagelink/pkg/layout"
	log "github.com/lucas-albers-lz4/imagelink/pkg/log"
	"github.com/lucas-albers-lz4/imagelink/pkg/metadata"
)

// InspectResult is what inspect reports for one file.
type InspectResult struct {
	File    string         `yaml:"file"`
	Decoder string         `yaml:"decoder,omitempty"`
	Field   string         `yaml:"field,omitempty"`
	Value   string         `yaml:"value,omitempty"`
	Target  string         `yaml:"target,omitempty"`
	Error   string         `yaml:"error,omitempty"`
	Tags    []metadata.Tag `yaml:"tags,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Show the metadata imagelink reads from files",
		Long: `Decode each file's EXIF metadata and print all tags, the date field that
would be used and the link path it would produce.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, a, args)
		},
	}
	cmd.Flags().String(flagOutputFormat, OutputFormatText, "output format (text or yaml)")
	cmd.Flags().String(config.KeyLayout, layout.DefaultTemplate, "link path template used for the target preview")
	cmd.Flags().StringSlice(config.KeyFields, metadata.DefaultDateFields, "date fields to try, in order")
	return cmd
}

func runInspect(cmd *cobra.Command, a *app, args []string) error {
	format, err := cmd.Flags().GetString(flagOutputFormat)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
	}
	if format != OutputFormatText && format != OutputFormatYAML {
		return exitcodes.New(exitcodes.ExitInputConfigurationError, "unsupported output format %q (want %s or %s)", format, OutputFormatText, OutputFormatYAML)
	}

	lay, err := layout.New(a.cfg.Layout)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInvalidLayout, Err: err}
	}
	fields := metadata.DefaultDateFields
	if len(a.cfg.Fields) > 0 {
		if fields, err = metadata.NormalizeFields(a.cfg.Fields); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitInvalidFieldList, Err: err}
		}
	}

	fsys := a.fileSystem()
	decoder := metadata.Default()
	results := make([]InspectResult, 0, len(args))
	failed := 0
	for _, file := range args {
		res := inspectFile(fsys, decoder, lay, fields, a.workDir, file)
		if res.Error != "" {
			failed++
			log.Warn("Inspect failed", "file", file, "error", res.Error)
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if format == OutputFormatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: fmt.Errorf("failed to encode YAML: %w", err)}
		}
		if err := enc.Close(); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
		}
	} else {
		for _, r := range results {
			writeInspectText(out, r)
		}
	}

	if failed > 0 {
		return exitcodes.New(exitcodes.ExitMetadataError, "%d of %d files could not be inspected", failed, len(args))
	}
	return nil
}

func inspectFile(fsys fileutil.FS, decoder metadata.Decoder, lay *layout.Layout, fields []string, workDir, file string) InspectResult {
	res := InspectResult{File: file}
	path := file
	if workDir != "" && !filepath.IsAbs(file) {
		path = filepath.Join(workDir, file)
	}
	f, err := fsys.Open(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Debug("Failed to close input", "file", file, "error", cerr)
		}
	}()

	rec, err := decoder.Decode(f)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Decoder = rec.Decoder
	res.Tags = rec.Tags

	tag, err := metadata.FirstOf(rec, fields)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Field, res.Value = tag.Name, tag.Value
	target, err := lay.Target(tag.Value, file)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Target = target
	return res
}

func writeInspectText(w io.Writer, r InspectResult) {
	fmt.Fprintf(w, "%s:\n", r.File)
	if r.Decoder != "" {
		fmt.Fprintf(w, "  decoder: %s\n", r.Decoder)
	}
	for _, t := range r.Tags {
		if t.IFD != "" {
			fmt.Fprintf(w, "  %-28s %-10s %s\n", t.Name, t.IFD, t.Value)
		} else {
			fmt.Fprintf(w, "  %-28s %s\n", t.Name, t.Value)
		}
	}
	if r.Field != "" {
		fmt.Fprintf(w, "  => %s = %s\n", r.Field, r.Value)
	}
	if r.Target != "" {
		fmt.Fprintf(w, "  => target: %s\n", r.Target)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}
}
