package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/imagelink/pkg/exitcodes"
	"github.com/lucas-albers-lz4/imagelink/pkg/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString(flagOutputFormat)
			if err != nil {
				return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
			}
			minimum, err := cmd.Flags().GetString(flagRequire)
			if err != nil {
				return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
			}

			info := version.Get()
			switch format {
			case OutputFormatText:
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
			case OutputFormatYAML:
				out, err := yaml.Marshal(info)
				if err != nil {
					return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
			default:
				return exitcodes.New(exitcodes.ExitInputConfigurationError, "unsupported output format %q", format)
			}

			if minimum != "" {
				if err := version.CheckMinimum(info.Version, minimum); err != nil {
					return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
				}
			}
			return nil
		},
	}
	cmd.Flags().String(flagOutputFormat, OutputFormatText, "output format (text or yaml)")
	cmd.Flags().String(flagRequire, "", "fail unless this binary is at least the given semantic version")
	return cmd
}
