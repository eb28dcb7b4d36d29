package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jpfielding/dicometa/pkg/logging"
	"github.com/spf13/cobra"
)

// logCloser releases the rotating log file, if one was opened
var logCloser io.Closer = io.NopCloser(nil)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dicometa",
		Short: "a CLI to extract classification metadata from DICOM uploads",
		Long:  "Reads DICOM files, DICOMDIR indexes and upload batches and prints the metadata used to classify them. The serve command runs the same extraction behind an HTTP API.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(ctx, cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logCloser.Close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
		SilenceUsage: true,
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewFileCmd(ctx),
		NewDicomDirCmd(ctx),
		NewPackageCmd(ctx),
		NewServeCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.Bool("log-json", false, "Log as json")
	pf.String("log-file", "", "Also write logs to this size rotated file")
	return cmd
}

// configureLogging installs the default logger; logs go to stderr so command
// output on stdout stays parseable
func configureLogging(ctx context.Context, cmd *cobra.Command) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	asJSON, _ := cmd.Flags().GetBool("log-json")
	logFile, _ := cmd.Flags().GetString("log-file")

	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
	if err != nil {
		level = slog.LevelInfo
	}
	out, closer := logging.Output(os.Stderr, logFile)
	logCloser = closer
	slog.SetDefault(logging.Logger(out, asJSON, level))

	if err != nil {
		slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", err)
	}
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}
