package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jpfielding/dicometa/internal/config"
	"github.com/jpfielding/dicometa/internal/service"
	"github.com/jpfielding/dicometa/internal/storage"
	"github.com/jpfielding/dicometa/pkg/dicom"
	"github.com/spf13/cobra"
)

// NewPackageCmd aggregates a batch read from a directory or a bucket prefix
func NewPackageCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package [dir]",
		Short: "upload batch metadata",
		Long:  "Aggregates every file of a directory, or every object under a bucket prefix, into one package record. A DICOMDIR in the batch is preferred over the individual files. Bucket credentials come from the MINIO_* environment.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, _ := cmd.Flags().GetString("bucket")
			files, err := loadBatch(ctx, cmd, args, bucket)
			if err != nil {
				return err
			}
			slog.DebugContext(ctx, "loaded batch", "files", len(files))

			res, err := service.NewExtractor(service.Options{}).ExtractPackage(ctx, files)
			if err != nil {
				return err
			}
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Metadata.Summary)
				return err
			default:
				return writeJSON(cmd.OutOrStdout(), res)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "json", "output format (text|json)")
	pf.BoolP("recursive", "r", false, "descend into subdirectories")
	pf.String("bucket", "", "read the batch from this bucket instead of a directory")
	pf.String("prefix", "", "object prefix within --bucket")
	pf.Int64("max-object-mb", 512, "skip bucket objects larger than this")
	return cmd
}

func loadBatch(ctx context.Context, cmd *cobra.Command, args []string, bucket string) ([]dicom.File, error) {
	if bucket == "" {
		if len(args) != 1 {
			return nil, errors.New("a directory argument or --bucket is required")
		}
		recursive, _ := cmd.Flags().GetBool("recursive")
		return dicom.ReadDir(args[0], recursive)
	}
	if len(args) != 0 {
		return nil, errors.New("a directory argument cannot be combined with --bucket")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	b, err := storage.NewMinio(cfg.Minio, bucket)
	if err != nil {
		return nil, err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	maxMB, _ := cmd.Flags().GetInt64("max-object-mb")
	return b.ReadPrefix(ctx, prefix, maxMB<<20)
}
