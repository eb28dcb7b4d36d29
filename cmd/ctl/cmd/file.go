package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/jpfielding/dicometa/pkg/dicom"
	"github.com/jpfielding/dicometa/pkg/dicom/strict"
	"github.com/spf13/cobra"
)

type fileReport struct {
	Path           string             `json:"path"`
	TransferSyntax string             `json:"transferSyntax,omitempty"`
	Metadata       dicom.FileMetadata `json:"metadata"`
	Mismatches     []mismatch         `json:"mismatches,omitempty"`
	StrictError    string             `json:"strictError,omitempty"`
}

// mismatch is a tag the conformant decoder read differently
type mismatch struct {
	Tag    string `json:"tag"`
	Stream string `json:"stream"`
	Strict string `json:"strict"`
}

// NewFileCmd prints the metadata of one DICOM file
func NewFileCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <path|url|->",
		Short: "DICOM file metadata",
		Long:  "Extracts the allow-listed header tags of one DICOM file. With --strict the file is also decoded by a conformant parser and any tag the two read differently is reported.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insecure, _ := cmd.Flags().GetBool("insecure")
			verbose, _ := cmd.Flags().GetBool("verbose")
			data, err := fetch(ctx, args[0], insecure, verbose)
			if err != nil {
				return err
			}

			report := fileReport{Path: args[0], Metadata: dicom.ParseFile(data)}
			if ts := report.Metadata.TransferSyntax(); ts != "" {
				report.TransferSyntax = fmt.Sprintf("%s (%s)", ts, ts.Name())
			}
			if useStrict, _ := cmd.Flags().GetBool("strict"); useStrict {
				ref, err := strict.ParseFile(data)
				if err != nil {
					slog.WarnContext(ctx, "strict decode failed", "path", args[0], "error", err)
					report.StrictError = err.Error()
				} else {
					report.Mismatches = compare(report.Metadata, ref)
				}
			}

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				return writeFileText(cmd.OutOrStdout(), report)
			default:
				return writeJSON(cmd.OutOrStdout(), report)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "json", "output format (text|json)")
	pf.Bool("strict", false, "cross-check with a conformant decoder")
	pf.Bool("insecure", false, "skip TLS verification for https sources")
	pf.BoolP("verbose", "v", false, "dump http request and response headers to stderr")
	return cmd
}

// fetch reads a local path, stdin ("-") or an http(s) url
func fetch(ctx context.Context, uri string, insecure, verbose bool) ([]byte, error) {
	uri = strings.TrimPrefix(uri, "file://")
	switch {
	case uri == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		cl := &http.Client{
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure}},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := cl.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download: %w", err)
		}
		defer resp.Body.Close()
		if verbose {
			reqDump, _ := httputil.DumpRequest(req, false)
			os.Stderr.Write(reqDump)
			resDump, _ := httputil.DumpResponse(resp, false)
			os.Stderr.Write(resDump)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to download %s: %s", uri, resp.Status)
		}
		return io.ReadAll(resp.Body)
	default:
		data, err := os.ReadFile(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return data, nil
	}
}

func compare(stream, ref dicom.FileMetadata) []mismatch {
	keys := make([]string, 0, len(stream.RawTags)+len(ref.RawTags))
	for k := range stream.RawTags {
		keys = append(keys, k)
	}
	for k := range ref.RawTags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	var out []mismatch
	for _, k := range keys {
		if stream.RawTags[k] != ref.RawTags[k] {
			out = append(out, mismatch{Tag: k, Stream: stream.RawTags[k], Strict: ref.RawTags[k]})
		}
	}
	return out
}

func writeFileText(w io.Writer, r fileReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fm := r.Metadata
	rows := [][2]string{
		{"Path", r.Path},
		{"TransferSyntax", r.TransferSyntax},
		{"PatientName", fm.PatientName},
		{"PatientID", fm.PatientID},
		{"PatientBirthDate", fm.PatientBirthDate},
		{"PatientSex", fm.PatientSex},
		{"StudyDate", fm.StudyDate},
		{"StudyTime", fm.StudyTime},
		{"StudyDescription", fm.StudyDescription},
		{"SeriesDescription", fm.SeriesDescription},
		{"ReferringPhysician", fm.ReferringPhysician},
		{"Institution", fm.Institution},
		{"Modality", fm.Modality},
		{"BodyPartExamined", fm.BodyPartExamined},
		{"Manufacturer", fm.Manufacturer},
	}
	for _, row := range rows {
		if row[1] != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
		}
	}
	if r.StrictError != "" {
		fmt.Fprintf(tw, "StrictError:\t%s\n", r.StrictError)
	}
	for _, m := range r.Mismatches {
		fmt.Fprintf(tw, "Mismatch %s:\tstream=%q strict=%q\n", m.Tag, m.Stream, m.Strict)
	}
	return tw.Flush()
}

// NewDicomDirCmd prints the package metadata recovered from a DICOMDIR
func NewDicomDirCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dicomdir <path>",
		Short: "DICOMDIR package metadata",
		Long:  "Searches a DICOMDIR index for patient, study, modality and body part hints. A directory argument is searched for its DICOMDIR.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if st, err := os.Stat(path); err == nil && st.IsDir() {
				path = filepath.Join(path, "DICOMDIR")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to open dicomdir: %w", err)
			}
			pm := dicom.ParseDir(data)
			slog.DebugContext(ctx, "parsed dicomdir", "path", path, "images", pm.ImageCount, "series", pm.SeriesCount)

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), pm.Summary)
				return err
			default:
				return writeJSON(cmd.OutOrStdout(), pm)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "json", "output format (text|json)")
	return cmd
}
