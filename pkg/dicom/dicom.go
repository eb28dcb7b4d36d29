// Package dicom extracts classification metadata from DICOM files.
//
// It is not a conformant DICOM decoder. The element walk keeps a small
// allow-list of header tags, sniffs explicit/implicit VR per element and
// stops quietly on anything it does not understand. DICOMDIR files are
// searched as text.
//
// Basic usage:
//
//	fm := dicom.ParseFile(buf)
//	fmt.Println(fm.PatientName, fm.StudyDate)
//
//	pm := dicom.ExtractPackage([]dicom.File{{Name: "a.dcm", Data: buf}})
//	fmt.Println(pm.Summary)
package dicom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpfielding/dicometa/pkg/dicom/transfer"
)

// ReadFile reads and parses a DICOM file from disk
func ReadFile(path string) (FileMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("reading file: %w", err)
	}
	return ParseFile(data), nil
}

// ReadDir loads the regular files of a directory as a batch, in name order.
// Subdirectories are descended into when recursive is set.
func ReadDir(dir string, recursive bool) ([]File, error) {
	var files []File
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = d.Name()
		}
		files = append(files, File{Name: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

// TransferSyntax returns the transfer syntax recorded in the file meta group
func (fm FileMetadata) TransferSyntax() transfer.Syntax {
	return transfer.FromUID(fm.RawTags["TransferSyntaxUID"])
}
