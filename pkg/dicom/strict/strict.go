// Package strict decodes DICOM files with a conformant parser and maps the
// result onto the same allow-listed FileMetadata as the tolerant reader.
// It is slower and rejects malformed input, which makes it useful for
// validating files the tolerant reader only partially understood.
package strict

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jpfielding/dicometa/pkg/dicom"
	"github.com/jpfielding/dicometa/pkg/dicom/tag"
	dcm "github.com/suyashkumar/dicom"
)

// ErrPanic wraps a panic raised inside the decoder
var ErrPanic = errors.New("dicom decoder panicked")

// ParseFile decodes buf and returns the allow-listed metadata. Pixel data is
// not read.
func ParseFile(buf []byte) (fm dicom.FileMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	ds, err := dcm.Parse(bytes.NewReader(buf), int64(len(buf)), nil, dcm.SkipPixelData())
	if err != nil {
		return fm, fmt.Errorf("parsing dicom: %w", err)
	}

	fm.RawTags = map[string]string{}
	for _, elem := range ds.Elements {
		if elem == nil || elem.Value == nil {
			continue
		}
		t := tag.New(elem.Tag.Group, elem.Tag.Element)
		if t.LookupName() == "" {
			continue
		}
		fm.SetTag(t.Key(), textValue(elem))
	}
	return fm, nil
}

// textValue renders string values joined by the DICOM multi-value delimiter
func textValue(elem *dcm.Element) string {
	switch v := elem.Value.GetValue().(type) {
	case []string:
		return strings.TrimSpace(strings.ReplaceAll(strings.Join(v, `\`), "\x00", ""))
	case []int:
		if len(v) > 0 {
			return fmt.Sprint(v[0])
		}
	}
	return ""
}
