package dicom

import (
	"regexp"
	"strings"
)

// fallbackScanBytes is how much of a preamble-less buffer is searched for a date
const fallbackScanBytes = 10000

var anyDate = regexp.MustCompile(`(\d{4})(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])`)

// parseFallback handles vendor exports that carry DICOM-like data without the
// 128 byte preamble. Only a study date can be recovered.
func parseFallback(buf []byte) FileMetadata {
	fm := FileMetadata{RawTags: map[string]string{}}
	head := buf[:min(len(buf), fallbackScanBytes)]
	text := strings.ToValidUTF8(string(head), "�")
	if m := anyDate.FindStringSubmatch(text); m != nil {
		fm.StudyDate = m[1] + "-" + m[2] + "-" + m[3]
	}
	return fm
}
