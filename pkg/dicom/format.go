package dicom

import (
	"strings"
)

// FormatDate rewrites a DICOM DA value YYYYMMDD as YYYY-MM-DD.
// Values that are not exactly 8 characters are returned unchanged.
func FormatDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

// FormatTime rewrites a DICOM TM value HHMMSS[.FFFFFF] as HH:MM:SS.
// Values shorter than 6 characters are returned unchanged.
func FormatTime(s string) string {
	if len(s) < 6 {
		return s
	}
	return s[0:2] + ":" + s[2:4] + ":" + s[4:6]
}

// CleanPersonName turns a PN value like "DOE^JANE^^" into "DOE JANE"
func CleanPersonName(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "^", " ")), " ")
}

// decodeText decodes value bytes as UTF-8 (invalid sequences replaced),
// drops NUL bytes and trims surrounding whitespace.
func decodeText(b []byte) string {
	s := strings.ToValidUTF8(string(b), "�")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// printableASCII keeps only 0x20-0x7E and trims the result
func printableASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// normalizeBodyPart lowercases a body part and drops a region prefix such as "l-"
func normalizeBodyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 2 && s[1] == '-' && s[0] >= 'a' && s[0] <= 'z' {
		s = s[2:]
	}
	return s
}
