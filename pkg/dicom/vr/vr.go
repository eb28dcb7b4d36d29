// Package vr defines DICOM Value Representations
package vr

// VR represents a DICOM Value Representation
type VR string

// Standard DICOM Value Representations
const (
	AE VR = "AE" // Application Entity
	AS VR = "AS" // Age String
	CS VR = "CS" // Code String
	DA VR = "DA" // Date
	DS VR = "DS" // Decimal String
	DT VR = "DT" // DateTime
	IS VR = "IS" // Integer String
	LO VR = "LO" // Long String
	LT VR = "LT" // Long Text
	OB VR = "OB" // Other Byte String
	OF VR = "OF" // Other Float String
	OW VR = "OW" // Other Word String
	PN VR = "PN" // Person Name
	SH VR = "SH" // Short String
	SQ VR = "SQ" // Sequence of Items
	ST VR = "ST" // Short Text
	TM VR = "TM" // Time
	UC VR = "UC" // Unlimited Characters
	UI VR = "UI" // Unique Identifier
	UN VR = "UN" // Unknown
	UR VR = "UR" // Universal Resource Identifier
	US VR = "US" // Unsigned Short
	UT VR = "UT" // Unlimited Text
)

// UndefinedLength marks sequences and items whose length is not encoded
const UndefinedLength uint32 = 0xFFFFFFFF

// Sniff reports whether b starts with something shaped like a VR code:
// exactly two uppercase ASCII letters.
func Sniff(b []byte) (VR, bool) {
	if len(b) < 2 {
		return "", false
	}
	if !isUpper(b[0]) || !isUpper(b[1]) {
		return "", false
	}
	return VR(b[:2]), true
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// IsExplicitLength returns true if the VR uses explicit 2-byte length in explicit VR.
// Otherwise it uses 2 reserved bytes followed by a 4-byte length.
func (v VR) IsExplicitLength() bool {
	switch v {
	case OB, OW, OF, SQ, UN, UC, UR, UT:
		return false
	default:
		return true
	}
}
