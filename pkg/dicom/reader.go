package dicom

import (
	"encoding/binary"

	"github.com/jpfielding/dicometa/pkg/dicom/tag"
	"github.com/jpfielding/dicometa/pkg/dicom/vr"
)

const (
	preambleLength = 128
	magic          = "DICM"

	// MaxHeaderBytes bounds the tag walk: metadata sits in the header region,
	// pixel data does not need to be visited.
	MaxHeaderBytes = 50000
	// maxValueLength is the largest value decoded as text; longer values are skipped
	maxValueLength = 10000
)

// HasPreamble reports whether buf carries the "DICM" marker at offset 128
func HasPreamble(buf []byte) bool {
	return len(buf) >= preambleLength+len(magic) &&
		string(buf[preambleLength:preambleLength+len(magic)]) == magic
}

// ParseFile extracts metadata from one DICOM file. It never fails: a broken
// element stream yields whatever was decoded before the break, and a buffer
// without the DICM marker goes through the text fallback.
func ParseFile(buf []byte) FileMetadata {
	if !HasPreamble(buf) {
		return parseFallback(buf)
	}
	fm := FileMetadata{RawTags: map[string]string{}}
	walk(buf, func(key string, value []byte) {
		fm.SetTag(key, decodeText(value))
	})
	return fm
}

// walk visits every element value that is small enough to be text metadata.
// It stops at the first short read, at an undefined length, or at MaxHeaderBytes.
func walk(buf []byte, visit func(key string, value []byte)) {
	c := &cursor{buf: buf, pos: preambleLength + len(magic), end: min(len(buf), MaxHeaderBytes)}
	for c.pos < c.end-8 {
		h, ok := c.header()
		if !ok || h.length == vr.UndefinedLength {
			return
		}
		if int64(c.pos)+int64(h.length) > int64(c.end) {
			return
		}
		n := int(h.length)
		if n > 0 && n < maxValueLength {
			visit(h.key, c.buf[c.pos:c.pos+n])
		}
		c.pos += n
	}
}

// header is the decoded tag/VR/length prefix of one element
type header struct {
	key    string
	vr     vr.VR
	length uint32
}

// cursor reads little endian values from a bounded window of buf.
// Every read reports ok=false instead of running past end.
type cursor struct {
	buf []byte
	pos int
	end int
}

func (c *cursor) uint16() (uint16, bool) {
	if c.pos+2 > c.end {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cursor) uint32() (uint32, bool) {
	if c.pos+4 > c.end {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, true
}

func (c *cursor) peek(n int) ([]byte, bool) {
	if c.pos+n > c.end {
		return nil, false
	}
	return c.buf[c.pos : c.pos+n], true
}

func (c *cursor) skip(n int) bool {
	if c.pos+n > c.end {
		return false
	}
	c.pos += n
	return true
}

// header reads a tag and its length. The VR is sniffed per element: two
// uppercase letters after the tag mean explicit VR, anything else means an
// implicit VR 4-byte length.
func (c *cursor) header() (header, bool) {
	group, ok := c.uint16()
	if !ok {
		return header{}, false
	}
	element, ok := c.uint16()
	if !ok {
		return header{}, false
	}
	h := header{key: tag.Key(group, element)}

	if b, ok := c.peek(2); ok {
		if v, explicit := vr.Sniff(b); explicit {
			c.pos += 2
			h.vr = v
			if !v.IsExplicitLength() {
				// OB OW OF SQ UN UC UR UT: 2 reserved bytes, then a 4-byte length
				if !c.skip(2) {
					return h, false
				}
				h.length, ok = c.uint32()
				return h, ok
			}
			var l16 uint16
			l16, ok = c.uint16()
			h.length = uint32(l16)
			return h, ok
		}
	}

	h.length, ok = c.uint32()
	return h, ok
}

// SetTag stores a decoded value for an allow-listed tag key, applying the
// person name, date and time rewrites to promoted fields. It reports whether
// the value was kept.
func (fm *FileMetadata) SetTag(key, value string) bool {
	name, ok := tag.Dictionary[key]
	if !ok || value == "" {
		return false
	}

	switch name {
	case "PatientName", "ReferringPhysicianName":
		value = CleanPersonName(value)
	case "PatientBirthDate", "StudyDate":
		value = FormatDate(value)
	case "StudyTime":
		value = FormatTime(value)
	}
	if value == "" {
		return false
	}

	switch name {
	case "PatientName":
		fm.PatientName = value
	case "PatientID":
		fm.PatientID = value
	case "PatientBirthDate":
		fm.PatientBirthDate = value
	case "PatientSex":
		fm.PatientSex = value
	case "StudyDate":
		fm.StudyDate = value
	case "StudyTime":
		fm.StudyTime = value
	case "StudyDescription":
		fm.StudyDescription = value
	case "SeriesDescription":
		fm.SeriesDescription = value
	case "ReferringPhysicianName":
		fm.ReferringPhysician = value
	case "InstitutionName":
		fm.Institution = value
	case "Modality":
		fm.Modality = value
	case "BodyPartExamined":
		fm.BodyPartExamined = value
	case "Manufacturer":
		fm.Manufacturer = value
	}

	if fm.RawTags == nil {
		fm.RawTags = map[string]string{}
	}
	fm.RawTags[name] = value
	return true
}
