package dicom

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/jpfielding/dicometa/pkg/dicom/vr"
)

// stream assembles little endian element streams for tests
type stream struct {
	bytes.Buffer
}

// newStream starts a buffer with a zeroed preamble and the DICM marker
func newStream() *stream {
	s := &stream{}
	s.Write(make([]byte, preambleLength))
	s.WriteString(magic)
	return s
}

func (s *stream) tag(group, element uint16) {
	binary.Write(&s.Buffer, binary.LittleEndian, group)
	binary.Write(&s.Buffer, binary.LittleEndian, element)
}

// explicit writes an explicit VR element, choosing the length layout from the VR
func (s *stream) explicit(group, element uint16, v vr.VR, value []byte) *stream {
	s.tag(group, element)
	s.WriteString(string(v))
	if v.IsExplicitLength() {
		binary.Write(&s.Buffer, binary.LittleEndian, uint16(len(value)))
	} else {
		s.Write([]byte{0, 0})
		binary.Write(&s.Buffer, binary.LittleEndian, uint32(len(value)))
	}
	s.Write(value)
	return s
}

// text writes an explicit VR string element padded to even length
func (s *stream) text(group, element uint16, v vr.VR, value string) *stream {
	if len(value)%2 == 1 {
		value += " "
	}
	return s.explicit(group, element, v, []byte(value))
}

// implicit writes an implicit VR element with a 4-byte length
func (s *stream) implicit(group, element uint16, value []byte) *stream {
	s.tag(group, element)
	binary.Write(&s.Buffer, binary.LittleEndian, uint32(len(value)))
	s.Write(value)
	return s
}

// header writes an explicit VR header that claims length bytes without a value
func (s *stream) header(group, element uint16, v vr.VR, length uint32) *stream {
	s.tag(group, element)
	s.WriteString(string(v))
	if v.IsExplicitLength() {
		binary.Write(&s.Buffer, binary.LittleEndian, uint16(length))
	} else {
		s.Write([]byte{0, 0})
		binary.Write(&s.Buffer, binary.LittleEndian, length)
	}
	return s
}

func (s *stream) raw(b []byte) *stream {
	s.Write(b)
	return s
}

// dirText joins DICOMDIR-like records with binary separators
func dirText(records ...string) []byte {
	return []byte(strings.Join(records, "\x00\x02\x00"))
}
