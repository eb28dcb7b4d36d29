package tag

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var keyShape = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestKey(t *testing.T) {
	tests := []struct {
		group, element uint16
		want           string
	}{
		{0x0010, 0x0010, "00100010"},
		{0x0008, 0x103E, "0008103E"},
		{0x0000, 0x0000, "00000000"},
		{0xFFFE, 0xE0DD, "FFFEE0DD"},
		{0x7FE0, 0x0010, "7FE00010"},
		{0x000a, 0x00bc, "000A00BC"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.group, tt.element))
			assert.Equal(t, tt.want, New(tt.group, tt.element).Key())
		})
	}
}

func TestKey_AlwaysEightUppercaseHex(t *testing.T) {
	for _, g := range []uint16{0, 1, 0x10, 0xAB, 0x0FFF, 0x1000, 0xFFFF} {
		for _, e := range []uint16{0, 2, 0x3E, 0xE00, 0xBEEF, 0xFFFF} {
			k := Key(g, e)
			assert.Len(t, k, 8)
			assert.Regexp(t, keyShape, k)
		}
	}
}

func TestDictionary(t *testing.T) {
	assert.Equal(t, "PatientName", PatientName.LookupName())
	assert.Equal(t, "ReferringPhysicianName", ReferringPhysicianName.LookupName())
	assert.Equal(t, "", New(0x7FE0, 0x0010).LookupName(), "pixel data is not retained")

	for k := range Dictionary {
		assert.Regexp(t, keyShape, k)
	}
}
