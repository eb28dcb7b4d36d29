package vr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		in     []byte
		want   VR
		wantOK bool
	}{
		{[]byte("PN"), PN, true},
		{[]byte("OBxx"), OB, true},
		{[]byte("ZZ"), VR("ZZ"), true}, // shape only, not a dictionary check
		{[]byte("pn"), "", false},
		{[]byte{0x0A, 0x00}, "", false},
		{[]byte("P"), "", false},
		{nil, "", false},
		{[]byte("P1"), "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, ok := Sniff(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsExplicitLength(t *testing.T) {
	for _, v := range []VR{OB, OW, OF, SQ, UN, UC, UR, UT} {
		assert.False(t, v.IsExplicitLength(), "%s uses a 4-byte length", v)
	}
	for _, v := range []VR{PN, DA, TM, CS, LO, SH, UI, US, VR("XX")} {
		assert.True(t, v.IsExplicitLength(), "%s uses a 2-byte length", v)
	}
}
