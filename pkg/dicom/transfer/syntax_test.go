package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntax(t *testing.T) {
	assert.Equal(t, "Explicit VR Little Endian", FromUID("1.2.840.10008.1.2.1").Name())
	assert.Equal(t, "unknown", FromUID("").Name())
	assert.Equal(t, "1.2.3.4", FromUID("1.2.3.4").Name())

	assert.False(t, ImplicitVRLittleEndian.IsExplicitVR())
	assert.True(t, ExplicitVRLittleEndian.IsExplicitVR())
	assert.False(t, ExplicitVRLittleEndian.IsEncapsulated())
	assert.True(t, JPEGLSLossless.IsEncapsulated())
}
