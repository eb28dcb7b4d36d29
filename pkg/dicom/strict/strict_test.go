package strict

import (
	"bytes"
	"testing"

	"github.com/jpfielding/dicometa/pkg/dicom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dcm "github.com/suyashkumar/dicom"
	dtag "github.com/suyashkumar/dicom/pkg/tag"
)

func element(t *testing.T, tg dtag.Tag, data interface{}) *dcm.Element {
	t.Helper()
	elem, err := dcm.NewElement(tg, data)
	require.NoError(t, err)
	return elem
}

func writeFile(t *testing.T, elems ...*dcm.Element) []byte {
	t.Helper()
	meta := []*dcm.Element{
		element(t, dtag.FileMetaInformationVersion, []byte{0x00, 0x01}),
		element(t, dtag.MediaStorageSOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		element(t, dtag.MediaStorageSOPInstanceUID, []string{"1.2.3.4.5.6.7"}),
		element(t, dtag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
	}
	ds := dcm.Dataset{Elements: append(meta, elems...)}

	var buf bytes.Buffer
	require.NoError(t, dcm.Write(&buf, ds, dcm.SkipVRVerification(), dcm.SkipValueTypeVerification()))
	return buf.Bytes()
}

func TestParseFile(t *testing.T) {
	buf := writeFile(t,
		element(t, dtag.StudyDate, []string{"20240301"}),
		element(t, dtag.Modality, []string{"MR"}),
		element(t, dtag.InstitutionName, []string{"UCSD HEALTH"}),
		element(t, dtag.PatientName, []string{"DOE^JANE"}),
		element(t, dtag.PatientID, []string{"MRN-001"}),
		element(t, dtag.Rows, []int{512}),
	)

	fm, err := ParseFile(buf)
	require.NoError(t, err)
	assert.Equal(t, "DOE JANE", fm.PatientName)
	assert.Equal(t, "MRN-001", fm.PatientID)
	assert.Equal(t, "2024-03-01", fm.StudyDate)
	assert.Equal(t, "MR", fm.Modality)
	assert.Equal(t, "UCSD HEALTH", fm.Institution)
	assert.Equal(t, "1.2.840.10008.1.2.1", fm.RawTags["TransferSyntaxUID"])
	assert.NotContains(t, fm.RawTags, "Rows")

	// the tolerant reader agrees on the same bytes
	loose := dicom.ParseFile(buf)
	assert.Equal(t, fm.PatientName, loose.PatientName)
	assert.Equal(t, fm.PatientID, loose.PatientID)
	assert.Equal(t, fm.StudyDate, loose.StudyDate)
	assert.Equal(t, fm.Modality, loose.Modality)
	assert.Equal(t, fm.Institution, loose.Institution)
}

func TestParseFile_Rejects(t *testing.T) {
	for _, buf := range [][]byte{nil, []byte("report 20231105 follow-up")} {
		_, err := ParseFile(buf)
		assert.Error(t, err)
	}
}
