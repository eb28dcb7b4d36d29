package dicom

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpfielding/dicometa/pkg/dicom/vr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type instance struct {
	patient, date, desc, series, seriesUID, modality, bodyPart, physician, institution string
}

func (in instance) bytes() []byte {
	s := newStream()
	add := func(group, element uint16, v vr.VR, value string) {
		if value != "" {
			s.text(group, element, v, value)
		}
	}
	add(0x0008, 0x0020, vr.DA, in.date)
	add(0x0008, 0x0060, vr.CS, in.modality)
	add(0x0008, 0x0080, vr.LO, in.institution)
	add(0x0008, 0x0090, vr.PN, in.physician)
	add(0x0008, 0x1030, vr.LO, in.desc)
	add(0x0008, 0x103E, vr.LO, in.series)
	add(0x0010, 0x0010, vr.PN, in.patient)
	add(0x0018, 0x0015, vr.CS, in.bodyPart)
	add(0x0020, 0x000E, vr.UI, in.seriesUID)
	return s.Bytes()
}

func TestExtractPackage_Files(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	x := Extractor{Now: func() time.Time { return fixed }}

	files := []File{
		{Name: "study/IM0001.dcm", Data: instance{
			patient: "DOE^JANE", date: "20240301", desc: "MRI L-SPINE", series: "SAG T1", seriesUID: "1.2.1",
			modality: "MR", bodyPart: "L-SPINE", physician: "SMITH^JOHN", institution: "UCSD HEALTH",
		}.bytes()},
		{Name: "study/IM0002.DCM", Data: instance{
			patient: "ROE^RICHARD", date: "20240302", series: "SAG T1", seriesUID: "1.2.1",
			modality: "MR", bodyPart: "LSPINE",
		}.bytes()},
		{Name: "study/IM0003.dicom", Data: instance{
			series: "AX T2", seriesUID: "1.2.2", modality: "MR", bodyPart: "l-spine",
		}.bytes()},
		{Name: "study/notes.txt", Data: []byte("report 20991231")},
		{Name: "study/dicom_export.bin", Data: []byte("exported 20240101")},
	}

	pm := x.ExtractPackage(files)
	assert.Equal(t, fixed, pm.ExtractedAt)
	assert.Equal(t, "DOE JANE", pm.PatientName, "first non-empty value wins")
	assert.Equal(t, "2024-03-01", pm.StudyDate)
	assert.Equal(t, "MRI L-SPINE", pm.StudyDescription)
	assert.Equal(t, "SMITH JOHN", pm.ReferringPhysician)
	assert.Equal(t, "UCSD HEALTH", pm.Institution)
	assert.Equal(t, []string{"SAG T1", "AX T2"}, pm.SeriesDescriptions)
	assert.Equal(t, []string{"MR"}, pm.Modalities)
	assert.Equal(t, []string{"spine", "lspine"}, pm.BodyParts)
	assert.Equal(t, 4, pm.ImageCount, "notes.txt is not a DICOM name")
	assert.Equal(t, 2, pm.SeriesCount)
	assert.Equal(t,
		"MRI imaging study of the spine, lspine performed on 2024-03-01 referred by SMITH JOHN at UCSD HEALTH (4 images).",
		pm.Summary)
}

func TestExtractPackage_DicomDirWins(t *testing.T) {
	files := []File{
		{Name: "IM0001.dcm", Data: instance{patient: "OTHER^PERSON", modality: "CT"}.bytes()},
		{Name: "media/dicomdir", Data: lumbarDir()},
	}
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	x := Extractor{Now: func() time.Time { return fixed }}

	pm := x.ExtractPackage(files)
	assert.Equal(t, x.ParseDir(lumbarDir()), pm)
	assert.Equal(t, "DOE JOHN", pm.PatientName)
	assert.Equal(t, []string{"MR"}, pm.Modalities)
}

func TestExtractPackage_Empty(t *testing.T) {
	for _, files := range [][]File{nil, {{Name: "readme.md", Data: []byte("hello")}}} {
		pm := ExtractPackage(files)
		assert.True(t, pm.IsEmpty())
		assert.Equal(t, []string{}, pm.Modalities)
		assert.Equal(t, "Medical imaging study.", pm.Summary)
		assert.False(t, pm.ExtractedAt.IsZero())
	}
}

func TestExtractPackage_SeriesWithoutUID(t *testing.T) {
	files := []File{
		{Name: "a.dcm", Data: instance{series: "LOCALIZER"}.bytes()},
		{Name: "b.dcm", Data: instance{series: "LOCALIZER"}.bytes()},
		{Name: "c.dcm", Data: instance{modality: "CR"}.bytes()},
	}
	pm := ExtractPackage(files)
	assert.Equal(t, 1, pm.SeriesCount)
	assert.Equal(t, 3, pm.ImageCount)
}

func TestMerge_DoesNotAlias(t *testing.T) {
	base := PackageMetadata{Modalities: make([]string, 1, 8)}
	base.Modalities[0] = "CT"

	a := Merge(base, FileMetadata{Modality: "MR"})
	b := Merge(base, FileMetadata{Modality: "US"})
	assert.Equal(t, []string{"CT"}, base.Modalities)
	assert.Equal(t, []string{"CT", "MR"}, a.Modalities)
	assert.Equal(t, []string{"CT", "US"}, b.Modalities)
	assert.Equal(t, 0, base.ImageCount)
	assert.Equal(t, 1, a.ImageCount)
}

func TestMerge_FirstWins(t *testing.T) {
	pm := Merge(PackageMetadata{}, FileMetadata{StudyDate: "2024-01-01"})
	pm = Merge(pm, FileMetadata{StudyDate: "2024-02-02", PatientName: "LATE ARRIVAL"})
	assert.Equal(t, "2024-01-01", pm.StudyDate)
	assert.Equal(t, "LATE ARRIVAL", pm.PatientName)
	assert.Equal(t, 2, pm.ImageCount)
}

func TestIsDicomDir(t *testing.T) {
	assert.True(t, IsDicomDir("DICOMDIR"))
	assert.True(t, IsDicomDir("cd/DicomDir"))
	assert.True(t, IsDicomDir(`E:\DICOMDIR`))
	assert.False(t, IsDicomDir("DICOMDIR.bak"))
	assert.False(t, IsDicomDir("IM0001.dcm"))
}

func TestIsDicomName(t *testing.T) {
	for _, name := range []string{"a.dcm", "A.DCM", "b.dicom", "c.dic", "export_DICOM_1"} {
		assert.True(t, IsDicomName(name), name)
	}
	for _, name := range []string{"a.txt", "dcm.zip", "IM0001"} {
		assert.False(t, IsDicomName(name), name)
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dcm"), instance{patient: "DOE^JANE"}.bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.dcm"), instance{modality: "CT"}.bytes(), 0o644))

	files, err := ReadDir(dir, false)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.dcm", files[0].Name)

	files, err = ReadDir(dir, true)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "sub/b.dcm", files[1].Name)

	fm, err := ReadFile(filepath.Join(dir, "a.dcm"))
	require.NoError(t, err)
	assert.Equal(t, "DOE JANE", fm.PatientName)

	_, err = ReadFile(filepath.Join(dir, "missing.dcm"))
	assert.Error(t, err)
	_, err = ReadDir(filepath.Join(dir, "missing"), true)
	assert.Error(t, err)
}
