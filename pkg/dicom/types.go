package dicom

import (
	"slices"
	"time"
)

// FileMetadata is the flat metadata record extracted from one DICOM file.
// Named fields mirror the RawTags entry of the tag they were promoted from.
type FileMetadata struct {
	PatientName        string `json:"patientName,omitempty"`
	PatientID          string `json:"patientId,omitempty"`
	PatientBirthDate   string `json:"patientBirthDate,omitempty"`
	PatientSex         string `json:"patientSex,omitempty"`
	StudyDate          string `json:"studyDate,omitempty"`
	StudyTime          string `json:"studyTime,omitempty"`
	StudyDescription   string `json:"studyDescription,omitempty"`
	SeriesDescription  string `json:"seriesDescription,omitempty"`
	ReferringPhysician string `json:"referringPhysician,omitempty"`
	Institution        string `json:"institution,omitempty"`
	Modality           string `json:"modality,omitempty"`
	BodyPartExamined   string `json:"bodyPartExamined,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`

	RawTags map[string]string `json:"rawTags,omitempty"`
}

// IsEmpty reports whether nothing at all was recovered
func (fm FileMetadata) IsEmpty() bool {
	return fm.StudyDate == "" && len(fm.RawTags) == 0
}

// PackageMetadata aggregates the metadata of a study, upload group or DICOMDIR
type PackageMetadata struct {
	ExtractedAt time.Time `json:"extractedAt"`

	PatientName        string `json:"patientName,omitempty"`
	StudyDate          string `json:"studyDate,omitempty"`
	StudyDescription   string `json:"studyDescription,omitempty"`
	ReferringPhysician string `json:"referringPhysician,omitempty"`
	Institution        string `json:"institution,omitempty"`

	SeriesDescriptions []string `json:"seriesDescriptions"`
	Modalities         []string `json:"modalities"`
	BodyParts          []string `json:"bodyParts"`

	// ImageCount and SeriesCount are approximate when produced by ParseDir
	ImageCount  int `json:"imageCount"`
	SeriesCount int `json:"seriesCount"`

	Summary string `json:"summary"`
}

// IsEmpty reports whether no structured field was populated
func (pm PackageMetadata) IsEmpty() bool {
	return pm.PatientName == "" && pm.StudyDate == "" && pm.StudyDescription == "" &&
		pm.ReferringPhysician == "" && pm.Institution == "" &&
		len(pm.SeriesDescriptions) == 0 && len(pm.Modalities) == 0 && len(pm.BodyParts) == 0 &&
		pm.ImageCount == 0 && pm.SeriesCount == 0
}

// clone returns a copy that shares no slices with pm
func (pm PackageMetadata) clone() PackageMetadata {
	out := pm
	out.SeriesDescriptions = slices.Clone(pm.SeriesDescriptions)
	out.Modalities = slices.Clone(pm.Modalities)
	out.BodyParts = slices.Clone(pm.BodyParts)
	return out
}

// File is one named buffer of an upload batch
type File struct {
	Name string
	Data []byte
}

// appendIfNew appends v unless it is empty or already present
func appendIfNew(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
