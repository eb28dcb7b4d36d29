package dicom

import (
	"fmt"
	"strings"
)

// modality pairs a DICOM modality code with its display label. Free text
// names a modality by its label or by the longer Keyword phrase.
type modality struct {
	Code    string
	Label   string
	Keyword string
}

var modalityTable = []modality{
	{Code: "XR", Label: "X-Ray", Keyword: "X-RAY"},
	{Code: "CR", Label: "Computed Radiography", Keyword: "COMPUTED RADIOGRAPHY"},
	{Code: "DX", Label: "Digital Radiography", Keyword: "DIGITAL RADIOGRAPHY"},
	{Code: "CT", Label: "CT", Keyword: "COMPUTED TOMOGRAPHY"},
	{Code: "MR", Label: "MRI", Keyword: "MAGNETIC RESONANCE"},
	{Code: "US", Label: "Ultrasound", Keyword: "ULTRASOUND"},
	{Code: "RF", Label: "Fluoroscopy", Keyword: "FLUOROSCOPY"},
	{Code: "NM", Label: "Nuclear Medicine", Keyword: "NUCLEAR MEDICINE"},
	{Code: "PT", Label: "PET", Keyword: "POSITRON EMISSION"},
}

// ModalityLabel returns the display label of a modality code, or the code itself
func ModalityLabel(code string) string {
	for _, m := range modalityTable {
		if m.Code == code {
			return m.Label
		}
	}
	return code
}

// Summarize renders a package as one sentence, e.g.
// "MRI imaging study of the spine performed on 2024-03-01 (42 images)."
func Summarize(pm PackageMetadata) string {
	clauses := make([]string, 0, 6)

	if len(pm.Modalities) > 0 {
		labels := make([]string, len(pm.Modalities))
		for i, code := range pm.Modalities {
			labels[i] = ModalityLabel(code)
		}
		clauses = append(clauses, strings.Join(labels, ", ")+" imaging study")
	} else {
		clauses = append(clauses, "Medical imaging study")
	}
	if len(pm.BodyParts) > 0 {
		clauses = append(clauses, "of the "+strings.Join(pm.BodyParts, ", "))
	}
	if pm.StudyDate != "" {
		clauses = append(clauses, "performed on "+pm.StudyDate)
	}
	if pm.ReferringPhysician != "" {
		clauses = append(clauses, "referred by "+pm.ReferringPhysician)
	}
	if pm.Institution != "" {
		clauses = append(clauses, "at "+pm.Institution)
	}
	if pm.ImageCount > 0 {
		clauses = append(clauses, fmt.Sprintf("(%d images)", pm.ImageCount))
	}

	return strings.Join(clauses, " ") + "."
}
