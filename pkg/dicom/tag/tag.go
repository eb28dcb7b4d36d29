// Package tag defines the DICOM tags retained during metadata extraction
package tag

// Tag represents a DICOM tag with Group and Element
type Tag struct {
	Group   uint16
	Element uint16
}

// New creates a new Tag
func New(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// File Meta Information (Group 0002)
var (
	MediaStorageSOPClassUID = Tag{0x0002, 0x0002}
	TransferSyntaxUID       = Tag{0x0002, 0x0010}
)

// Patient Module (Group 0010)
var (
	PatientName      = Tag{0x0010, 0x0010}
	PatientID        = Tag{0x0010, 0x0020}
	PatientBirthDate = Tag{0x0010, 0x0030}
	PatientSex       = Tag{0x0010, 0x0040}
	PatientAge       = Tag{0x0010, 0x1010}
)

// General Study Module (Group 0008, 0020)
var (
	StudyDate              = Tag{0x0008, 0x0020}
	StudyTime              = Tag{0x0008, 0x0030}
	AccessionNumber        = Tag{0x0008, 0x0050}
	ReferringPhysicianName = Tag{0x0008, 0x0090}
	StudyDescription       = Tag{0x0008, 0x1030}
	StudyInstanceUID       = Tag{0x0020, 0x000D}
	StudyID                = Tag{0x0020, 0x0010}
)

// General Series Module
var (
	Modality          = Tag{0x0008, 0x0060}
	SeriesDescription = Tag{0x0008, 0x103E}
	SeriesInstanceUID = Tag{0x0020, 0x000E}
	SeriesNumber      = Tag{0x0020, 0x0011}
	BodyPartExamined  = Tag{0x0018, 0x0015}
	ProtocolName      = Tag{0x0018, 0x1030}
)

// General Equipment Module
var (
	Manufacturer          = Tag{0x0008, 0x0070}
	InstitutionName       = Tag{0x0008, 0x0080}
	StationName           = Tag{0x0008, 0x1010}
	ManufacturerModelName = Tag{0x0008, 0x1090}
)

// SOP Common / General Image
var (
	SOPClassUID    = Tag{0x0008, 0x0016}
	SOPInstanceUID = Tag{0x0008, 0x0018}
	InstanceNumber = Tag{0x0020, 0x0013}
)

// Dictionary is the allow-list of tags kept during extraction, keyed by Key().
// Everything else is skipped.
var Dictionary = map[string]string{
	MediaStorageSOPClassUID.Key(): "MediaStorageSOPClassUID",
	TransferSyntaxUID.Key():       "TransferSyntaxUID",
	PatientName.Key():             "PatientName",
	PatientID.Key():               "PatientID",
	PatientBirthDate.Key():        "PatientBirthDate",
	PatientSex.Key():              "PatientSex",
	PatientAge.Key():              "PatientAge",
	StudyDate.Key():               "StudyDate",
	StudyTime.Key():               "StudyTime",
	AccessionNumber.Key():         "AccessionNumber",
	ReferringPhysicianName.Key():  "ReferringPhysicianName",
	StudyDescription.Key():        "StudyDescription",
	StudyInstanceUID.Key():        "StudyInstanceUID",
	StudyID.Key():                 "StudyID",
	Modality.Key():                "Modality",
	SeriesDescription.Key():       "SeriesDescription",
	SeriesInstanceUID.Key():       "SeriesInstanceUID",
	SeriesNumber.Key():            "SeriesNumber",
	BodyPartExamined.Key():        "BodyPartExamined",
	ProtocolName.Key():            "ProtocolName",
	Manufacturer.Key():            "Manufacturer",
	InstitutionName.Key():         "InstitutionName",
	StationName.Key():             "StationName",
	ManufacturerModelName.Key():   "ManufacturerModelName",
	SOPClassUID.Key():             "SOPClassUID",
	SOPInstanceUID.Key():          "SOPInstanceUID",
	InstanceNumber.Key():          "InstanceNumber",
}

// LookupName returns the dictionary name of the tag, or "" when it is not retained
func (t Tag) LookupName() string {
	return Dictionary[t.Key()]
}
