package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jpfielding/dicometa/pkg/dicom"
	"gorm.io/gorm"
)

// Package sources
const (
	SourceDicomDir = "dicomdir"
	SourceFiles    = "files"
)

// PackageRecord is a stored extraction result. The ID is derived from the
// batch digest so that uploading the same files twice updates one row.
type PackageRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Digest    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"digest"`
	Source    string    `gorm:"type:varchar(20);index" json:"source"`
	FileCount int       `json:"fileCount"`

	PatientName        string   `gorm:"type:varchar(255)" json:"patientName,omitempty"`
	StudyDate          string   `gorm:"type:varchar(10);index" json:"studyDate,omitempty"`
	StudyDescription   string   `gorm:"type:text" json:"studyDescription,omitempty"`
	ReferringPhysician string   `gorm:"type:varchar(255)" json:"referringPhysician,omitempty"`
	Institution        string   `gorm:"type:varchar(255)" json:"institution,omitempty"`
	SeriesDescriptions []string `gorm:"serializer:json" json:"seriesDescriptions"`
	Modalities         []string `gorm:"serializer:json" json:"modalities"`
	BodyParts          []string `gorm:"serializer:json" json:"bodyParts"`
	ImageCount         int      `json:"imageCount"`
	SeriesCount        int      `json:"seriesCount"`
	Summary            string   `gorm:"type:text" json:"summary"`

	ExtractedAt time.Time `json:"extractedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (PackageRecord) TableName() string {
	return "packages"
}

// BeforeCreate hook
func (p *PackageRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewPackageRecord flattens package metadata into a record
func NewPackageRecord(id uuid.UUID, digest, source string, fileCount int, pm dicom.PackageMetadata) *PackageRecord {
	return &PackageRecord{
		ID:                 id,
		Digest:             digest,
		Source:             source,
		FileCount:          fileCount,
		PatientName:        pm.PatientName,
		StudyDate:          pm.StudyDate,
		StudyDescription:   pm.StudyDescription,
		ReferringPhysician: pm.ReferringPhysician,
		Institution:        pm.Institution,
		SeriesDescriptions: pm.SeriesDescriptions,
		Modalities:         pm.Modalities,
		BodyParts:          pm.BodyParts,
		ImageCount:         pm.ImageCount,
		SeriesCount:        pm.SeriesCount,
		Summary:            pm.Summary,
		ExtractedAt:        pm.ExtractedAt,
	}
}

// Metadata rebuilds the package metadata; nil lists come back empty
func (p *PackageRecord) Metadata() dicom.PackageMetadata {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return dicom.PackageMetadata{
		ExtractedAt:        p.ExtractedAt,
		PatientName:        p.PatientName,
		StudyDate:          p.StudyDate,
		StudyDescription:   p.StudyDescription,
		ReferringPhysician: p.ReferringPhysician,
		Institution:        p.Institution,
		SeriesDescriptions: orEmpty(p.SeriesDescriptions),
		Modalities:         orEmpty(p.Modalities),
		BodyParts:          orEmpty(p.BodyParts),
		ImageCount:         p.ImageCount,
		SeriesCount:        p.SeriesCount,
		Summary:            p.Summary,
	}
}
