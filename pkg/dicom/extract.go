package dicom

import (
	"strings"
	"time"
)

// DicomDirName is the file name of a DICOM file-set directory
const DicomDirName = "DICOMDIR"

// DicomExtensions are the file name suffixes treated as DICOM in a batch
var DicomExtensions = []string{".dcm", ".dicom", ".dic"}

// Extractor stamps aggregated packages with the time from Now (UTC).
// The zero value uses time.Now.
type Extractor struct {
	Now func() time.Time
}

var std = Extractor{}

func (x Extractor) now() time.Time {
	if x.Now != nil {
		return x.Now().UTC()
	}
	return time.Now().UTC()
}

func (x Extractor) newPackage() PackageMetadata {
	return PackageMetadata{
		ExtractedAt:        x.now(),
		SeriesDescriptions: []string{},
		Modalities:         []string{},
		BodyParts:          []string{},
	}
}

// baseName strips any slash or backslash separated directory prefix
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsDicomDir reports whether name refers to a DICOMDIR file
func IsDicomDir(name string) bool {
	return strings.EqualFold(baseName(name), DicomDirName)
}

// IsDicomName reports whether a batch entry should be parsed as a DICOM file
func IsDicomName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range DicomExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.Contains(lower, "dicom")
}

// ExtractPackage aggregates a batch using the default Extractor
func ExtractPackage(files []File) PackageMetadata {
	return std.ExtractPackage(files)
}

// ExtractPackage aggregates the files of one upload group into a package.
// A DICOMDIR, when present, is authoritative and the other files are not read.
// Otherwise every DICOM-named file is parsed and folded in input order.
func (x Extractor) ExtractPackage(files []File) PackageMetadata {
	for _, f := range files {
		if IsDicomDir(f.Name) {
			return x.ParseDir(f.Data)
		}
	}

	pm := x.newPackage()
	series := map[string]struct{}{}
	for _, f := range files {
		if !IsDicomName(f.Name) {
			continue
		}
		fm := ParseFile(f.Data)
		pm = Merge(pm, fm)
		if key := seriesKey(fm); key != "" {
			if _, seen := series[key]; !seen {
				series[key] = struct{}{}
				pm.SeriesCount++
			}
		}
	}
	pm.Summary = Summarize(pm)
	return pm
}

// Merge folds one file into a package and returns the new package; pm is not
// modified. Single-valued fields keep the first non-empty value, list fields
// gain values they do not hold yet, and ImageCount grows by one.
func Merge(pm PackageMetadata, fm FileMetadata) PackageMetadata {
	out := pm.clone()
	out.PatientName = firstNonEmpty(out.PatientName, fm.PatientName)
	out.StudyDate = firstNonEmpty(out.StudyDate, fm.StudyDate)
	out.StudyDescription = firstNonEmpty(out.StudyDescription, fm.StudyDescription)
	out.ReferringPhysician = firstNonEmpty(out.ReferringPhysician, fm.ReferringPhysician)
	out.Institution = firstNonEmpty(out.Institution, fm.Institution)

	out.SeriesDescriptions = appendIfNew(out.SeriesDescriptions, fm.SeriesDescription)
	out.Modalities = appendIfNew(out.Modalities, fm.Modality)
	out.BodyParts = appendIfNew(out.BodyParts, normalizeBodyPart(fm.BodyPartExamined))
	out.ImageCount++
	return out
}

// seriesKey identifies the series a file belongs to
func seriesKey(fm FileMetadata) string {
	if uid := fm.RawTags["SeriesInstanceUID"]; uid != "" {
		return uid
	}
	return fm.SeriesDescription
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}
