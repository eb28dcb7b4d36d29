package dicom

import (
	"regexp"
	"strings"
)

// UnparseableSummary is the summary of a DICOMDIR whose heuristic pass failed
const UnparseableSummary = "Unable to parse DICOMDIR metadata."

var (
	personName = regexp.MustCompile(`[A-Z]+\^[A-Z]+(?:\^[A-Z]+)*`)
	studyDate  = regexp.MustCompile(`(20\d{2})(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])`)
	studyWord  = regexp.MustCompile(`\bSTUDY\b`)
	imageWord  = regexp.MustCompile(`\bIMAGE\b`)

	// tried in order, first hit wins
	descriptionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)X-RAY[A-Z0-9 ,/()-]*`),
		regexp.MustCompile(`(?i)MRI[A-Z0-9 ,/()-]*`),
		regexp.MustCompile(`(?i)CT[A-Z0-9 ,/()-]*SCAN[A-Z0-9 ,/()-]*`),
		regexp.MustCompile(`(?i)FLUORO[A-Z0-9 ,/()-]*`),
		regexp.MustCompile(`(?i)ULTRASOUND[A-Z0-9 ,/()-]*`),
	}

	institutionPattern = regexp.MustCompile(`[A-Z][A-Z .&'-]*?(?:HOSPITAL|MEDICAL CENTER|CLINIC|RADIOLOGY|IMAGING CENTER)[A-Z .&'-]{0,50}`)
)

// knownInstitutions are matched case-insensitively when no institution-style
// phrase is present, in this order.
var knownInstitutions = []string{
	"UCSD Health",
	"Scripps Health",
	"Sharp HealthCare",
	"Kaiser Permanente",
	"Mayo Clinic",
	"Cleveland Clinic",
	"Johns Hopkins Medicine",
	"Cedars-Sinai",
	"Stanford Health Care",
}

// bodyPartKeywords is the vocabulary searched in DICOMDIR text. Matches are
// reported through normalizeBodyPart, so "L-SPINE" becomes "spine".
var bodyPartKeywords = []string{
	"L-SPINE", "C-SPINE", "T-SPINE", "SPINE", "LUMBAR", "CERVICAL", "THORACIC",
	"HEAD", "BRAIN", "SKULL",
	"CHEST", "THORAX", "LUNG",
	"ABDOMEN", "PELVIS",
	"KNEE", "SHOULDER", "HIP", "ELBOW", "WRIST", "ANKLE",
	"NECK",
}

// ParseDir extracts package metadata from a DICOMDIR or similar container
// using the default Extractor.
func ParseDir(buf []byte) PackageMetadata {
	return std.ParseDir(buf)
}

// ParseDir extracts package metadata from a DICOMDIR or similar container.
// Directory records vary too much between vendors to walk element by
// element, so the buffer is searched as text. Counts are word counts of
// "STUDY" and "IMAGE" and only approximate the record counts.
func (x Extractor) ParseDir(buf []byte) (pm PackageMetadata) {
	pm = x.newPackage()
	defer func() {
		if r := recover(); r != nil {
			pm.Summary = UnparseableSummary
		}
	}()

	text := strings.ToValidUTF8(string(buf), "�")

	names := personName.FindAllString(text, -1)
	if len(names) > 0 {
		pm.PatientName = CleanPersonName(names[0])
	}
	// the first name is assumed to be the patient
	if len(names) > 1 {
		pm.ReferringPhysician = CleanPersonName(names[1])
	}

	if i := strings.Index(text, "STUDY"); i >= 0 {
		if m := studyDate.FindStringSubmatch(text[i:]); m != nil {
			pm.StudyDate = m[1] + "-" + m[2] + "-" + m[3]
		}
	}

	for _, re := range descriptionPatterns {
		if m := re.FindString(text); m != "" {
			pm.StudyDescription = printableASCII(m)
			break
		}
	}

	pm.Modalities = detectModalities(text)
	pm.BodyParts = detectBodyParts(text)
	pm.SeriesCount = len(studyWord.FindAllStringIndex(text, -1))
	pm.ImageCount = len(imageWord.FindAllStringIndex(text, -1))
	pm.Institution = detectInstitution(text)

	pm.Summary = Summarize(pm)
	return pm
}

// modalityLabels match each table entry's display label as a whole word,
// case-insensitive, so "PET/CT" and "mri brain" hit while "INJECTION" does
// not count as CT.
var modalityLabels = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(modalityTable))
	for i, m := range modalityTable {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(m.Label) + `\b`)
	}
	return out
}()

func detectModalities(text string) []string {
	upper := strings.ToUpper(text)
	found := []string{}
	for i, m := range modalityTable {
		if strings.Contains(text, m.Code+" ") ||
			strings.Contains(text, m.Code+"\x00") ||
			modalityLabels[i].MatchString(text) ||
			strings.Contains(upper, m.Keyword) {
			found = appendIfNew(found, m.Code)
		}
	}
	if strings.Contains(text, "FLUORO") {
		found = appendIfNew(found, "RF")
	}
	return found
}

func detectBodyParts(text string) []string {
	found := []string{}
	for _, kw := range bodyPartKeywords {
		if strings.Contains(text, kw) {
			found = appendIfNew(found, normalizeBodyPart(kw))
		}
	}
	return found
}

func detectInstitution(text string) string {
	if m := institutionPattern.FindString(text); m != "" {
		if s := printableASCII(m); s != "" {
			return s
		}
	}
	upper := strings.ToUpper(text)
	for _, name := range knownInstitutions {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return name
		}
	}
	return ""
}
