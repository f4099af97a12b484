package patient

import "regexp"

var (
	ssnPattern  = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	maskPattern = regexp.MustCompile(`^\d{3}-\d{2}`)
)

// ValidSSN reports whether ssn is in XXX-XX-XXXX form.
func ValidSSN(ssn string) bool {
	return ssnPattern.MatchString(ssn)
}

// MaskSSN redacts the area and group segments of a stored SSN, keeping
// the trailing four digits and separators verbatim:
// 123-45-6789 -> ***-**-6789. Input is always a raw stored SSN.
func MaskSSN(ssn string) string {
	return maskPattern.ReplaceAllString(ssn, "***-**")
}
