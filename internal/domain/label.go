package domain

import "time"

// Labels used by the compare view and the share payload.
const (
	DefaultShareBrand = "Boost Roo"
	PickTwoLabel      = "Pick two photos"
	ProgressLabel     = "Progress photos"
	dateLayout        = "02 Jan 2006"
)

// FormatDate renders a capture timestamp the way the grid caption shows it,
// e.g. "07 Mar 2025", in the given location (UTC when loc is nil).
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// CompareLabel is the range shown under the before/after pair.
func CompareLabel(p Pair, loc *time.Location) string {
	if !p.Complete() {
		return PickTwoLabel
	}
	return FormatDate(p.Left.CreatedAt, loc) + " - " + FormatDate(p.Right.CreatedAt, loc)
}

// ShareMessage is the text payload handed to the platform share sheet.
func ShareMessage(brand string, p Pair, loc *time.Location) string {
	if brand == "" {
		brand = DefaultShareBrand
	}
	label := ProgressLabel
	if p.Complete() {
		label = CompareLabel(p, loc)
	}
	return brand + " — " + label
}
