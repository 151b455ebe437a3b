package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/honeycarbs/tenuretrack/internal/htmltext"
)

var (
	digitGroups     = regexp.MustCompile(`\d+`)
	tenurePattern   = regexp.MustCompile(`任期(?:あり|なし)|テニュアトラック`)
	trialPattern    = regexp.MustCompile(`試用期間(?:あり|なし)`)
	teachingPattern = regexp.MustCompile(`(?:担当科目|教育負担|授業)[：:].*`)
)

// ParseDate reads the first three digit groups of text as year, month and
// day. It reports false when fewer than three groups exist or they do not
// form a calendar date. Full-width digits are accepted.
func ParseDate(text string) (time.Time, bool) {
	groups := digitGroups.FindAllString(htmltext.Normalize(text), 3)
	if len(groups) < 3 {
		return time.Time{}, false
	}

	var parts [3]int
	for i, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = n
	}

	year, month, day := parts[0], parts[1], parts[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow such as Feb 30; reject it
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// IsActive reports whether a posting with the given deadline text is still
// open on now's calendar date. The deadline day itself counts as open and a
// deadline that cannot be parsed is treated as open.
func IsActive(deadline string, now time.Time) bool {
	d, ok := ParseDate(deadline)
	if !ok {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(today)
}

// compound is the split form of the "position : employment - ..." line
type compound struct {
	PositionType   string
	EmploymentType string
	TenureStatus   string
	TrialPeriod    string
}

// parseCompound splits text on its first colon into position type and
// remainder, then takes the employment type from the remainder's first
// hyphen-separated segment. Tenure and trial markers are searched anywhere
// in the remainder. Text without a colon yields nothing.
func parseCompound(text string) compound {
	i := strings.IndexAny(text, ":：")
	if i < 0 {
		return compound{}
	}
	sep := len(":")
	if strings.HasPrefix(text[i:], "：") {
		sep = len("：")
	}

	remainder := strings.TrimSpace(text[i+sep:])
	employment, _, _ := strings.Cut(remainder, "-")

	return compound{
		PositionType:   strings.TrimSpace(text[:i]),
		EmploymentType: strings.TrimSpace(employment),
		TenureStatus:   tenurePattern.FindString(remainder),
		TrialPeriod:    trialPattern.FindString(remainder),
	}
}

// teachingRequirements picks the teaching-load sentence out of a job description
func teachingRequirements(description string) string {
	return teachingPattern.FindString(description)
}
