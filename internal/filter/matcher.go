package filter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go-easyapply-automation/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var experienceRegex = regexp.MustCompile(`(?i)\b(\d{1,2})(?:\s*(?:-|to)\s*\d{1,2})?\s*(\+|plus)?\s*(years?|yrs?|yoe)\b`)

// Rules excludes opened postings before they reach the decision gate.
type Rules struct {
	exclude  []*regexp.Regexp
	terms    []string
	maxYears int
}

// NewRules compiles exclusion phrases (matched as whole words on the
// diacritic-folded title and description) and an experience ceiling.
// maxYears <= 0 disables the ceiling.
func NewRules(exclude []string, maxYears int) *Rules {
	r := &Rules{maxYears: maxYears}
	for _, term := range exclude {
		t := normalize(term)
		if t == "" {
			continue
		}
		r.terms = append(r.terms, t)
		r.exclude = append(r.exclude, regexp.MustCompile(`\b`+regexp.QuoteMeta(t)+`\b`))
	}
	return r
}

// ShouldInclude reports whether the posting passes every rule.
func (r *Rules) ShouldInclude(p models.JobPosting) bool {
	return r.Reason(p) == ""
}

// Reason names the first rule the posting fails, or "" when it passes.
func (r *Rules) Reason(p models.JobPosting) string {
	if r == nil {
		return ""
	}

	title := normalize(p.Title)
	text := title + " " + normalize(p.Description)
	for i, re := range r.exclude {
		if re.MatchString(text) {
			return "excluded:" + r.terms[i]
		}
	}

	if r.maxYears > 0 {
		if years := RequiredYears(text); years > r.maxYears {
			return "experience:" + strconv.Itoa(years)
		}
	}
	return ""
}

// RequiredYears is the smallest "N years" figure mentioned, 0 when none is.
// Descriptions often list several; the smallest is the actual floor.
func RequiredYears(text string) int {
	min := 0
	for _, m := range experienceRegex.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			continue
		}
		if min == 0 || n < min {
			min = n
		}
	}
	return min
}

func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}
