package answer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type questionKind int

const (
	kindFreeText questionKind = iota
	kindSalary
	kindExperience
	kindNoticePeriod
	kindLocation
	kindRelocation
)

var (
	salaryRegex = regexp.MustCompile(`\b(salary|ctc|compensation|remuneration|lpa|stipend)\b`)
	// Experience is numeric only when the label asks for a count.
	experienceRegex = regexp.MustCompile(`\b(how many|number of years|years of|yrs of)\b`)
	noticeRegex     = regexp.MustCompile(`\b(notice period|(when|how soon) can you (join|start)|(earliest|expected) (joining|start) date)\b`)
	relocateRegex   = regexp.MustCompile(`\brelocat\w*`)
	locationRegex   = regexp.MustCompile(`\b(location|city|based in|where are you|currently located)\b`)
	// yesNoRegex spots questions that want a yes or no rather than a profile fact.
	yesNoRegex  = regexp.MustCompile(`^(are|do|can|will|would|have|is|did|could) you\b`)
	numberRegex = regexp.MustCompile(`\d[\d,.]*`)
)

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}

// wordsOnly normalizes s and replaces punctuation with spaces.
func wordsOnly(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, normalizeText(s))
	return strings.Join(strings.Fields(s), " ")
}

func containsPhrase(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// classify decides which normalization rule a question falls under.
// Salary wins over experience so "expected CTC for 3 years" stays numeric salary.
// Yes/no questions only keep the relocation shortcut; "Are you okay with the
// salary range?" must not be answered with a figure.
func classify(question string) questionKind {
	q := normalizeText(question)
	if yesNoRegex.MatchString(q) {
		if relocateRegex.MatchString(q) {
			return kindRelocation
		}
		return kindFreeText
	}
	switch {
	case salaryRegex.MatchString(q):
		return kindSalary
	case noticeRegex.MatchString(q):
		return kindNoticePeriod
	case experienceRegex.MatchString(q):
		return kindExperience
	case relocateRegex.MatchString(q):
		return kindRelocation
	case locationRegex.MatchString(q):
		return kindLocation
	default:
		return kindFreeText
	}
}

// bareNumber returns the first number in s with grouping separators removed,
// e.g. "18,00,000 INR" -> "1800000" and "3.5 years" -> "3.5".
func bareNumber(s string) string {
	m := numberRegex.FindString(s)
	if m == "" {
		return ""
	}
	m = strings.ReplaceAll(m, ",", "")
	m = strings.TrimRight(m, ".")
	if strings.Count(m, ".") > 1 {
		m = strings.ReplaceAll(m, ".", "")
	}
	return m
}

// capWords strips quotes and keeps at most n words.
func capWords(s string, n int) string {
	s = strings.NewReplacer(`"`, "", "“", "", "”", "").Replace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;:")
}

var yesNoSynonyms = map[string][]string{
	"yes": {"yes", "y", "true", "authorized", "i am", "i do", "sure", "agree"},
	"no":  {"no", "n", "false", "not", "never"},
}

// matchOption maps a free answer onto one of the offered choices: exact match
// first, then whole-word containment, then yes/no synonyms.
func matchOption(answer string, options []string) string {
	a := wordsOnly(answer)
	if a == "" {
		return ""
	}
	for _, opt := range options {
		if wordsOnly(opt) == a {
			return opt
		}
	}
	for _, opt := range options {
		o := wordsOnly(opt)
		if containsPhrase(a, o) || containsPhrase(o, a) {
			return opt
		}
	}
	for canonical, synonyms := range yesNoSynonyms {
		for _, syn := range synonyms {
			if a == syn || strings.HasPrefix(a, syn+" ") {
				for _, opt := range options {
					if wordsOnly(opt) == canonical {
						return opt
					}
				}
			}
		}
	}
	return ""
}
