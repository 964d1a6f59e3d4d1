package scoring

import (
	"regexp"
	"strconv"
)

// scorePattern is one extraction rule. Patterns are tried in order and the
// first one that matches anywhere in the text wins; within a match the first
// non-empty capture group is the score.
type scorePattern struct {
	name string
	re   *regexp.Regexp
}

// Ordered by priority. The fraction form ("85/100", full-width slash
// included) is the most reliable signal and outranks labeled forms, which in
// turn outrank the bare point-suffix idiom ("85点").
var scorePatterns = []scorePattern{
	{"fraction", regexp.MustCompile(`\b([0-9]{1,3})\s*[/／]\s*100\b`)},
	{"score-label", regexp.MustCompile(`(?i)\bscore[：:]*\s*([0-9]{1,3})\b|スコア[：:]*\s*([0-9]{1,3})\b`)},
	{"evaluation-label", regexp.MustCompile(`(?i)\bevaluation[：:]*\s*([0-9]{1,3})\b|評価[：:]*\s*([0-9]{1,3})\b`)},
	{"points", regexp.MustCompile(`\b([0-9]{1,3})\s*点`)},
}

var bareInteger = regexp.MustCompile(`\b([0-9]{1,3})\b`)

// ExtractScore searches the model's answer for a score using the ordered
// pattern list. The value is returned as captured, without range clamping.
func ExtractScore(text string) (int, bool) {
	for _, p := range scorePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			n, err := strconv.Atoi(group)
			if err != nil {
				continue
			}
			return n, true
		}
	}
	return 0, false
}

// ExtractClarifiedScore searches a clarification reply for a bare 1-3 digit
// integer and accepts it only inside [0,100].
func ExtractClarifiedScore(text string) (int, bool) {
	m := bareInteger.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}
