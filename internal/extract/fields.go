package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/minhlq/resume-ocr/internal/entity"
)

// Extractor applies a prioritized set of label and pattern rules over the
// ordered OCR line sequence of a whole document. Each field is extracted
// independently; a miss is a null field, never an error, so extraction can
// only degrade field by field. Extract is pure: the same lines always
// yield the same result.
type Extractor struct {
	logger *slog.Logger

	nameValue    *regexp.Regexp // name anchor with an inline value
	nameAnchor   *regexp.Regexp // name anchor alone on its line
	namePattern  *regexp.Regexp // fallback: line that looks like a personal name
	headerIgnore *regexp.Regexp

	phoneAnchor *regexp.Regexp
	phoneZero   *regexp.Regexp
	phoneBare   *regexp.Regexp

	birthAnchor *regexp.Regexp
	datePattern *regexp.Regexp

	tails map[string]*regexp.Regexp // supplemental single-label fields
	flCut *regexp.Regexp            // cultural level value is cut at the foreign-language label
}

var (
	nonDigit = regexp.MustCompile(`\D`)
	reDots   = regexp.MustCompile(`[\.…]+`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// NewExtractor compiles the rule set from the given label configuration.
// Pass DefaultLabels unless a deployment ships its own keyword sets.
func NewExtractor(labels map[string]LabelSet, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if labels == nil {
		labels = DefaultLabels
	}

	var name, phone, birth, header []string
	tails := map[string][]string{}
	for _, lang := range sortedKeys(labels) {
		ls := labels[lang]
		name = append(name, ls.Name...)
		phone = append(phone, ls.Phone...)
		birth = append(birth, ls.BirthDate...)
		header = append(header, ls.HeaderIgnore...)
		tails["address"] = append(tails["address"], ls.Address...)
		tails["profession"] = append(tails["profession"], ls.Profession...)
		tails["major"] = append(tails["major"], ls.Major...)
		tails["cultural_level"] = append(tails["cultural_level"], ls.CulturalLevel...)
		tails["foreign_language"] = append(tails["foreign_language"], ls.ForeignLanguage...)
	}

	e := &Extractor{
		logger: logger,

		nameValue:   regexp.MustCompile(`(?i)(?:` + alternation(name) + `)[:\s\-]*(\S.*)`),
		nameAnchor:  regexp.MustCompile(`(?i)^(?:` + alternation(name) + `)\s*[:\-]?\s*$`),
		namePattern: regexp.MustCompile(`^\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)+$`),

		phoneAnchor: regexp.MustCompile(`(?i)(?:` + alternation(phone) + `)[:\s\-]*([\d\s\-\.]+)`),
		phoneZero:   regexp.MustCompile(`\b0\d{9,10}\b`),
		phoneBare:   regexp.MustCompile(`\b\d{9,11}\b`),

		birthAnchor: regexp.MustCompile(`(?i)(?:` + alternation(birth) + `)[:\s\-]*([\d\/\.\- ]+)`),
		datePattern: regexp.MustCompile(`\d{1,4}(?:[\/\.\- ]+\d{1,4}){1,3}|(?:19|20)\d{2}`),

		tails: map[string]*regexp.Regexp{},
	}
	if len(header) > 0 {
		e.headerIgnore = regexp.MustCompile(`(?i)` + alternation(header))
	}
	if fl := tails["foreign_language"]; len(fl) > 0 {
		e.flCut = regexp.MustCompile(`(?i)` + alternation(fl))
	}
	for field, anchors := range tails {
		if len(anchors) == 0 {
			continue
		}
		e.tails[field] = regexp.MustCompile(`(?i)(?:` + alternation(anchors) + `)[:\-]?\s*(.+)`)
	}
	return e
}

// Extract populates the unified result from the document's ordered lines.
func (e *Extractor) Extract(rawLines []string) entity.ExtractionResult {
	lines := preprocess(rawLines)
	joined := strings.Join(lines, "\n")

	res := entity.NewExtractionResult()
	res.Name = e.extractName(lines)
	res.Phone = e.extractPhone(joined)
	res.BirthDate = e.extractBirthDate(joined)

	res.Address = e.textAfter("address", lines)
	res.Profession = e.textAfter("profession", lines)
	res.Major = e.textAfter("major", lines)
	res.CulturalLevel = e.extractCulturalLevel(lines)
	res.ForeignLanguage = e.textAfter("foreign_language", lines)
	return res
}

// preprocess trims stray punctuation off every line and drops empties,
// preserving order.
func preprocess(rawLines []string) []string {
	out := make([]string, 0, len(rawLines))
	for _, ln := range rawLines {
		ln = strings.Trim(ln, " .:")
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// extractName looks for a name label; the value is the remainder of the
// label line, or the following line when the label stands alone. Without
// any label, the first line shaped like a personal name (two or more
// capitalized tokens, no digits) wins, skipping known header lines.
func (e *Extractor) extractName(lines []string) *string {
	for i, ln := range lines {
		if m := e.nameValue.FindStringSubmatch(ln); m != nil {
			if v := strings.Trim(m[1], " .:"); v != "" {
				return &v
			}
		}
		if e.nameAnchor.MatchString(ln) && i+1 < len(lines) {
			if v := strings.Trim(lines[i+1], " .:"); v != "" {
				return &v
			}
		}
	}
	for _, ln := range lines {
		if e.headerIgnore != nil && e.headerIgnore.MatchString(ln) {
			continue
		}
		if e.namePattern.MatchString(ln) {
			v := ln
			return &v
		}
	}
	return nil
}

// extractPhone prefers a labeled number (9–12 digits once separators are
// stripped), then falls back to a leading-zero digit run, then any bare
// 9–11 digit run.
func (e *Extractor) extractPhone(joined string) *string {
	if m := e.phoneAnchor.FindStringSubmatch(joined); m != nil {
		digits := nonDigit.ReplaceAllString(m[1], "")
		if len(digits) >= 9 && len(digits) <= 12 {
			return &digits
		}
	}
	if m := e.phoneZero.FindString(joined); m != "" {
		return &m
	}
	if m := e.phoneBare.FindString(joined); m != "" {
		return &m
	}
	return nil
}

// extractBirthDate returns the raw date-shaped substring following a
// birth-date label. The match is returned exactly as captured; no
// plausibility check or reformatting is applied.
func (e *Extractor) extractBirthDate(joined string) *string {
	m := e.birthAnchor.FindStringSubmatch(joined)
	if m == nil {
		return nil
	}
	if d := e.datePattern.FindString(m[1]); d != "" {
		return &d
	}
	return nil
}

func (e *Extractor) textAfter(field string, lines []string) *string {
	re, ok := e.tails[field]
	if !ok {
		return nil
	}
	for _, ln := range lines {
		if m := re.FindStringSubmatch(ln); m != nil {
			if v := cleanText(m[1]); v != "" {
				return &v
			}
		}
	}
	return nil
}

// extractCulturalLevel is textAfter with one quirk carried over from real
// documents: the level and the foreign language often share a line, so the
// value is cut at the foreign-language label.
func (e *Extractor) extractCulturalLevel(lines []string) *string {
	re, ok := e.tails["cultural_level"]
	if !ok {
		return nil
	}
	for _, ln := range lines {
		if m := re.FindStringSubmatch(ln); m != nil {
			v := m[1]
			if e.flCut != nil {
				if loc := e.flCut.FindStringIndex(v); loc != nil {
					v = v[:loc[0]]
				}
			}
			if v = cleanText(v); v != "" {
				return &v
			}
		}
	}
	return nil
}

// cleanText strips leading/trailing punctuation, removes dot/ellipsis
// filler runs, and collapses whitespace.
func cleanText(s string) string {
	s = strings.Trim(s, " .:;,-_…")
	s = reDots.ReplaceAllString(s, " ")
	s = strings.NewReplacer(".", "", ",", "", "…", "").Replace(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func alternation(fragments []string) string {
	return strings.Join(fragments, "|")
}

func sortedKeys(m map[string]LabelSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
