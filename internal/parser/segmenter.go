package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-folio/internal/models"
)

const (
	maxHeadingLen   = 40
	maxHeadingWords = 6
)

var (
	bulletRe    = regexp.MustCompile(models.BulletRegex)
	numberingRe = regexp.MustCompile(`^(?:\d{1,2}[.)]|[IVX]{1,4}\.)\s+`)
	dateRangeRe = regexp.MustCompile(models.DateRangeRegex)

	// labels that can win a heading, in tie-break reporting order
	headingLabels = []models.SectionLabel{
		models.LabelContact,
		models.LabelSummary,
		models.LabelExperience,
		models.LabelEducation,
		models.LabelSkills,
		models.LabelProjects,
	}

	// keywords that usually label a line inside a section rather than start one
	subLabelKeywords = map[string]bool{
		"technologies":          true,
		"tech stack":            true,
		"tools":                 true,
		"expertise":             true,
		"programming languages": true,
	}

	smallWords = map[string]bool{
		"and": true, "&": true, "of": true, "the": true, "in": true, "for": true,
		"a": true, "an": true, "to": true, "with": true, "at": true, "on": true, "me": true,
	}
)

// Segmenter labels extracted text with resume sections.
type Segmenter struct{}

func (Segmenter) Segment(text models.ExtractedText) ([]models.SectionBlock, []string) {
	return Segment(text)
}

type segmentState struct {
	label    models.SectionLabel
	heading  string
	lines    []string
	blocks   []models.SectionBlock
	warnings []string
}

// Segment splits text into labelled blocks in document order. Lines before
// the first heading form the contact block, which also feeds the summary.
// Blocks whose heading is unrecognised or ambiguous are dropped with a warning.
func Segment(text models.ExtractedText) ([]models.SectionBlock, []string) {
	state := segmentState{label: models.LabelContact}
	for i, line := range text.Lines {
		processLine(line, nextContentLine(text.Lines[i+1:]), &state)
	}
	handleSectionChange(&state, "", "") // flush the last block
	if state.blocks == nil {
		state.blocks = []models.SectionBlock{}
	}
	return state.blocks, state.warnings
}

func nextContentLine(lines []string) string {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && l != models.PageBreak {
			return l
		}
	}
	return ""
}

func processLine(line, next string, state *segmentState) {
	line = strings.TrimSpace(line)
	if line == "" || line == models.PageBreak {
		state.lines = append(state.lines, "")
		return
	}
	// a quiet heading followed by a date range is a job or degree title
	if h, ok := classifyHeading(line); ok && (h.strong || h.rest != "" || !dateRangeRe.MatchString(next)) {
		handleSectionChange(state, h.label, h.text)
		if h.warning != "" {
			state.warnings = append(state.warnings, h.warning)
		}
		if h.rest != "" {
			state.lines = append(state.lines, h.rest)
		}
		return
	}
	state.lines = append(state.lines, line)
}

// handleSectionChange stores the current block if it has content and opens the next one.
func handleSectionChange(state *segmentState, next models.SectionLabel, heading string) {
	lines := trimBlankLines(state.lines)
	if state.label != models.LabelUnknown && len(lines) > 0 {
		state.blocks = append(state.blocks, models.SectionBlock{
			Label:   state.label,
			Heading: state.heading,
			Lines:   lines,
		})
	}
	state.label = next
	state.heading = heading
	state.lines = nil
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	if start == end {
		return nil
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}

type heading struct {
	label   models.SectionLabel
	text    string
	keyword string
	rest    string
	warning string
	strong  bool
}

// classifyHeading recognises a standalone heading line, or an inline one such
// as "Skills: Go, Python" whose remainder becomes the first content line.
func classifyHeading(line string) (heading, bool) {
	i := strings.IndexByte(line, ':')
	if i <= 0 || i == len(line)-1 {
		return matchHeading(line)
	}
	h, ok := matchHeading(line[:i])
	if !ok || h.label == models.LabelUnknown || subLabelKeywords[h.keyword] {
		return heading{}, false
	}
	h.rest = strings.TrimSpace(line[i+1:])
	return h, true
}

func matchHeading(raw string) (heading, bool) {
	text := cleanHeading(raw)
	if text == "" || utf8.RuneCountInString(text) > maxHeadingLen {
		return heading{}, false
	}
	if strings.ContainsAny(text, "@0123456789") {
		return heading{}, false
	}
	upper := mostlyUpper(text)
	if !upper && !titleCase(text) {
		return heading{}, false
	}
	// list items and unsupported sections need a louder heading
	strong := upper || strings.HasSuffix(strings.TrimSpace(raw), ":")
	bulleted := bulletRe.MatchString(raw)
	words := headingWords(text)
	if len(words) == 0 || len(words) > maxHeadingWords {
		return heading{}, false
	}

	covered := make([]bool, len(words))
	longest := make(map[models.SectionLabel]int)
	keywords := make(map[models.SectionLabel]string)
	for label, list := range models.SectionKeywords {
		for _, kw := range list {
			kwWords := strings.Fields(kw)
			for p := 0; p+len(kwWords) <= len(words); p++ {
				if !equalWords(words[p:p+len(kwWords)], kwWords) {
					continue
				}
				for j := range kwWords {
					covered[p+j] = true
				}
				if len(kw) > longest[label] {
					longest[label] = len(kw)
					keywords[label] = kw
				}
			}
		}
	}
	if len(longest) == 0 {
		return heading{}, false
	}
	extra := 0
	for i, w := range words {
		if !covered[i] && !models.HeadingModifiers[w] {
			extra++
		}
	}
	// "Education Specialist" is a job title unless set off like a heading
	if extra > 1 || (extra == 1 && !strong) {
		return heading{}, false
	}

	h := heading{text: text, strong: strong}
	var tied []string
	best := 0
	for _, label := range headingLabels {
		n := longest[label]
		switch {
		case n == 0:
		case n > best:
			best = n
			h.label = label
			h.keyword = keywords[label]
			tied = []string{string(label)}
		case n == best:
			tied = append(tied, string(label))
		}
	}
	switch {
	case best == 0:
		h.label = models.LabelUnknown
		h.keyword = keywords[models.LabelUnknown]
		h.warning = fmt.Sprintf("section %q has no extractor; dropped", text)
	case len(tied) > 1:
		h.label = models.LabelUnknown
		h.warning = fmt.Sprintf("ambiguous heading %q matches %s; section dropped", text, strings.Join(tied, " and "))
	}
	if (bulleted || h.label == models.LabelUnknown) && !strong {
		return heading{}, false
	}
	return h, true
}

// cleanHeading strips bullets, numbering and trailing punctuation, and joins
// letter-spaced headings such as "S K I L L S".
func cleanHeading(raw string) string {
	text := strings.TrimSpace(bulletRe.ReplaceAllString(raw, ""))
	text = numberingRe.ReplaceAllString(text, "")
	text = strings.TrimRight(text, " :-–—|.")
	text = strings.Trim(text, "#*_=~ ")

	fields := strings.Fields(text)
	if len(fields) >= 4 {
		spaced := true
		for _, f := range fields {
			if utf8.RuneCountInString(f) != 1 {
				spaced = false
				break
			}
		}
		if spaced {
			return strings.Join(fields, "")
		}
	}
	return strings.Join(fields, " ")
}

func mostlyUpper(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 0 && upper*10 >= letters*7
}

// titleCase requires every word to start upper case, small connectors aside.
func titleCase(text string) bool {
	for i, word := range strings.Fields(text) {
		r, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsLetter(r) || unicode.IsUpper(r) {
			continue
		}
		if i == 0 || !smallWords[strings.ToLower(word)] {
			return false
		}
	}
	return true
}

// headingWords lower-cases text, spells "&" as "and" and drops punctuation.
func headingWords(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "&", " and ")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
