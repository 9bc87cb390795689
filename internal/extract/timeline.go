package extract

import (
	"regexp"
	"strings"

	"resume-folio/internal/models"
)

const (
	maxHeaderLines = 2
	maxHeaderLen   = 100
	dateTrimCut    = " \t|,;:-–—()[]"
)

// "Senior Engineer at Acme", "Senior Engineer | Acme", "Engineer - Acme"
var headerSplitRe = regexp.MustCompile(`\s+(?:at|@|\||-|–|—)\s+|,\s+`)

// a header line joined this way already names both title and company
var fullHeaderRe = regexp.MustCompile(`\s+(?:at|@|\|)\s+`)

// entry is one dated record of an experience or education block.
type entry struct {
	header []string
	date   string
	body   []string
}

// timeline groups lines into one entry per date line. Up to two lines right
// above a date line (not crossing a blank line, bullet or earlier entry) form
// the header, or just one when it reads "Title at Company"; text left on the
// date line joins it. Lines below the date line
// up to the next header are the body.
func timeline(lines []string) []entry {
	type dated struct {
		idx      int
		date     string
		leftover string
	}
	var dates []dated
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if loc := dateRangeRe.FindStringIndex(line); loc != nil {
			dates = append(dates, dated{
				idx:      i,
				date:     strings.TrimSpace(line[loc[0]:loc[1]]),
				leftover: strings.Trim(line[:loc[0]]+" "+line[loc[1]:], dateTrimCut),
			})
		} else if singleDateRe.MatchString(line) {
			dates = append(dates, dated{idx: i, date: line})
		}
	}

	entries := make([]entry, len(dates))
	starts := make([]int, len(dates))
	for k, d := range dates {
		limit := 0
		if k > 0 {
			limit = dates[k-1].idx + 1
		}
		want := maxHeaderLines
		if d.leftover != "" {
			want--
		}
		start := d.idx
		for j := d.idx - 1; j >= limit && d.idx-j <= want; j-- {
			if !isHeaderLine(lines[j]) {
				break
			}
			start = j
			if j == d.idx-1 && fullHeaderRe.MatchString(lines[j]) {
				break
			}
		}
		starts[k] = start
		header := nonEmpty(lines[start:d.idx])
		if d.leftover != "" {
			header = append(header, strings.Join(strings.Fields(d.leftover), " "))
		}
		entries[k] = entry{header: header, date: d.date}
	}
	for k, d := range dates {
		end := len(lines)
		if k+1 < len(dates) {
			end = starts[k+1]
		}
		for _, line := range nonEmpty(lines[d.idx+1 : end]) {
			entries[k].body = append(entries[k].body, stripBullet(line))
		}
	}
	return entries
}

func isHeaderLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || isBullet(line) || runeLen(line) > maxHeaderLen {
		return false
	}
	// sentences belong to the previous description
	return !(strings.HasSuffix(line, ".") && wordCount(line) > 3)
}

// splitHeader breaks a single header line into its two parts.
func splitHeader(line string) (string, string) {
	if loc := headerSplitRe.FindStringIndex(line); loc != nil {
		return strings.TrimSpace(line[:loc[0]]), strings.TrimSpace(line[loc[1]:])
	}
	return line, ""
}

// Experience builds one record per dated entry. Entries without a title are
// skipped.
func Experience(lines []string) []models.Experience {
	out := []models.Experience{}
	for _, e := range timeline(lines) {
		var rec models.Experience
		switch len(e.header) {
		case 0:
			continue
		case 1:
			rec.Title, rec.Company = splitHeader(e.header[0])
		default:
			rec.Title, rec.Company = e.header[0], e.header[1]
		}
		if rec.Title == "" {
			continue
		}
		rec.Date = e.date
		body := e.body
		if len(e.header) > 2 {
			body = append(append([]string{}, e.header[2:]...), body...)
		}
		rec.Description = strings.Join(body, "\n")
		out = append(out, rec)
	}
	return out
}

// Education builds one record per dated entry, telling the institution and
// the degree apart by vocabulary when the order is reversed.
func Education(lines []string) []models.Education {
	out := []models.Education{}
	for _, e := range timeline(lines) {
		var first, second string
		switch len(e.header) {
		case 0:
			continue
		case 1:
			first, second = splitHeader(e.header[0])
		default:
			first, second = e.header[0], e.header[1]
		}

		rec := models.Education{Date: e.date}
		switch {
		case isDegree(first) && (second == "" || !isDegree(second)):
			rec.Degree, rec.Institution = first, second
		default:
			rec.Institution, rec.Degree = first, second
		}
		if rec.Degree == "" && len(e.body) > 0 && isDegree(e.body[0]) {
			rec.Degree = e.body[0]
		}
		if rec.Institution == "" && rec.Degree == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isDegree(s string) bool {
	return s != "" && degreeRe.MatchString(s) && !institutionRe.MatchString(s)
}
