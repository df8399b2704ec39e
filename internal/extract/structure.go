package extract

import (
	"fmt"
	"regexp"
	"strings"

	"paperchat/internal/models"
	"paperchat/internal/query"
	"paperchat/internal/util"
)

// PageText is one page of extracted plain text, 1-based.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

var (
	numberedHeading = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(\S.*)$`)
	figureCaption   = regexp.MustCompile(`(?i)^(?:figure|fig\.?)\s*(\d+)[.:]?\s+(\S.*)$`)
	tableCaption    = regexp.MustCompile(`(?i)^(?:table|tab\.?)\s*(\d+)[.:]?\s+(\S.*)$`)
	// Display equations in extracted text usually end with their number tag,
	// e.g. "E = mc^2 (3)".
	equationLine   = regexp.MustCompile(`^(.*[=<>≤≥≈].*)\((\d+)\)\s*$`)
	referenceEntry = regexp.MustCompile(`^\[(\d+)\]\s*(\S.*)$`)
	yearPattern    = regexp.MustCompile(`(19|20)\d{2}`)
)

var headingTags = map[string]string{
	"abstract":     query.BucketAbstract,
	"introduction": query.BucketIntroduction,
	"background":   query.BucketIntroduction,
	"related work": query.BucketOther,
	"method":       query.BucketMethods,
	"methods":      query.BucketMethods,
	"methodology":  query.BucketMethods,
	"approach":     query.BucketMethods,
	"experiment":   query.BucketExperiments,
	"experiments":  query.BucketExperiments,
	"evaluation":   query.BucketExperiments,
	"result":       query.BucketResults,
	"results":      query.BucketResults,
	"discussion":   query.BucketDiscussion,
	"conclusion":   query.BucketConclusion,
	"conclusions":  query.BucketConclusion,
	"references":   query.BucketReferences,
	"bibliography": query.BucketReferences,
}

// Structure segments a paper's per-page plain text into content units with
// structural tags and locators, plus the title/author metadata it can read
// off the first page. Unit order follows document order.
func Structure(paperID string, pages []PageText) ([]models.ContentUnit, models.PaperMetadata) {
	meta := models.PaperMetadata{PaperID: paperID}
	units := make([]models.ContentUnit, 0, 64)
	position := 0

	add := func(kind models.ContentKind, text, tag, locator string) {
		text = util.SanitizeText(text)
		if text == "" {
			return
		}
		units = append(units, models.ContentUnit{
			UnitID:        util.SHA256Hex([]byte(fmt.Sprintf("%s:%d:%s", paperID, position, text))),
			PaperID:       paperID,
			Kind:          kind,
			Text:          text,
			StructuralTag: tag,
			Position:      position,
			Locator:       locator,
		})
		position++
	}

	currentTag := query.BucketOther
	currentSection := ""
	inReferences := false
	var para strings.Builder
	paraPage := 0

	flushPara := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		locator := ""
		if paraPage > 0 {
			locator = fmt.Sprintf("page %d", paraPage)
		}
		add(models.KindParagraph, text, currentTag, locator)
	}

	for pageIdx, page := range pages {
		lines := strings.Split(page.Text, "\n")
		for lineIdx, raw := range lines {
			line := strings.TrimSpace(raw)
			if pageIdx == 0 && meta.Title == "" && line != "" {
				meta.Title = util.Snippet(line, 200)
				continue
			}
			if pageIdx == 0 && meta.Authors == "" && meta.Title != "" && line != "" && lineIdx < 8 {
				meta.Authors = util.Snippet(line, 200)
				add(models.KindAuthor, meta.Authors, query.BucketAuthors, "")
				continue
			}
			if line == "" {
				if inReferences {
					flushRefBuffer(&para, add)
				} else {
					flushPara()
				}
				continue
			}

			if inReferences {
				if m := referenceEntry.FindStringSubmatch(line); m != nil {
					flushRefBuffer(&para, add)
					para.WriteString(line)
					continue
				}
				para.WriteString(" " + line)
				continue
			}

			if tag, title, locator, ok := matchHeading(line); ok {
				flushPara()
				currentTag = tag
				currentSection = title
				if tag == query.BucketReferences {
					inReferences = true
					continue
				}
				add(models.KindSection, currentSection, currentTag, locator)
				continue
			}
			if m := figureCaption.FindStringSubmatch(line); m != nil {
				flushPara()
				add(models.KindFigure, line, "", "figure "+m[1])
				continue
			}
			if m := tableCaption.FindStringSubmatch(line); m != nil {
				flushPara()
				add(models.KindTable, line, "", "table "+m[1])
				continue
			}
			if m := equationLine.FindStringSubmatch(line); m != nil {
				flushPara()
				add(models.KindEquation, strings.TrimSpace(m[1]), "", "equation "+m[2])
				continue
			}

			if para.Len() == 0 {
				paraPage = page.Page
			} else {
				para.WriteString(" ")
			}
			para.WriteString(line)
		}
		if !inReferences {
			flushPara()
		}
	}
	if inReferences {
		flushRefBuffer(&para, add)
	}
	flushPara()

	return units, meta
}

// flushRefBuffer emits one buffered reference-list entry.
func flushRefBuffer(para *strings.Builder, add func(models.ContentKind, string, string, string)) {
	text := strings.TrimSpace(para.String())
	para.Reset()
	if text == "" {
		return
	}
	locator := ""
	if m := referenceEntry.FindStringSubmatch(text); m != nil {
		locator = "reference " + m[1]
	}
	add(models.KindReference, text, query.BucketReferences, locator)
}

// matchHeading recognizes numbered headings ("2.1 Model Architecture") and
// the conventional section names papers use.
func matchHeading(line string) (tag, title, locator string, ok bool) {
	low := strings.ToLower(strings.TrimRight(line, ".:"))
	if t, found := headingTags[low]; found {
		return t, line, "", true
	}
	m := numberedHeading.FindStringSubmatch(line)
	if m == nil || len(line) > 80 {
		return "", "", "", false
	}
	title = strings.TrimSpace(m[2])
	lowTitle := strings.ToLower(strings.TrimRight(title, ".:"))
	tag = query.BucketOther
	for name, t := range headingTags {
		if strings.HasPrefix(lowTitle, name) {
			tag = t
			break
		}
	}
	return tag, line, "section " + m[1], true
}

// WellFormedReference reports whether a reference entry looks like a real
// bibliography item: long enough to carry a title and carrying a year.
func WellFormedReference(text string) bool {
	if len(strings.TrimSpace(text)) < 20 {
		return false
	}
	return yearPattern.MatchString(text)
}
