package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"docrag/internal/domain"
)

const (
	// DefaultSection labels content seen before any heading.
	DefaultSection = "Document"

	sectionMaxChars = 100
	minBlockChars   = 3
	minTableChars   = 5
	minSpanChars    = 10
	lineFlushChars  = 200
	lineFlushCount  = 5
)

var blankLineSplit = regexp.MustCompile(`\n\s*\n`)

// Collector flattens a parsed document into elements in reading order:
// pages ascending, paragraphs and blocks before tables within a page. The
// section heading in force is threaded through the walk and persists across
// page boundaries. Structured content is preferred; documents with only raw
// lines fall back to line grouping, and documents with only full text fall
// back to blank-line splitting.
type Collector struct{}

func NewCollector() *Collector {
	return &Collector{}
}

// Collect returns the document's elements in reading order. An empty result
// means the document carried no extractable content.
func (c *Collector) Collect(doc *Document) []domain.Element {
	var elements []domain.Element
	section := DefaultSection

	for i := range doc.Pages {
		pageNum := doc.Pages[i].PageNumber
		if pageNum <= 0 {
			pageNum = i + 1
		}
		elements, section = c.collectPage(elements, section, doc, &doc.Pages[i], pageNum)
	}

	if len(elements) == 0 && strings.TrimSpace(doc.Text) != "" {
		elements = c.collectLineGroups(doc)
	}
	if len(elements) == 0 && strings.TrimSpace(doc.Text) != "" {
		elements = c.collectTextSplits(doc.Text)
	}
	return elements
}

// collectPage emits the structured content of one page and returns the
// section state after the last block. Tables are tagged with the section in
// force at the point they appear.
func (c *Collector) collectPage(elements []domain.Element, section string, doc *Document, page *Page, pageNum int) ([]domain.Element, string) {
	for _, blocks := range [][]Block{page.Paragraphs, page.Blocks} {
		for i := range blocks {
			text := blocks[i].Anchor.ResolveText(doc.Text)
			if len(text) < minBlockChars {
				continue
			}
			if IsHeader(text) {
				section = truncateSection(text)
			}
			elements = append(elements, domain.Element{
				PageNumber: pageNum,
				Kind:       domain.KindText,
				Body:       text,
				Section:    section,
			})
		}
	}

	for i := range page.Tables {
		body := SerializeTable(&page.Tables[i], doc.Text)
		if len(body) < minTableChars {
			body = page.Tables[i].Anchor.ResolveText(doc.Text)
		}
		if body == "" {
			continue
		}
		elements = append(elements, domain.Element{
			PageNumber: pageNum,
			Kind:       domain.KindTable,
			Body:       body,
			Section:    section,
		})
	}
	return elements, section
}

// collectLineGroups is the fallback for OCR-only parses: consecutive raw
// lines are buffered and flushed into text elements once a buffer reaches
// lineFlushChars characters or lineFlushCount lines, with the header check
// applied to each flushed buffer. A page's trailing remainder is kept when
// it is at least minSpanChars long.
func (c *Collector) collectLineGroups(doc *Document) []domain.Element {
	var elements []domain.Element
	section := DefaultSection

	for i := range doc.Pages {
		page := &doc.Pages[i]
		pageNum := page.PageNumber
		if pageNum <= 0 {
			pageNum = i + 1
		}

		var buf []string
		bufLen := 0
		for j := range page.Lines {
			text := page.Lines[j].Anchor.ResolveText(doc.Text)
			if text == "" {
				continue
			}
			buf = append(buf, text)
			bufLen += len(text)
			if bufLen >= lineFlushChars || len(buf) >= lineFlushCount {
				combined := strings.Join(buf, "\n")
				if IsHeader(combined) {
					section = truncateSection(combined)
				}
				elements = append(elements, domain.Element{
					PageNumber: pageNum,
					Kind:       domain.KindText,
					Body:       combined,
					Section:    section,
				})
				buf, bufLen = nil, 0
			}
		}
		if len(buf) > 0 {
			combined := strings.Join(buf, "\n")
			if len(combined) >= minSpanChars {
				elements = append(elements, domain.Element{
					PageNumber: pageNum,
					Kind:       domain.KindText,
					Body:       combined,
					Section:    section,
				})
			}
		}
	}
	return elements
}

// collectTextSplits is the last-resort fallback: split the full document
// text on blank-line boundaries, keeping spans of at least minSpanChars,
// all on page 1.
func (c *Collector) collectTextSplits(fullText string) []domain.Element {
	var elements []domain.Element
	for _, part := range blankLineSplit.Split(strings.TrimSpace(fullText), -1) {
		part = strings.TrimSpace(part)
		if len(part) < minSpanChars {
			continue
		}
		elements = append(elements, domain.Element{
			PageNumber: 1,
			Kind:       domain.KindText,
			Body:       part,
			Section:    DefaultSection,
		})
	}
	return elements
}

func truncateSection(text string) string {
	t := strings.TrimSpace(text)
	if len(t) > sectionMaxChars {
		cut := sectionMaxChars
		for cut > 0 && !utf8.RuneStart(t[cut]) {
			cut--
		}
		t = t[:cut]
	}
	return t
}
