// backend/internal/scraping/extract/detail.go
package extract

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

const (
	minSectionLen           = 50
	maxSectionLen           = 2000
	minBusinessDescription  = 100
	minDetailedFinancialLen = 50
	minFinancialDetailLen   = 20
	businessDescriptionKey  = "business_description"
)

// sectionHeadings is the fixed table of known detail-page headings, in
// scan order, mapped to their canonical section keys.
var sectionHeadings = []struct {
	Label string // lowercase Swedish heading as it appears on the page
	Key   string
}{
	{"kort om företaget", "company_brief"},
	{"potential", "potential"},
	{"anledning till försäljning", "reason_for_sale"},
	{"prisidé", "price_idea"},
	{"sammanfattning", "summary"},
	{"beskrivning", "description"},
	{"verksamhet", "business_activity"},
	{"marknad", "market"},
	{"konkurrens", "competition"},
}

// fullDescriptionOrder fixes which sections compose the synthesized full
// description, and in which order.
var fullDescriptionOrder = []string{
	"company_brief", "description", "business_activity", businessDescriptionKey,
}

var (
	financialKeywords = []string{
		"omsättning", "resultat", "vinst", "lönsam", "ebitda",
		"kassaflöde", "mkr", "tkr", "miljoner",
	}
	revenueKeywords = []string{"omsättning", "intäkter"}
	profitKeywords  = []string{"resultat", "vinst", "lönsam", "ebitda"}

	employeeKeywords = []string{"anställda", "medarbetare", "personal"}

	// Phone patterns are tried in order; the first match wins.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+46[ \-]?\d(?:[ \-]?\d){6,10}`),
		regexp.MustCompile(`\b0\d{1,3}[ \-]?\d{5,8}\b`),
		regexp.MustCompile(`\b\d{2,4}[ \-]\d{2,3}[ \-]\d{2,4}\b`),
	}
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	numberPattern     = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// phoneSelectors and emailSelectors are tried in order before falling
// back to regex scanning of the whole page text.
var (
	phoneSelectors = []string{
		`a[href^="tel:"]`,
		"span.broker-phone",
		"div.contact-info span.phone",
	}
	emailSelectors = []string{
		`a[href^="mailto:"]`,
		"span.broker-email",
		"div.contact-info span.email",
	}
)

// contentContainers are the candidate blocks holding listing narrative.
var contentContainers = "div.object-description, div.object-content, article, main"

// financialContainers are the designated blocks scanned for long-form
// financial text, in addition to the main content area.
var financialContainers = "div.financials, table.key-figures, ul.object-facts"

// ExtractDetail parses a listing's detail page and merges supplementary
// fields into rec. Fields already populated by the listing stage are
// never overwritten; the detailed financial fields are additive. All
// extraction is best-effort: a missing match leaves the field unset.
func ExtractDetail(detailHTML []byte, rec domain.ListingRecord) domain.ListingRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(detailHTML))
	if err != nil {
		return rec
	}

	pageText := collapseWhitespace(doc.Find("body").Text())

	extractSections(doc, pageText, &rec)
	synthesizeFullDescription(&rec)
	extractFinancialDetails(doc, &rec)
	extractContacts(doc, pageText, &rec)
	extractEmployeeCount(doc, &rec)

	if rec.Description == "" {
		if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			rec.Description = strings.TrimSpace(meta)
		}
	}

	return rec
}

func extractSections(doc *goquery.Document, pageText string, rec *domain.ListingRecord) {
	for _, h := range sectionHeadings {
		if hasSection(rec, h.Key) {
			continue
		}
		_, end := indexFold(pageText, h.Label)
		if end < 0 {
			continue
		}
		span := strings.TrimLeft(pageText[end:], ":–- ")
		span = truncateRunes(span, maxSectionLen)
		span = strings.TrimSpace(span)
		if utf8.RuneCountInString(span) < minSectionLen {
			continue
		}
		rec.StructuredSections = append(rec.StructuredSections, domain.Section{
			Key:  h.Key,
			Text: span,
		})
	}

	// Narrative paragraphs that survive the noise filter become one
	// synthetic business_description section.
	if hasSection(rec, businessDescriptionKey) {
		return
	}
	var kept []string
	doc.Find(contentContainers).Find("p, li").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if v := ClassifyText(text); !v.Noise {
			kept = append(kept, text)
		}
	})
	joined := strings.Join(kept, " ")
	if len(joined) > minBusinessDescription {
		rec.StructuredSections = append(rec.StructuredSections, domain.Section{
			Key:  businessDescriptionKey,
			Text: joined,
		})
	}
}

func synthesizeFullDescription(rec *domain.ListingRecord) {
	if rec.FullDescription != "" {
		return
	}
	var parts []string
	for _, key := range fullDescriptionOrder {
		for _, sec := range rec.StructuredSections {
			if sec.Key == key {
				parts = append(parts, sec.Text)
				break
			}
		}
	}
	rec.FullDescription = strings.Join(parts, " ")
}

func extractFinancialDetails(doc *goquery.Document, rec *domain.ListingRecord) {
	scan := func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		lower := strings.ToLower(text)
		if !containsAny(lower, financialKeywords) {
			return
		}
		if len(text) > minDetailedFinancialLen {
			switch {
			case containsAny(lower, revenueKeywords):
				setIfEmpty(&rec.Financial.DetailedRevenue, text)
			case containsAny(lower, profitKeywords):
				setIfEmpty(&rec.Financial.DetailedProfit, text)
			}
		}
		if len(text) > minFinancialDetailLen {
			// The same text can appear in more than one container; the
			// list keeps duplicates.
			rec.Financial.FinancialDetails = append(rec.Financial.FinancialDetails, text)
		}
	}
	doc.Find(financialContainers).Find("p, li, td").Each(scan)
	doc.Find(contentContainers).Find("p, li, td").Each(scan)
}

func extractContacts(doc *goquery.Document, pageText string, rec *domain.ListingRecord) {
	if rec.Contact.Phone == "" {
		for _, sel := range phoneSelectors {
			node := doc.Find(sel).First()
			if node.Length() == 0 {
				continue
			}
			phone := strings.TrimSpace(node.Text())
			if href, ok := node.Attr("href"); ok && strings.HasPrefix(href, "tel:") {
				phone = strings.TrimPrefix(href, "tel:")
			}
			if phone != "" {
				rec.Contact.Phone = phone
				break
			}
		}
	}
	if rec.Contact.Phone == "" {
		for _, p := range phonePatterns {
			if m := p.FindString(pageText); m != "" {
				rec.Contact.Phone = strings.TrimSpace(m)
				break
			}
		}
	}

	if rec.Contact.Email == "" {
		for _, sel := range emailSelectors {
			node := doc.Find(sel).First()
			if node.Length() == 0 {
				continue
			}
			email := strings.TrimSpace(node.Text())
			if href, ok := node.Attr("href"); ok && strings.HasPrefix(href, "mailto:") {
				email = strings.TrimPrefix(href, "mailto:")
			}
			if email != "" {
				rec.Contact.Email = email
				break
			}
		}
	}
	if rec.Contact.Email == "" {
		if m := emailPattern.FindString(pageText); m != "" {
			rec.Contact.Email = m
		}
	}

	broker := doc.Find("div.broker-info").First()
	setIfEmpty(&rec.Contact.BrokerName, strings.TrimSpace(broker.Find("span.broker-name").Text()))
	setIfEmpty(&rec.Contact.BrokerCompany, strings.TrimSpace(broker.Find("span.broker-company").Text()))
	if src, ok := broker.Find("img.broker-photo").Attr("src"); ok {
		setIfEmpty(&rec.Contact.BrokerPhoto, src)
	}
	if src, ok := broker.Find("img.company-logo").Attr("src"); ok {
		setIfEmpty(&rec.Contact.CompanyLogo, src)
	}
}

func extractEmployeeCount(doc *goquery.Document, rec *domain.ListingRecord) {
	if rec.EmployeeCount != "" {
		return
	}
	doc.Find("p, li, td, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(collapseWhitespace(s.Text()))
		if !containsAny(text, employeeKeywords) {
			return true
		}
		if n := numberPattern.FindString(text); n != "" {
			rec.EmployeeCount = n + " employees"
			return false
		}
		return true
	})
}

func hasSection(rec *domain.ListingRecord, key string) bool {
	for _, sec := range rec.StructuredSections {
		if sec.Key == key {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// indexFold returns the byte bounds in s of the first case-insensitive
// occurrence of substr, or (-1, -1). Matching folds rune by rune, so the
// returned offsets are valid for s even when case mapping changes a
// rune's width.
func indexFold(s, substr string) (int, int) {
	if substr == "" {
		return -1, -1
	}
	for i := 0; i < len(s); {
		if end, ok := foldMatch(s[i:], substr); ok {
			return i, i + end
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return -1, -1
}

func foldMatch(s, target string) (int, bool) {
	i := 0
	for _, tr := range target {
		r, w := utf8.DecodeRuneInString(s[i:])
		if w == 0 || unicode.ToLower(r) != unicode.ToLower(tr) {
			return 0, false
		}
		i += w
	}
	return i, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
