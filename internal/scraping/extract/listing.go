// backend/internal/scraping/extract/listing.go
package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

// titlePrefix is catalogue boilerplate prepended to card titles.
const titlePrefix = "läs mer om "

var (
	trailingIDPattern = regexp.MustCompile(`(\d+)/?$`)
	pageNumberPattern = regexp.MustCompile(`(?:sida|page)[/=](\d+)`)
)

// PageResult is the outcome of parsing one catalogue page.
type PageResult struct {
	Records []domain.ListingRecord
	// HasNext reports a next-page marker on the page. NextPage carries
	// the page number parsed from the pagination link, 0 when the link
	// carried none (the caller then increments its own counter).
	HasNext  bool
	NextPage int
}

// ExtractListings parses a catalogue page into partially populated
// listing records plus the pagination hint. Cards without a title are
// silently skipped. Malformed structured data never fails a card; it
// falls back to raw fact scraping.
func ExtractListings(pageHTML []byte, baseURL string) (PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return PageResult{}, err
	}

	var res PageResult
	doc.Find("div.object-list-item").Each(func(_ int, card *goquery.Selection) {
		rec, ok := extractCard(card, baseURL)
		if ok {
			res.Records = append(res.Records, rec)
		}
	})

	res.HasNext, res.NextPage = nextPageHint(doc)
	return res, nil
}

func extractCard(card *goquery.Selection, baseURL string) (domain.ListingRecord, bool) {
	rec := domain.ListingRecord{
		ListingType: domain.ListingRegular,
		ScrapedAt:   time.Now(),
	}

	titleLink := card.Find("h3.object-title a").First()
	rec.Title = cleanTitle(titleLink.Text())
	if rec.Title == "" {
		return rec, false
	}

	if href, ok := titleLink.Attr("href"); ok {
		rec.URL = resolveURL(baseURL, href)
	}

	rec.Category = strings.TrimSpace(card.Find("span.object-category").First().Text())
	rec.Location = strings.TrimSpace(card.Find("span.object-location").First().Text())

	if card.Find("span.premium-tag").Length() > 0 {
		rec.ListingType = domain.ListingPremium
	}

	// Structured data first; the raw facts list fills whatever is left.
	applyStructuredData(card, &rec)
	applyFactList(card, &rec)

	broker := card.Find("div.broker-info").First()
	rec.Contact.BrokerName = strings.TrimSpace(broker.Find("span.broker-name").Text())
	rec.Contact.BrokerCompany = strings.TrimSpace(broker.Find("span.broker-company").Text())
	if src, ok := broker.Find("img.broker-photo").Attr("src"); ok {
		rec.Contact.BrokerPhoto = resolveURL(baseURL, src)
	}
	if src, ok := broker.Find("img.company-logo").Attr("src"); ok {
		rec.Contact.CompanyLogo = resolveURL(baseURL, src)
	}

	if rec.ID == "" {
		rec.ID = productID(rec.Title, rec.URL)
	}
	return rec, true
}

// ldProduct is the subset of a JSON-LD product block the card carries.
type ldProduct struct {
	Type        string     `json:"@type"`
	Description string     `json:"description"`
	ProductID   flexString `json:"productID"`
	Offers      struct {
		Price     flexString `json:"price"`
		LowPrice  flexString `json:"lowPrice"`
		HighPrice flexString `json:"highPrice"`
	} `json:"offers"`
}

// flexString accepts JSON string and number values; structured-data
// blocks in the wild use both.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = flexString(t)
	case float64:
		*s = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	}
	return nil
}

func applyStructuredData(card *goquery.Selection, rec *domain.ListingRecord) {
	card.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var prod ldProduct
		if err := json.Unmarshal([]byte(s.Text()), &prod); err != nil {
			// Malformed structured data downgrades to fact scraping.
			return true
		}
		if prod.Description != "" {
			rec.Description = strings.TrimSpace(prod.Description)
		}
		if prod.ProductID != "" {
			rec.ID = string(prod.ProductID)
		}
		switch {
		case prod.Offers.Price != "":
			rec.Financial.Price = string(prod.Offers.Price) + " SEK"
		case prod.Offers.LowPrice != "" && prod.Offers.HighPrice != "":
			rec.Financial.Price = string(prod.Offers.LowPrice) + "-" + string(prod.Offers.HighPrice) + " SEK"
		}
		return rec.ID == "" // keep scanning until a product id shows up
	})
}

// factLabels maps the fixed Swedish fact labels to record fields.
func applyFactList(card *goquery.Selection, rec *domain.ListingRecord) {
	card.Find("ul.object-facts li").Each(func(_ int, li *goquery.Selection) {
		text := strings.TrimSpace(li.Text())
		label, value, found := strings.Cut(text, ":")
		if !found {
			return
		}
		label = strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "omsättning"):
			setIfEmpty(&rec.Financial.Revenue, value)
		case strings.Contains(label, "resultat"):
			setIfEmpty(&rec.Financial.ProfitStatus, value)
		case strings.Contains(label, "pris"):
			setIfEmpty(&rec.Financial.Price, value)
		case strings.Contains(label, "anställda"):
			setIfEmpty(&rec.EmployeeCount, value)
		}
	})
}

func cleanTitle(s string) string {
	t := strings.TrimSpace(s)
	if len(t) >= len(titlePrefix) && strings.EqualFold(t[:len(titlePrefix)], titlePrefix) {
		t = strings.TrimSpace(t[len(titlePrefix):])
	}
	return t
}

// productID extracts the trailing numeric segment of the detail URL, or
// derives a stable key from title+URL when the URL carries none.
func productID(title, detailURL string) string {
	if detailURL != "" {
		if m := trailingIDPattern.FindStringSubmatch(strings.TrimSuffix(detailURL, "/")); m != nil {
			return m[1]
		}
	}
	return DerivedID(title, detailURL)
}

// DerivedID is the stable fallback key for a listing without a usable
// numeric id of its own: a short hash over title and detail URL. The
// orchestrator also re-keys with it when two distinct listings extract
// the same trailing number.
func DerivedID(title, detailURL string) string {
	sum := sha256.Sum256([]byte(title + "|" + detailURL))
	return hex.EncodeToString(sum[:])[:12]
}

func resolveURL(baseURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func nextPageHint(doc *goquery.Document) (bool, int) {
	link := doc.Find(`ul.pagination a[rel="next"], a.pagination-next`).First()
	if link.Length() == 0 {
		return false, 0
	}
	href, _ := link.Attr("href")
	if m := pageNumberPattern.FindStringSubmatch(href); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return true, n
		}
	}
	return true, 0
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
