// backend/internal/scraping/extract/listing_test.go
package extract

import (
	"strings"
	"testing"
)

const baseURL = "https://www.bolagsplatsen.se"

func card(title, href, extra string) string {
	link := `<a href="` + href + `">` + title + `</a>`
	if href == "" {
		link = `<a>` + title + `</a>`
	}
	return `<div class="object-list-item">
		<h3 class="object-title">` + link + `</h3>` + extra + `
	</div>`
}

func page(body string) []byte {
	return []byte(`<html><body>` + body + `</body></html>`)
}

func TestExtractListingsCountsWellFormedCards(t *testing.T) {
	html := page(
		card("Café i Stockholm", "/objekt/cafe-stockholm-12345", "") +
			card("Bygg och anläggning", "/objekt/bygg-67890", "") +
			card("", "/objekt/no-title-111", "") + // silently skipped
			card("E-handel inom heminredning", "/objekt/ehandel-222", ""),
	)

	res, err := ExtractListings(html, baseURL)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(res.Records))
	}
	if res.HasNext {
		t.Error("page without pagination marker should not signal a next page")
	}
	if got := res.Records[0].URL; got != baseURL+"/objekt/cafe-stockholm-12345" {
		t.Errorf("detail URL not resolved: %q", got)
	}
	if res.Records[0].ScrapedAt.IsZero() {
		t.Error("ScrapedAt not stamped")
	}
}

func TestExtractListingsPaginationHint(t *testing.T) {
	html := page(
		card("Restaurang i Malmö", "/objekt/resto-1", "") +
			`<ul class="pagination"><a rel="next" href="/foretag-till-salu/alla/sida/7">Nästa</a></ul>`,
	)

	res, err := ExtractListings(html, baseURL)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if !res.HasNext {
		t.Fatal("expected next-page signal")
	}
	if res.NextPage != 7 {
		t.Errorf("NextPage = %d, want 7", res.NextPage)
	}
}

func TestExtractListingsStripsTitlePrefix(t *testing.T) {
	html := page(card("Läs mer om Hotell vid kusten", "/objekt/hotell-99", ""))

	res, _ := ExtractListings(html, baseURL)
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if got := res.Records[0].Title; got != "Hotell vid kusten" {
		t.Errorf("title = %q, want boilerplate prefix stripped", got)
	}
}

func TestExtractListingsStructuredData(t *testing.T) {
	tests := []struct {
		name      string
		ld        string
		wantPrice string
		wantID    string
		wantDesc  string
	}{
		{
			name:      "single price",
			ld:        `{"@type":"Product","description":"Lönsamt företag till salu","productID":"55501","offers":{"price":1500000}}`,
			wantPrice: "1500000 SEK",
			wantID:    "55501",
			wantDesc:  "Lönsamt företag till salu",
		},
		{
			name:      "price range",
			ld:        `{"@type":"Product","productID":"55502","offers":{"lowPrice":"500000","highPrice":"700000"}}`,
			wantPrice: "500000-700000 SEK",
			wantID:    "55502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := page(card("Verksamhet", "/objekt/v", `<script type="application/ld+json">`+tt.ld+`</script>`))
			res, _ := ExtractListings(html, baseURL)
			if len(res.Records) != 1 {
				t.Fatalf("got %d records", len(res.Records))
			}
			rec := res.Records[0]
			if rec.Financial.Price != tt.wantPrice {
				t.Errorf("price = %q, want %q", rec.Financial.Price, tt.wantPrice)
			}
			if rec.ID != tt.wantID {
				t.Errorf("id = %q, want %q", rec.ID, tt.wantID)
			}
			if tt.wantDesc != "" && rec.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", rec.Description, tt.wantDesc)
			}
		})
	}
}

func TestExtractListingsMalformedStructuredDataFallsBack(t *testing.T) {
	html := page(card("Butik i Göteborg", "/objekt/butik-777", `
		<script type="application/ld+json">{not valid json</script>
		<ul class="object-facts">
			<li>Omsättning: 5 mkr</li>
			<li>Resultat: lönsamt</li>
			<li>Prisidé: 2 500 000 kr</li>
			<li>Anställda: 4</li>
		</ul>`))

	res, err := ExtractListings(html, baseURL)
	if err != nil {
		t.Fatalf("malformed structured data must not error: %v", err)
	}
	rec := res.Records[0]
	if rec.Financial.Revenue != "5 mkr" {
		t.Errorf("revenue = %q", rec.Financial.Revenue)
	}
	if rec.Financial.ProfitStatus != "lönsamt" {
		t.Errorf("profit status = %q", rec.Financial.ProfitStatus)
	}
	if rec.Financial.Price != "2 500 000 kr" {
		t.Errorf("price = %q", rec.Financial.Price)
	}
	if rec.EmployeeCount != "4" {
		t.Errorf("employee count = %q", rec.EmployeeCount)
	}
	// No product id in structured data: derived from the URL suffix.
	if rec.ID != "777" {
		t.Errorf("id = %q, want trailing URL number", rec.ID)
	}
}

func TestExtractListingsPremiumMarker(t *testing.T) {
	html := page(
		card("Premiumobjekt", "/objekt/p-1", `<span class="premium-tag">Premium</span>`) +
			card("Vanligt objekt", "/objekt/r-2", ""),
	)

	res, _ := ExtractListings(html, baseURL)
	if res.Records[0].ListingType != "premium" {
		t.Errorf("first record type = %q, want premium", res.Records[0].ListingType)
	}
	if res.Records[1].ListingType != "regular" {
		t.Errorf("second record type = %q, want regular", res.Records[1].ListingType)
	}
}

func TestExtractListingsBrokerBlock(t *testing.T) {
	html := page(card("Firma", "/objekt/f-3", `
		<div class="broker-info">
			<span class="broker-name">Anna Andersson</span>
			<span class="broker-company">Företagsmäklarna AB</span>
			<img class="broker-photo" src="/img/anna.jpg">
			<img class="company-logo" src="/img/fm.png">
		</div>`))

	res, _ := ExtractListings(html, baseURL)
	c := res.Records[0].Contact
	if c.BrokerName != "Anna Andersson" || c.BrokerCompany != "Företagsmäklarna AB" {
		t.Errorf("broker = %q / %q", c.BrokerName, c.BrokerCompany)
	}
	if !strings.HasPrefix(c.BrokerPhoto, baseURL) || !strings.HasPrefix(c.CompanyLogo, baseURL) {
		t.Errorf("image URLs not resolved: %q, %q", c.BrokerPhoto, c.CompanyLogo)
	}
}

func TestProductIDFallbackIsStable(t *testing.T) {
	a := productID("Salong", "https://example.com/objekt/salong")
	b := productID("Salong", "https://example.com/objekt/salong")
	if a != b {
		t.Errorf("derived id not stable: %q vs %q", a, b)
	}
	if len(a) != 12 {
		t.Errorf("derived id length = %d, want 12", len(a))
	}
	if c := productID("Annan salong", "https://example.com/objekt/salong"); c == a {
		t.Error("different titles must derive different ids")
	}
}
