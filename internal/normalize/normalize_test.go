// backend/internal/normalize/normalize_test.go
package normalize

import (
	"reflect"
	"strings"
	"testing"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

func TestConvertCurrency(t *testing.T) {
	n := New()

	tests := []struct {
		in   string
		want string
	}{
		{"100000 SEK", "$9,500"},
		{"1 200 000 kr", "$114,000"},
		{"2 500 000 kr", "$237,500"},
		{"Pris saknas", "Pris saknas"}, // no digit runs: pass-through
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.ConvertCurrency(tt.in); got != tt.want {
			t.Errorf("ConvertCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertCurrencyPassThroughIsIdempotent(t *testing.T) {
	n := New()
	in := "på förfrågan"
	once := n.ConvertCurrency(in)
	twice := n.ConvertCurrency(once)
	if once != in || twice != in {
		t.Errorf("pass-through not idempotent: %q -> %q -> %q", in, once, twice)
	}
}

func TestTranslateText(t *testing.T) {
	n := New()

	tests := []struct {
		in   string
		want string
	}{
		{"företag till salu", "Company for sale"},
		{"Lönsamt hotell i Stockholm", "Profitable hotel i Stockholm"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.TranslateText(tt.in); got != tt.want {
			t.Errorf("TranslateText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Case mapping can change a rune's byte width (U+023A "Ⱥ" is two bytes,
// its lowercase U+2C65 "ⱥ" is three), so matching must never carry byte
// offsets from a lowercased copy back onto the original string.
func TestTranslateTextWidthChangingCaseFold(t *testing.T) {
	n := New()

	in := strings.Repeat("Ⱥ", 100) + " till salu"
	got := n.TranslateText(in)
	if !strings.HasSuffix(got, " for sale") {
		t.Errorf("TranslateText(%q) = %q, want a ' for sale' suffix", in, got)
	}
	if !strings.HasPrefix(got, strings.Repeat("Ⱥ", 100)) {
		t.Errorf("unmatched runes were altered: %q", got)
	}

	// Uppercase trigger occurrences fold the same way.
	if got := n.TranslateText("ȺȺ TILL SALU"); !strings.HasSuffix(got, " for sale") {
		t.Errorf("got %q, want a ' for sale' suffix", got)
	}
}

// The substitution table is applied in declaration order, and that order
// is observable: "handel" fires before the "e-handel" entry is ever
// reached, so "e-handel" renders as "e-trade". Reversing the two entries
// changes the output.
func TestTranslateTableOrderMatters(t *testing.T) {
	declared := NewWithTable([]TranslationPair{
		{"handel", "trade"},
		{"e-handel", "e-commerce"},
	}, SEKToUSD)
	reversed := NewWithTable([]TranslationPair{
		{"e-handel", "e-commerce"},
		{"handel", "trade"},
	}, SEKToUSD)

	if got := declared.TranslateText("e-handel"); got != "E-trade" {
		t.Errorf("declared order: got %q, want %q", got, "E-trade")
	}
	if got := reversed.TranslateText("e-handel"); got != "E-commerce" {
		t.Errorf("reversed order: got %q, want %q", got, "E-commerce")
	}

	// The default table keeps the original declaration order.
	if got := New().TranslateText("e-handel"); got != "E-trade" {
		t.Errorf("default table: got %q, want %q", got, "E-trade")
	}
}

func TestSectionTitle(t *testing.T) {
	n := New()

	tests := []struct {
		key  string
		want string
	}{
		{"company_brief", "Company Overview"},
		{"reason_for_sale", "Reason for Sale"},
		{"business_description", "Business Description"}, // unknown: title-cased
		{"market", "Market Information"},
	}
	for _, tt := range tests {
		if got := n.SectionTitle(tt.key); got != tt.want {
			t.Errorf("SectionTitle(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNormalizeAssemblesGroups(t *testing.T) {
	n := New()

	rec := domain.ListingRecord{
		ID:       "12345",
		Title:    "hotell i Göteborg",
		URL:      "https://www.bolagsplatsen.se/objekt/12345",
		Category: "hotell",
		Location: "göteborg",
		Financial: domain.Financial{
			Revenue:      "5 mkr",
			ProfitStatus: "lönsamt",
			Price:        "1 000 000 kr",
		},
		EmployeeCount: "8 employees",
		Contact: domain.Contact{
			BrokerName:    "Anna Andersson",
			BrokerCompany: "Mäklarna AB",
			Phone:         "+46 70 123 45 67",
		},
	}

	l := n.Normalize(rec)

	if l.Title != "Hotel i Gothenburg" {
		t.Errorf("title = %q", l.Title)
	}
	if l.Company != "Mäklarna AB" {
		t.Errorf("company = %q, want broker company", l.Company)
	}
	if l.Price != "$95,000" {
		t.Errorf("price = %q", l.Price)
	}
	if l.Industry != l.Category {
		t.Error("industry should mirror category")
	}
	if l.BusinessName != l.Title {
		t.Error("business name should mirror title")
	}
	if l.PhoneNumber != "+46 70 123 45 67" {
		t.Errorf("phone = %q", l.PhoneNumber)
	}

	var summaries []string
	for _, d := range l.Details {
		summaries = append(summaries, d.InfoSummary)
	}
	want := []string{"Financial Information", "Business Metrics", "Contact Information"}
	if !reflect.DeepEqual(summaries, want) {
		t.Errorf("group summaries = %v, want %v", summaries, want)
	}

	for _, d := range l.Details {
		if d.InfoSummary == "Financial Information" {
			if d.InfoItems[len(d.InfoItems)-1] != "Asking Price: $95,000" {
				t.Errorf("financial items = %v", d.InfoItems)
			}
		}
	}
}

func TestNormalizeOmitsEmptyGroups(t *testing.T) {
	n := New()

	l := n.Normalize(domain.ListingRecord{
		ID:    "1",
		Title: "verksamhet",
		URL:   "https://example.com/1",
	})

	if len(l.Details) != 0 {
		t.Errorf("expected no detail groups, got %v", l.Details)
	}
	if l.PhoneNumber != "Contact via website" {
		t.Errorf("phone default = %q", l.PhoneNumber)
	}
}

func TestNormalizeCompanyFallsBackToBrokerName(t *testing.T) {
	n := New()
	l := n.Normalize(domain.ListingRecord{
		Title:   "firma",
		Contact: domain.Contact{BrokerName: "Bo Berg"},
	})
	if l.Company != "Bo Berg" {
		t.Errorf("company = %q, want broker name fallback", l.Company)
	}
}
