// backend/internal/normalize/normalize.go

// Package normalize turns assembled listing records into the canonical
// external schema: Swedish→English lexical translation, SEK→USD price
// conversion, and section-title mapping.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

// SEKToUSD is the fixed conversion rate applied to asking prices.
const SEKToUSD = 0.095

// TranslationPair is one ordered entry of the substitution table.
type TranslationPair struct {
	Swedish string
	English string
}

// DefaultTranslations is applied in declaration order. Order matters:
// a replacement result can itself contain a later entry's trigger (for
// example "handel" fires before "e-handel" is ever seen), so reordering
// the table changes output.
var DefaultTranslations = []TranslationPair{
	// Business terms
	{"företag", "company"}, {"verksamhet", "business"}, {"firma", "firm"},
	{"omsättning", "revenue"}, {"resultat", "profit"}, {"vinst", "profit"},
	{"förlust", "loss"}, {"intäkter", "income"}, {"kostnader", "costs"},

	// Industries
	{"handel", "trade"}, {"tillverkning", "manufacturing"}, {"tjänster", "services"},
	{"hotell", "hotel"}, {"restaurang", "restaurant"}, {"e-handel", "e-commerce"},
	{"bygg", "construction"}, {"transport", "transport"}, {"hälsa", "health"},
	{"utbildning", "education"}, {"finans", "finance"}, {"fastighet", "real estate"},

	// Locations
	{"stockholm", "Stockholm"}, {"göteborg", "Gothenburg"}, {"malmö", "Malmö"},
	{"uppsala", "Uppsala"}, {"västerås", "Västerås"}, {"örebro", "Örebro"},

	// Status
	{"lönsamt", "profitable"}, {"olönsamt", "unprofitable"}, {"nytt", "new"},
	{"etablerat", "established"}, {"växande", "growing"}, {"stabil", "stable"},

	// Common words
	{"till", "for"}, {"salu", "sale"}, {"köp", "buy"}, {"sälj", "sell"},
	{"bra", "good"}, {"mycket", "very"}, {"stor", "large"}, {"liten", "small"},
}

// sectionTitles maps canonical section keys to their rendered titles.
var sectionTitles = map[string]string{
	"company_brief":     "Company Overview",
	"potential":         "Growth Potential",
	"reason_for_sale":   "Reason for Sale",
	"price_idea":        "Pricing Details",
	"summary":           "Summary",
	"description":       "Description",
	"business_activity": "Business Activity",
	"market":            "Market Information",
	"competition":       "Competitive Situation",
}

var digitRunPattern = regexp.MustCompile(`[\d\s]+`)

// Normalizer holds the immutable lookup tables. Construct once and share;
// it has no mutable state.
type Normalizer struct {
	translations []TranslationPair
	rate         float64
}

func New() *Normalizer {
	return NewWithTable(DefaultTranslations, SEKToUSD)
}

// NewWithTable builds a normalizer around a custom substitution table and
// conversion rate; tests use it to pin ordering-dependent behavior.
func NewWithTable(pairs []TranslationPair, rate float64) *Normalizer {
	return &Normalizer{translations: pairs, rate: rate}
}

// TranslateText applies the substitution table in declaration order,
// case-insensitively, then capitalizes the first letter of the result.
func (n *Normalizer) TranslateText(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range n.translations {
		text = replaceFold(text, p.Swedish, p.English)
	}
	return capitalize(text)
}

// ConvertCurrency extracts the digit runs of a SEK price string, converts
// the face value at the fixed rate and renders a dollar amount with
// thousands separators. Strings without a parseable number pass through
// unchanged.
func (n *Normalizer) ConvertCurrency(price string) string {
	runs := digitRunPattern.FindAllString(price, -1)
	if runs == nil {
		return price
	}
	digits := strings.Join(strings.Fields(strings.Join(runs, "")), "")
	sek, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return price
	}
	usd := int64(math.Round(float64(sek) * n.rate))
	return "$" + groupThousands(usd)
}

// SectionTitle renders a canonical section key as a human-readable title;
// unknown keys fall back to title-casing the key itself.
func (n *Normalizer) SectionTitle(key string) string {
	if title, ok := sectionTitles[key]; ok {
		return title
	}
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// Normalize builds the canonical listing from an assembled record. Info
// groups are emitted only when at least one constituent field is present.
func (n *Normalizer) Normalize(rec domain.ListingRecord) domain.Listing {
	var details []domain.DetailSection

	description := rec.FullDescription
	if description == "" {
		description = rec.Description
	}
	if description != "" {
		details = append(details, domain.DetailSection{
			InfoSummary: "Business Description",
			InfoItems:   []string{n.TranslateText(description)},
		})
	}

	for _, sec := range rec.StructuredSections {
		if len(strings.TrimSpace(sec.Text)) <= 20 {
			continue
		}
		details = append(details, domain.DetailSection{
			InfoSummary: n.SectionTitle(sec.Key),
			InfoItems:   []string{n.TranslateText(sec.Text)},
		})
	}

	var financial []string
	if rec.Financial.Revenue != "" {
		financial = append(financial, "Revenue: "+n.TranslateText(rec.Financial.Revenue))
	}
	if rec.Financial.DetailedRevenue != "" {
		financial = append(financial, "Detailed Revenue: "+n.TranslateText(rec.Financial.DetailedRevenue))
	}
	if rec.Financial.ProfitStatus != "" {
		financial = append(financial, "Profit Status: "+n.TranslateText(rec.Financial.ProfitStatus))
	}
	if rec.Financial.DetailedProfit != "" {
		financial = append(financial, "Detailed Profit: "+n.TranslateText(rec.Financial.DetailedProfit))
	}
	if rec.Financial.Price != "" {
		financial = append(financial, "Asking Price: "+n.ConvertCurrency(rec.Financial.Price))
	}
	for _, d := range rec.Financial.FinancialDetails {
		financial = append(financial, n.TranslateText(d))
	}
	if len(financial) > 0 {
		details = append(details, domain.DetailSection{
			InfoSummary: "Financial Information",
			InfoItems:   financial,
		})
	}

	if rec.EmployeeCount != "" {
		details = append(details, domain.DetailSection{
			InfoSummary: "Business Metrics",
			InfoItems:   []string{"Employees: " + n.TranslateText(rec.EmployeeCount)},
		})
	}

	var contact []string
	if rec.Contact.Phone != "" {
		contact = append(contact, "Phone: "+rec.Contact.Phone)
	}
	if rec.Contact.Email != "" {
		contact = append(contact, "Email: "+rec.Contact.Email)
	}
	if rec.Contact.BrokerName != "" {
		contact = append(contact, "Broker: "+n.TranslateText(rec.Contact.BrokerName))
	}
	if rec.Contact.BrokerCompany != "" {
		contact = append(contact, "Broker Company: "+n.TranslateText(rec.Contact.BrokerCompany))
	}
	if len(contact) > 0 {
		details = append(details, domain.DetailSection{
			InfoSummary: "Contact Information",
			InfoItems:   contact,
		})
	}

	company := rec.Contact.BrokerCompany
	if company == "" {
		company = rec.Contact.BrokerName
	}

	phone := rec.Contact.Phone
	if phone == "" {
		phone = "Contact via website"
	}

	return domain.Listing{
		ProductID:    rec.ID,
		Title:        n.TranslateText(rec.Title),
		Company:      n.TranslateText(company),
		Location:     n.TranslateText(rec.Location),
		Price:        n.ConvertCurrency(rec.Financial.Price),
		Category:     n.TranslateText(rec.Category),
		Industry:     n.TranslateText(rec.Category),
		Link:         rec.URL,
		Details:      details,
		BusinessName: n.TranslateText(rec.Title),
		ContactName:  n.TranslateText(rec.Contact.BrokerName),
		PhoneNumber:  phone,
	}
}

// replaceFold replaces every case-insensitive occurrence of old with new.
// Matching folds rune by rune, so the byte offsets used for splicing
// always refer to s itself; case mapping may change a rune's width.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	var b strings.Builder
	for {
		start, end := indexFold(s, old)
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		b.WriteString(new)
		s = s[end:]
	}
}

// indexFold returns the byte bounds in s of the first case-insensitive
// occurrence of substr, or (-1, -1).
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

// foldMatch reports whether s starts with a case-insensitive match of
// target, and the byte length of the matched prefix.
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

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
