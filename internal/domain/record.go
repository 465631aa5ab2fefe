// backend/internal/domain/record.go
package domain

import "time"

// ListingType distinguishes promoted listings from regular ones.
type ListingType string

const (
	ListingPremium ListingType = "premium"
	ListingRegular ListingType = "regular"
)

// Section is one named block of business narrative extracted from a
// detail page, e.g. "reason_for_sale". Sections keep their extraction
// order because the rendered output preserves it.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Financial groups the money-related fields of a listing. The Detailed*
// fields are additive: they supplement Revenue/ProfitStatus found on the
// catalogue card, they never replace them.
type Financial struct {
	Revenue          string   `json:"revenue,omitempty"`
	DetailedRevenue  string   `json:"detailed_revenue,omitempty"`
	ProfitStatus     string   `json:"profit_status,omitempty"`
	DetailedProfit   string   `json:"detailed_profit,omitempty"`
	Price            string   `json:"price,omitempty"`
	FinancialDetails []string `json:"financial_details,omitempty"`
}

// Contact holds broker and company contact data for a listing.
type Contact struct {
	BrokerName    string `json:"broker_name,omitempty"`
	BrokerCompany string `json:"broker_company,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	BrokerPhoto   string `json:"broker_photo,omitempty"`
	CompanyLogo   string `json:"company_logo,omitempty"`
}

// ListingRecord is one business-for-sale listing as assembled by the
// crawl pipeline. The listing extractor creates it from a catalogue
// card, the detail extractor fills in the rest, and it becomes
// immutable once normalized into a Snapshot.
//
// Detail-stage code must not overwrite a non-empty field set by the
// listing stage; the Detailed* financial fields are the only additive
// exception.
type ListingRecord struct {
	ID                 string      `json:"product_id"`
	Title              string      `json:"title"`
	URL                string      `json:"url"`
	Category           string      `json:"category,omitempty"`
	Location           string      `json:"location,omitempty"`
	Description        string      `json:"description,omitempty"`
	FullDescription    string      `json:"full_description,omitempty"`
	StructuredSections []Section   `json:"structured_content,omitempty"`
	Financial          Financial   `json:"financial"`
	EmployeeCount      string      `json:"employee_count,omitempty"`
	Contact            Contact     `json:"contact"`
	ListingType        ListingType `json:"listing_type"`
	ScrapedAt          time.Time   `json:"scraped_at"`
}
