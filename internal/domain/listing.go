// backend/internal/domain/listing.go
package domain

import "time"

// DetailSection is one rendered info group in the external schema.
type DetailSection struct {
	InfoSummary string   `bson:"info_summary" json:"infoSummary"`
	InfoItems   []string `bson:"info_items" json:"infoItems"`
}

// Listing is the canonical, externally visible shape of a normalized
// listing served by the query API and persisted by the snapshot store.
type Listing struct {
	ProductID    string          `bson:"product_id" json:"product_id"`
	Title        string          `bson:"title" json:"title"`
	Company      string          `bson:"company" json:"company"`
	Location     string          `bson:"location" json:"location"`
	Price        string          `bson:"price" json:"price"`
	Category     string          `bson:"category" json:"category"`
	Industry     string          `bson:"industry" json:"industry"`
	Link         string          `bson:"link" json:"link"`
	Details      []DetailSection `bson:"details" json:"details,omitempty"`
	BusinessName string          `bson:"business_name" json:"business_name"`
	ContactName  string          `bson:"contact_name" json:"contact_name"`
	PhoneNumber  string          `bson:"phone_number" json:"phone_number"`
}

// Snapshot is the immutable result of one completed crawl. Listings keep
// page-then-document discovery order. A snapshot is published atomically;
// readers see either the previous complete snapshot or this one.
type Snapshot struct {
	Listings           []Listing `bson:"listings" json:"listings"`
	CompletedAt        time.Time `bson:"completed_at" json:"completed_at"`
	SourcePagesVisited int       `bson:"source_pages_visited" json:"source_pages_visited"`
	ItemCount          int       `bson:"item_count" json:"item_count"`
}
