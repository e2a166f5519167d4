package domain

// Fund represents a managed fund vehicle.
type Fund struct {
	FundID       string `json:"fundID"` // Primary key (UUID)
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"`
	// WireInstructions holds opaque wire metadata rendered into investor notices.
	WireInstructions string `json:"wireInstructions,omitempty"`
	AuditFields
}

// Deal represents a single investment a fund raises capital for.
type Deal struct {
	DealID string `json:"dealID"` // Primary key (UUID)
	FundID string `json:"fundID"`
	Name   string `json:"name"`
	AuditFields
}
