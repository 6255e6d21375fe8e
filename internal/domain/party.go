package domain

import "time"

// PartyKind distinguishes customers from suppliers.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
)

// Party is a customer or supplier of a company.
type Party struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Kind      PartyKind `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// RiskStatus tracks a risk through review.
type RiskStatus string

const (
	RiskOpen      RiskStatus = "open"
	RiskInReview  RiskStatus = "in_review"
	RiskMitigated RiskStatus = "mitigated"
	RiskClosed    RiskStatus = "closed"
)

// Risk is an entry in a party's risk register.
type Risk struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"companyId"`
	Source     PartyKind  `json:"source"`
	SourceID   string     `json:"sourceId"`
	Title      string     `json:"title"`
	Severity   int        `json:"severity"`   // 1-5
	Likelihood int        `json:"likelihood"` // 1-5
	Status     RiskStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Score is severity times likelihood.
func (r Risk) Score() int {
	return r.Severity * r.Likelihood
}
