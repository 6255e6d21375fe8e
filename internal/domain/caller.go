package domain

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID      string        `json:"userId"`
	CompanyID   string        `json:"companyId"`
	Role        string        `json:"role,omitempty"`
	Permissions CapabilitySet `json:"-"`
}

// Can reports whether the caller holds the capability.
func (c Caller) Can(required Capability) bool {
	return c.Permissions.Has(required)
}
