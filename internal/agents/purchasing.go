package agents

import "github.com/soyeahso/suite/internal/domain"

// Purchasing drafts purchase orders and compares supplier prices.
var Purchasing = Static(Config{
	Name:        "purchasing",
	Description: "Finds suppliers, compares supplier prices and drafts purchase orders.",
	Instructions: "You help buyers source parts. Prefer approved suppliers and " +
		"mention any open supplier risks before recommending one.",
	Tools: []string{"getSupplier", "supplierRiskRegister", "getSupplierPrices", "createPurchaseOrder"},
	Capabilities: []domain.Capability{
		domain.Cap(domain.ActionView, domain.ModulePurchasing),
		domain.Cap(domain.ActionCreate, domain.ModulePurchasing),
	},
})
