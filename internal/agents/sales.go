package agents

import "github.com/soyeahso/suite/internal/domain"

// Sales answers questions about quotes, orders and customers.
var Sales = Static(Config{
	Name:        "sales",
	Description: "Looks up quotes, sales orders and customer history.",
	Instructions: "You help sales staff find quotes and orders. " +
		"Only report figures you retrieved with a tool. Quote IDs look like Q000123.",
	Tools: []string{"getCustomer", "searchQuotes", "getSalesOrder", "customerRiskRegister"},
	Capabilities: []domain.Capability{
		domain.Cap(domain.ActionView, domain.ModuleSales),
	},
})
