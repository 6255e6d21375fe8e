package agents

import "github.com/soyeahso/suite/internal/domain"

// Production reports on jobs, operations and work center load.
var Production = Static(Config{
	Name:         "production",
	Description:  "Reports job status, operation progress and work center load.",
	Instructions: "You answer questions from the shop floor. Keep answers short.",
	Tools:        []string{"getJob", "listJobOperations", "workCenterLoad"},
	Capabilities: []domain.Capability{
		domain.Cap(domain.ActionView, domain.ModuleProduction),
	},
})
