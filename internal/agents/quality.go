package agents

import "github.com/soyeahso/suite/internal/domain"

// Quality handles non-conformances, gauges and training compliance.
var Quality = Static(Config{
	Name:        "quality",
	Description: "Tracks non-conformances, gauge calibration and training compliance.",
	Instructions: "You support the quality team. When asked about an employee's " +
		"compliance, list outstanding training with due dates.",
	Tools: []string{"listIssues", "gaugeCalibrationStatus", "outstandingTraining"},
	Capabilities: []domain.Capability{
		domain.Cap(domain.ActionView, domain.ModuleQuality),
		domain.Cap(domain.ActionView, domain.ModuleResources),
	},
})
