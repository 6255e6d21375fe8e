package agents

// Search routes free-text questions from the search modal to the other agents.
var Search = Static(Config{
	Name:         "search",
	Description:  "Entry point for the global search box; hands off to a specialist agent.",
	Instructions: "Decide which specialist agent should answer and hand off. Do not answer yourself.",
	Tools:        []string{"handoff"},
})
