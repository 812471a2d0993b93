// Package catalog holds the predefined query catalog served to the UI.
package catalog

// Query is a canned question users can run without typing.
type Query struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Text        string `json:"query_text" yaml:"query_text"`
	Category    string `json:"category" yaml:"category"`
}

// Default returns the built-in catalog, used when the configuration does
// not supply its own.
func Default() []Query {
	return []Query{
		{
			ID:          "1",
			Title:       "Can we use client data to develop or test new services?",
			Description: "Search for terms regarding use of client data for development and testing",
			Text:        "Can we use client data (including PHI) to develop or test new services, and enhance, improve, or modify our existing services?",
			Category:    "data_usage",
		},
		{
			ID:          "2",
			Title:       "AI/ML restrictions in service delivery",
			Description: "Find restrictions on using artificial intelligence or machine learning",
			Text:        "Are there any restrictions on using artificial intelligence or machine learning in delivering the services?",
			Category:    "ai_ml",
		},
		{
			ID:          "3",
			Title:       "Cloud storage limitations for PHI",
			Description: "Search for limitations on storing client data including PHI in the cloud",
			Text:        "Are there any limitations on storing client data (including PHI) in the cloud?",
			Category:    "cloud_storage",
		},
		{
			ID:          "4",
			Title:       "Data retention requirements",
			Description: "Find data retention policies and timelines",
			Text:        "What are the data retention requirements and timelines specified in the contracts?",
			Category:    "retention",
		},
		{
			ID:          "5",
			Title:       "Client consent requirements for data use",
			Description: "Search for clauses requiring explicit client consent for data usage",
			Text:        "Are there any clauses requiring explicit client consent for the use of their data in specific ways, such as for R&D purposes or AI training?",
			Category:    "consent",
		},
		{
			ID:          "6",
			Title:       "Third-party vendor restrictions",
			Description: "Find restrictions on using third-party vendors or subcontractors",
			Text:        "Are there any restrictions or requirements related to the use of third-party vendors or subcontractors in the processing of client data?",
			Category:    "vendors",
		},
		{
			ID:          "7",
			Title:       "Human oversight requirements for AI",
			Description: "Search for requirements for human oversight in AI usage",
			Text:        "Is there any requirement for human oversight or decision-making in the use of AI for delivering the services?",
			Category:    "ai_oversight",
		},
		{
			ID:          "8",
			Title:       "IP ownership rights from client data",
			Description: "Find terms regarding ownership of IP developed from client data",
			Text:        "Does the client have any ownership rights in developed IP or developed materials generated from the use of their data?",
			Category:    "ip_ownership",
		},
	}
}
