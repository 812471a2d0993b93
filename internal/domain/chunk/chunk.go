package chunk

// Metadata is the typed metadata bag attached to a retrieved chunk.
// Fields that matter to the pipeline are named; everything else the index
// returns lands in Extra so schema drift upstream does not break parsing.
type Metadata struct {
	SourcePath    string            `json:"source_path"`
	FileName      string            `json:"file_name,omitempty"`
	Account       string            `json:"account,omitempty"`
	DocumentType  string            `json:"document_type,omitempty"`
	ContractTitle string            `json:"contract_title,omitempty"`
	SolutionLine  string            `json:"solution_line,omitempty"`
	Dates         []string          `json:"dates,omitempty"`
	Parties       []string          `json:"parties,omitempty"`
	Text          string            `json:"text"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Chunk is one nearest-neighbor hit: metadata plus the raw index distance
// (lower is closer). Chunks live for the duration of one pipeline call and
// inside cache entries; nothing else persists them.
type Chunk struct {
	Meta     Metadata `json:"meta"`
	Distance float64  `json:"distance"`
}
