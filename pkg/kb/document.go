package kb

import "time"

// Severity is the ordinal severity tag from a document's front matter.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FixStep is one entry of the Step-by-Step Fix section. Instruction is the
// primary text; Visual and Voice are optional alternate renderings of the
// same action and stay separate fields.
type FixStep struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Visual      string `json:"visual,omitempty"`
	Voice       string `json:"voice,omitempty"`
}

// RelatedIssue is a reference to another document in the store, optionally
// annotated with a reason.
type RelatedIssue struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason,omitempty"`
}

// Document is a fully parsed troubleshooting article: front matter metadata
// plus the fixed-section body.
type Document struct {
	Filename  string     `json:"filename"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Severity  Severity   `json:"severity"`
	Updated   *time.Time `json:"updated,omitempty"`
	HasImages bool       `json:"has_images"`
	ImageURLs []string   `json:"image_urls"`
	// SourceURL is the optional upstream article this document was written
	// from, e.g. a support.apple.com page.
	SourceURL string `json:"source,omitempty"`

	Overview      string         `json:"overview"`
	Symptoms      []string       `json:"symptoms"`
	Steps         []FixStep      `json:"steps"`
	Escalation    string         `json:"escalation"`
	RelatedIssues []RelatedIssue `json:"related_issues"`

	// Body is the raw text after the front matter, as handed to the chunker.
	Body string `json:"-"`

	// sectionCounts tracks how often each canonical heading appeared while
	// parsing, so Validate can reject duplicated sections.
	sectionCounts map[string]int
}

// UpdatedWithin reports whether the document was revised within the given
// duration of now. Documents without an updated date are never "recent".
func (d *Document) UpdatedWithin(window time.Duration, now time.Time) bool {
	if d.Updated == nil {
		return false
	}
	return d.Updated.After(now.Add(-window))
}
