package kb

import "fmt"

// ValidationIssue is a single content-quality finding on a document.
type ValidationIssue struct {
	Filename string
	Field    string
	Detail   string
	// Soft issues (e.g. broken related-issue links) are content-quality
	// defects, not fatal errors.
	Soft bool
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Filename, v.Field, v.Detail)
}

// Validate checks a single document against the content contract:
// required sections present exactly once, severity in range, and the
// has_images/image_urls consistency invariant.
func Validate(doc *Document) []ValidationIssue {
	var issues []ValidationIssue
	add := func(field, detail string, soft bool) {
		issues = append(issues, ValidationIssue{Filename: doc.Filename, Field: field, Detail: detail, Soft: soft})
	}

	if doc.Title == "" {
		add("title", "missing title in front matter", false)
	}
	if doc.Category == "" {
		add("category", "missing category in front matter", false)
	}
	switch doc.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	case "":
		add("severity", "missing severity in front matter", false)
	default:
		add("severity", fmt.Sprintf("unknown severity %q", doc.Severity), false)
	}

	if doc.HasImages != (len(doc.ImageURLs) > 0) {
		add("has_images", fmt.Sprintf("has_images=%v but %d image_urls", doc.HasImages, len(doc.ImageURLs)), false)
	}

	if doc.Overview == "" {
		add("overview", "missing Overview section", false)
	}
	if len(doc.Symptoms) == 0 {
		add("symptoms", "missing or empty Symptoms list", false)
	}
	if len(doc.Steps) == 0 {
		add("steps", "missing or empty Step-by-Step Fix section", false)
	}
	for _, step := range doc.Steps {
		if step.Title == "" {
			add("steps", fmt.Sprintf("step %d has no title", step.Number), false)
		}
		if step.Instruction == "" {
			add("steps", fmt.Sprintf("step %d has no instruction text", step.Number), false)
		}
	}
	if doc.Escalation == "" {
		add("escalation", "missing When to Contact Apple Support section", false)
	}

	// Each required section must appear exactly once; a duplicate heading
	// means the earlier content was silently discarded during parsing.
	for _, s := range []struct{ section, field string }{
		{sectionOverview, "overview"},
		{sectionSymptoms, "symptoms"},
		{sectionSteps, "steps"},
		{sectionEscalation, "escalation"},
		{sectionRelated, "related_issues"},
	} {
		if n := doc.sectionCounts[s.section]; n > 1 {
			add(s.field, fmt.Sprintf("section %q appears %d times, expected once", s.section, n), false)
		}
	}

	return issues
}

// ValidateStore validates every document and additionally resolves
// related-issue links across the store. Broken links are soft issues.
func ValidateStore(docs []*Document) []ValidationIssue {
	byName := make(map[string]bool, len(docs))
	for _, d := range docs {
		byName[d.Filename] = true
	}

	var issues []ValidationIssue
	for _, d := range docs {
		issues = append(issues, Validate(d)...)
		for _, rel := range d.RelatedIssues {
			if !byName[rel.Filename] {
				issues = append(issues, ValidationIssue{
					Filename: d.Filename,
					Field:    "related_issues",
					Detail:   fmt.Sprintf("link to %q does not resolve in the store", rel.Filename),
					Soft:     true,
				})
			}
		}
	}
	return issues
}
