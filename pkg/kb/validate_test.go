package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDoc(filename string) *Document {
	return &Document{
		Filename:   filename,
		Title:      "T",
		Category:   "battery",
		Severity:   SeverityLow,
		HasImages:  false,
		ImageURLs:  []string{},
		Overview:   "o",
		Symptoms:   []string{"s"},
		Steps:      []FixStep{{Number: 1, Title: "Do it", Instruction: "Do the thing."}},
		Escalation: "Call support if it persists.",
	}
}

func TestValidateImageConsistency(t *testing.T) {
	doc := validDoc("a.md")
	assert.Empty(t, Validate(doc))

	doc.HasImages = true
	issues := Validate(doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "has_images", issues[0].Field)
	assert.False(t, issues[0].Soft)

	doc.ImageURLs = []string{"https://x.example/1.png"}
	assert.Empty(t, Validate(doc))
}

func TestValidateRequiredSections(t *testing.T) {
	doc := validDoc("a.md")
	doc.Escalation = ""
	doc.Symptoms = nil
	issues := Validate(doc)

	fields := make([]string, 0, len(issues))
	for _, i := range issues {
		fields = append(fields, i.Field)
	}
	assert.Contains(t, fields, "escalation")
	assert.Contains(t, fields, "symptoms")
}

func TestValidateDuplicateSections(t *testing.T) {
	raw := "---\ntitle: T\ncategory: battery\nseverity: low\n---\n" +
		"## Overview\nFirst overview.\n\n" +
		"## Symptoms\n- s\n\n" +
		"## Step-by-Step Fix\n### Step 1: Do it\nDo the thing.\n\n" +
		"## When to Contact Apple Support\nCall support if it persists.\n\n" +
		"## Overview\nSecond overview.\n"

	doc, err := Parse("a.md", raw)
	require.NoError(t, err)

	issues := Validate(doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "overview", issues[0].Field)
	assert.False(t, issues[0].Soft)
	assert.Contains(t, issues[0].Detail, "2 times")
}

func TestValidateStoreBrokenLinksAreSoft(t *testing.T) {
	a := validDoc("a.md")
	a.RelatedIssues = []RelatedIssue{{Filename: "b.md"}, {Filename: "missing.md", Reason: "x"}}
	b := validDoc("b.md")

	issues := ValidateStore([]*Document{a, b})
	require.Len(t, issues, 1)
	assert.Equal(t, "related_issues", issues[0].Field)
	assert.True(t, issues[0].Soft)
	assert.Contains(t, issues[0].Detail, "missing.md")
}
