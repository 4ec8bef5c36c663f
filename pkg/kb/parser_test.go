package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `---
title: iPhone Battery Draining Fast
category: battery
severity: medium
updated: 2025-11-03
has_images: true
image_urls: ["https://help.example.com/img/battery-health.png", "https://help.example.com/img/low-power.png"]
review_cycle: quarterly
---

## Overview
Battery drain is usually caused by background activity, old batteries, or screen brightness.

## Symptoms
- Battery drops more than 20% per hour on standby
- Phone feels warm without heavy use
- Low Power Mode activates repeatedly

## Step-by-Step Fix

### Step 1: Check Battery Health
Open Settings and review the maximum capacity figure.
**Visual:** Tap Settings > Battery > Battery Health & Charging.
**Voice:** Open Settings, then say Battery, then Battery Health and Charging.

### Step 2: Enable Low Power Mode
Turn on Low Power Mode to pause background refresh.
**Visual:** Toggle the switch at the top of the Battery screen.

### Step 3: Review Background App Refresh
Disable refresh for apps you rarely use.

## When to Contact Apple Support
If maximum capacity is below 80% or the phone shuts down unexpectedly, contact Apple Support for a battery service.

## Related Issues
- iphone_overheating.md (heat accelerates battery wear)
- low_power_mode_basics.md
`

func TestParseFullDocument(t *testing.T) {
	doc, err := Parse("battery_drain_basics.md", sampleDoc)
	require.NoError(t, err)

	assert.Equal(t, "iPhone Battery Draining Fast", doc.Title)
	assert.Equal(t, "battery", doc.Category)
	assert.Equal(t, SeverityMedium, doc.Severity)
	require.NotNil(t, doc.Updated)
	assert.Equal(t, "2025-11-03", doc.Updated.Format("2006-01-02"))
	assert.True(t, doc.HasImages)
	assert.Len(t, doc.ImageURLs, 2)
	assert.Equal(t, "https://help.example.com/img/battery-health.png", doc.ImageURLs[0])

	assert.Contains(t, doc.Overview, "background activity")
	assert.Len(t, doc.Symptoms, 3)
	assert.Equal(t, "Phone feels warm without heavy use", doc.Symptoms[1])

	require.Len(t, doc.Steps, 3)
	assert.Equal(t, 1, doc.Steps[0].Number)
	assert.Equal(t, "Check Battery Health", doc.Steps[0].Title)
	assert.Contains(t, doc.Steps[0].Instruction, "maximum capacity")
	assert.Equal(t, "Tap Settings > Battery > Battery Health & Charging.", doc.Steps[0].Visual)
	assert.Equal(t, "Open Settings, then say Battery, then Battery Health and Charging.", doc.Steps[0].Voice)

	// Channels stay independent: step 2 has only a visual hint, step 3 neither.
	assert.NotEmpty(t, doc.Steps[1].Visual)
	assert.Empty(t, doc.Steps[1].Voice)
	assert.Empty(t, doc.Steps[2].Visual)
	assert.Empty(t, doc.Steps[2].Voice)

	assert.Contains(t, doc.Escalation, "contact Apple Support")

	require.Len(t, doc.RelatedIssues, 2)
	assert.Equal(t, "iphone_overheating.md", doc.RelatedIssues[0].Filename)
	assert.Equal(t, "heat accelerates battery wear", doc.RelatedIssues[0].Reason)
	assert.Equal(t, "low_power_mode_basics.md", doc.RelatedIssues[1].Filename)
	assert.Empty(t, doc.RelatedIssues[1].Reason)
}

func TestParseFrontMatterEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, doc *Document)
	}{
		{
			name:    "no front matter",
			raw:     "## Overview\nJust a body.",
			wantErr: true,
		},
		{
			name:    "unterminated front matter",
			raw:     "---\ntitle: Broken",
			wantErr: true,
		},
		{
			name: "leading byte order mark is stripped",
			raw:  "\ufeff---\ntitle: T\ncategory: wifi\nseverity: low\n---\n## Overview\nx",
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, "T", doc.Title)
			},
		},
		{
			name: "unknown keys ignored",
			raw:  "---\ntitle: T\ncategory: wifi\nseverity: low\nauthor: someone\n---\n## Overview\nx",
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, "T", doc.Title)
				assert.Equal(t, "wifi", doc.Category)
			},
		},
		{
			name: "missing image_urls means no images",
			raw:  "---\ntitle: T\ncategory: wifi\nseverity: low\n---\n## Overview\nx",
			check: func(t *testing.T, doc *Document) {
				assert.False(t, doc.HasImages)
				assert.Empty(t, doc.ImageURLs)
				assert.NotNil(t, doc.ImageURLs)
			},
		},
		{
			name: "comma separated image urls",
			raw:  "---\ntitle: T\ncategory: wifi\nseverity: low\nhas_images: true\nimage_urls: https://a.example/1.png, https://a.example/2.png\n---\n## Overview\nx",
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, []string{"https://a.example/1.png", "https://a.example/2.png"}, doc.ImageURLs)
			},
		},
		{
			name: "invalid updated date is dropped",
			raw:  "---\ntitle: T\ncategory: wifi\nseverity: low\nupdated: soon\n---\n## Overview\nx",
			check: func(t *testing.T, doc *Document) {
				assert.Nil(t, doc.Updated)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("doc.md", tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, doc)
		})
	}
}

func TestParseRelatedIssueForms(t *testing.T) {
	raw := "---\ntitle: T\ncategory: battery\nseverity: low\n---\n" +
		"## Related Issues\n" +
		"1. first_doc.md (shared symptom)\n" +
		"2. second_doc.md\n" +
		"- third_doc.md (bullet form)\n"

	doc, err := Parse("doc.md", raw)
	require.NoError(t, err)
	require.Len(t, doc.RelatedIssues, 3)
	assert.Equal(t, RelatedIssue{Filename: "first_doc.md", Reason: "shared symptom"}, doc.RelatedIssues[0])
	assert.Equal(t, RelatedIssue{Filename: "second_doc.md"}, doc.RelatedIssues[1])
	assert.Equal(t, RelatedIssue{Filename: "third_doc.md", Reason: "bullet form"}, doc.RelatedIssues[2])
}
