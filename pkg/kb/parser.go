package kb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const frontMatterDelimiter = "---"

var (
	stepHeadingRe    = regexp.MustCompile(`^###\s+Step\s+(\d+)\s*:\s*(.+)$`)
	relatedIssueRe   = regexp.MustCompile(`^([^\s(]+\.(?:md|txt))\s*(?:\((.+)\))?$`)
	visualChannelRe  = regexp.MustCompile(`(?i)^\*\*Visual:?\*\*:?\s*(.*)$`)
	voiceChannelRe   = regexp.MustCompile(`(?i)^\*\*Voice:?\*\*:?\s*(.*)$`)
	sectionHeadingRe = regexp.MustCompile(`^##\s+(.+)$`)
)

// Canonical section headings of the document body.
const (
	sectionOverview   = "overview"
	sectionSymptoms   = "symptoms"
	sectionSteps      = "step-by-step fix"
	sectionEscalation = "when to contact apple support"
	sectionRelated    = "related issues"
)

// Parse reads a raw troubleshooting document (front matter + body) and returns
// the structured Document. Unknown front matter keys are ignored; a missing
// image_urls key yields an empty slice and HasImages=false. Parse only fails
// on structural problems (no front matter block at all); content-quality
// issues are left to Validate.
func Parse(filename string, raw string) (*Document, error) {
	doc := &Document{
		Filename:  filename,
		ImageURLs: []string{},
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}
	doc.Body = body

	for key, value := range meta {
		switch key {
		case "title":
			doc.Title = value
		case "category":
			doc.Category = value
		case "severity":
			doc.Severity = Severity(strings.ToLower(value))
		case "updated":
			if t, err := time.Parse("2006-01-02", firstN(value, 10)); err == nil {
				doc.Updated = &t
			}
		case "has_images":
			doc.HasImages = value == "true"
		case "image_urls":
			doc.ImageURLs = parseURLList(value)
		case "source":
			doc.SourceURL = value
		}
		// Unknown keys are ignored per the contract.
	}

	parseBody(doc, body)
	return doc, nil
}

// splitFrontMatter separates the leading `---` delimited key/value block from
// the body. Keys and values are trimmed; a key may appear once.
func splitFrontMatter(raw string) (map[string]string, string, error) {
	trimmed := strings.TrimLeft(raw, "\ufeff\n\r ")
	if !strings.HasPrefix(trimmed, frontMatterDelimiter) {
		return nil, "", fmt.Errorf("document has no front matter block")
	}

	rest := trimmed[len(frontMatterDelimiter):]
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return nil, "", fmt.Errorf("front matter block is not terminated")
	}

	block := rest[:end]
	body := rest[end+len(frontMatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	meta := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		meta[strings.ToLower(key)] = value
	}

	return meta, strings.TrimSpace(body), nil
}

// parseURLList accepts either a JSON-style bracket list or a comma-separated
// sequence of URLs.
func parseURLList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	var urls []string
	for _, part := range strings.Split(value, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			urls = append(urls, part)
		}
	}
	if urls == nil {
		return []string{}
	}
	return urls
}

// parseBody walks the section headings and fills the structured fields.
// Every canonical heading occurrence is tallied; Validate turns a repeated
// section into a hard issue, so the last-wins overwrite here never reaches
// callers unflagged.
func parseBody(doc *Document, body string) {
	lines := strings.Split(body, "\n")
	doc.sectionCounts = make(map[string]int)

	current := ""
	var buf []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		switch current {
		case sectionOverview:
			doc.Overview = content
		case sectionSymptoms:
			doc.Symptoms = parseBulletList(content)
		case sectionSteps:
			doc.Steps = parseSteps(content)
		case sectionEscalation:
			doc.Escalation = content
		case sectionRelated:
			doc.RelatedIssues = parseRelatedIssues(content)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if m := sectionHeadingRe.FindStringSubmatch(line); m != nil {
			flush()
			current = strings.ToLower(strings.TrimSpace(m[1]))
			doc.sectionCounts[current]++
			continue
		}
		buf = append(buf, line)
	}
	flush()
}

func parseBulletList(content string) []string {
	var items []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			items = append(items, strings.TrimSpace(line[2:]))
		}
	}
	return items
}

// parseSteps splits the Step-by-Step Fix section on `### Step N:` headings.
// Within a step, `**Visual:**` and `**Voice:**` lines are lifted into their
// own channels; everything else is the primary instruction.
func parseSteps(content string) []FixStep {
	var steps []FixStep
	var cur *FixStep
	var instruction []string

	finish := func() {
		if cur == nil {
			return
		}
		cur.Instruction = strings.TrimSpace(strings.Join(instruction, "\n"))
		steps = append(steps, *cur)
		cur = nil
		instruction = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := stepHeadingRe.FindStringSubmatch(trimmed); m != nil {
			finish()
			n, _ := strconv.Atoi(m[1])
			cur = &FixStep{Number: n, Title: strings.TrimSpace(m[2])}
			continue
		}
		if cur == nil {
			continue
		}
		if m := visualChannelRe.FindStringSubmatch(trimmed); m != nil {
			cur.Visual = strings.TrimSpace(m[1])
			continue
		}
		if m := voiceChannelRe.FindStringSubmatch(trimmed); m != nil {
			cur.Voice = strings.TrimSpace(m[1])
			continue
		}
		instruction = append(instruction, line)
	}
	finish()

	return steps
}

// parseRelatedIssues tolerates both bare filenames and the annotated
// `filename.md (reason)` form, keeping list order.
func parseRelatedIssues(content string) []RelatedIssue {
	var issues []RelatedIssue
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		// Numbered list form: "1. filename.md (reason)"
		if i := strings.Index(line, ". "); i > 0 && i <= 3 {
			if _, err := strconv.Atoi(line[:i]); err == nil {
				line = strings.TrimSpace(line[i+2:])
			}
		}
		if line == "" {
			continue
		}
		if m := relatedIssueRe.FindStringSubmatch(line); m != nil {
			issues = append(issues, RelatedIssue{
				Filename: m[1],
				Reason:   strings.TrimSpace(m[2]),
			})
		}
	}
	return issues
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
