package voice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AdaptForSpeech rewrites assistant text so it reads naturally when spoken.
// Visual references that only make sense on a screen (coordinates, icon
// glyphs, raw URLs, breadcrumb paths) are replaced with spoken equivalents.
func AdaptForSpeech(text string) string {
	text = stripMarkdown(text)
	text = spellOutCoordinates(text)
	text = spellOutIcons(text)
	text = spellOutSettingsPaths(text)
	text = simplifyURLs(text)
	text = spellOutStepNumbers(text)
	return strings.TrimSpace(text)
}

var (
	markdownBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	markdownItalic = regexp.MustCompile(`\*([^*]+)\*`)
	markdownHeader = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownBullet = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	markdownLink   = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

func stripMarkdown(text string) string {
	text = markdownLink.ReplaceAllString(text, "$1")
	text = markdownBold.ReplaceAllString(text, "$1")
	text = markdownItalic.ReplaceAllString(text, "$1")
	text = markdownHeader.ReplaceAllString(text, "")
	text = markdownBullet.ReplaceAllString(text, "")
	return text
}

var coordinatePattern = regexp.MustCompile(`(?i)\b(?:at\s+the\s+|in\s+the\s+)?(top|bottom|upper|lower)[-\s](left|right|center)(?:\s+corner)?\b`)

func spellOutCoordinates(text string) string {
	return coordinatePattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := coordinatePattern.FindStringSubmatch(m)
		return fmt.Sprintf("in the %s %s of the screen", strings.ToLower(sub[1]), strings.ToLower(sub[2]))
	})
}

var iconReplacements = []struct {
	pattern *regexp.Regexp
	spoken  string
}{
	{regexp.MustCompile(`(?i)\bgear\s+icon\b`), "the Settings gear, the icon that looks like a small cogwheel"},
	{regexp.MustCompile(`(?i)\bthe\s+"?i"?\s+icon\b`), "the information button, a small circled letter i"},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?⚙️?\s*icon\b`), "the Settings gear icon"},
	{regexp.MustCompile(`(?i)\bairplane\s+icon\b`), "the airplane symbol"},
	{regexp.MustCompile(`(?i)\btoggle\s+switch\b`), "the on-off switch"},
}

func spellOutIcons(text string) string {
	for _, r := range iconReplacements {
		text = r.pattern.ReplaceAllString(text, r.spoken)
	}
	return text
}

var settingsPathPattern = regexp.MustCompile(`\b(Settings|General|Privacy|Battery|Bluetooth|Wi-Fi)((?:\s*>\s*[A-Za-z0-9&\- ]+)+)`)

func spellOutSettingsPaths(text string) string {
	return settingsPathPattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := strings.Split(m, ">")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch len(parts) {
		case 1:
			return parts[0]
		case 2:
			return fmt.Sprintf("open %s, then tap %s", parts[0], parts[1])
		default:
			last := parts[len(parts)-1]
			middle := strings.Join(parts[1:len(parts)-1], ", then ")
			return fmt.Sprintf("open %s, then %s, and finally tap %s", parts[0], middle, last)
		}
	})
}

var urlPattern = regexp.MustCompile(`https?://([a-zA-Z0-9.\-]+)(/\S*)?`)

func simplifyURLs(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := urlPattern.FindStringSubmatch(m)
		host := strings.TrimPrefix(sub[1], "www.")
		if host == "support.apple.com" {
			return "the Apple Support website"
		}
		return "the " + host + " website"
	})
}

var ordinals = []string{"zeroth", "first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth", "ninth", "tenth"}

var stepNumberPattern = regexp.MustCompile(`(?i)\bStep\s+(\d+)\b`)

func spellOutStepNumbers(text string) string {
	return stepNumberPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := stepNumberPattern.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[1])
		if err != nil || n <= 0 || n >= len(ordinals) {
			return m
		}
		return ordinals[n] + " step"
	})
}
