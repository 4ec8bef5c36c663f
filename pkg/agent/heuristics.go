package agent

import (
	"regexp"
	"strings"
)

// IssueCategory buckets a user query into a known troubleshooting area so
// retrieval can be narrowed and escalation tracked per issue.
type IssueCategory string

const (
	IssueBattery     IssueCategory = "battery"
	IssueWifi        IssueCategory = "wifi"
	IssueStorage     IssueCategory = "storage"
	IssueCrashes     IssueCategory = "crashes"
	IssueOverheating IssueCategory = "overheating"
	IssueBluetooth   IssueCategory = "bluetooth"
	IssueScreen      IssueCategory = "screen"
	IssueUnknown     IssueCategory = "unknown"
)

var issuePatterns = []struct {
	category IssueCategory
	pattern  *regexp.Regexp
}{
	{IssueBattery, regexp.MustCompile(`(?i)\b(battery|drain(s|ing)?|charg(e|ing)|power\s+(down|off))\b`)},
	{IssueWifi, regexp.MustCompile(`(?i)\b(wi-?fi|wireless|internet|network|connect(ion|ivity)?)\b`)},
	{IssueStorage, regexp.MustCompile(`(?i)\b(storage|space|full|memory|icloud)\b`)},
	{IssueCrashes, regexp.MustCompile(`(?i)\b(crash(es|ing)?|freez(e|es|ing)|frozen|unresponsive|restart(s|ing)?\s+(itself|randomly))\b`)},
	{IssueOverheating, regexp.MustCompile(`(?i)\b(overheat(s|ing)?|hot|warm|temperature)\b`)},
	{IssueBluetooth, regexp.MustCompile(`(?i)\b(bluetooth|airpods?|pair(ing)?|headphones?)\b`)},
	{IssueScreen, regexp.MustCompile(`(?i)\b(screen|display|touch(screen)?|flicker(ing)?|black\s+screen|cracked)\b`)},
}

// DetectIssueCategory returns the first matching issue bucket for a query.
// Order matters: battery complaints often mention "power" which would
// otherwise fall through to crashes.
func DetectIssueCategory(query string) IssueCategory {
	for _, p := range issuePatterns {
		if p.pattern.MatchString(query) {
			return p.category
		}
	}
	return IssueUnknown
}

var frustrationPhrases = []string{
	"still not working",
	"didn't work",
	"didnt work",
	"doesn't work",
	"doesnt work",
	"not working",
	"still broken",
	"tried that",
	"already tried",
	"this is useless",
	"frustrated",
	"annoying",
	"give up",
	"ridiculous",
	"waste of time",
	"nothing works",
	"same problem",
	"same issue",
}

var frustrationNegation = regexp.MustCompile(`(?i)(\bno\b|\bnope\b).*(\bwork|\bfix|\bhelp)`)

// DetectFrustration reports whether a message signals the previous
// suggestion failed or the user is losing patience.
func DetectFrustration(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range frustrationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return frustrationNegation.MatchString(message)
}

var noKnowledgePhrases = []string{
	"i don't have information",
	"i don't have specific information",
	"i do not have information",
	"i don't have enough information",
	"no information available",
	"i'm not sure about",
	"i cannot find",
	"i can't find",
	"not covered in",
	"outside my knowledge",
	"i don't have details",
	"unable to find information",
}

// SoundsLikeNoKnowledge reports whether an LLM answer admits it has nothing
// useful, which triggers a single web-search retry.
func SoundsLikeNoKnowledge(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range noKnowledgePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

var iphoneTerms = regexp.MustCompile(`(?i)\b(iphone|ios|apple|phone|device|screen|battery|wi-?fi|bluetooth|storage|icloud|airpods?|app(s)?|settings|camera|siri|facetime|imessage|update|restart|charg(e|ing|er))\b`)

// IsIPhoneRelatedQuery is the web-search guardrail. Queries with no device
// vocabulary at all are not sent to external search.
func IsIPhoneRelatedQuery(query string) bool {
	return iphoneTerms.MatchString(query)
}

// ShouldEscalate decides when to point the user at Apple Support: three or
// more suggested steps have failed, or the user has shown repeated
// frustration within the session.
func ShouldEscalate(failedSteps, frustrationSignals int) bool {
	return failedSteps >= 3 || frustrationSignals >= 2
}
