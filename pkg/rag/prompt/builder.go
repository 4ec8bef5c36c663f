package prompt

import (
	"fmt"
	"strings"

	"troubleshoot-agent-be/pkg/store"
)

// SystemPrompt is the persona and ground rules for the troubleshooting
// assistant. Every chat completion starts from this.
const SystemPrompt = `You are ARIA, an Apple iPhone troubleshooting assistant.

Your job is to diagnose iPhone problems and walk the user through fixes, one step at a time.

Rules:
- Base answers on the reference material provided. If it does not cover the question, say you don't have information about that rather than guessing.
- Give ONE step at a time and wait for the user to report back before moving on.
- Number steps and keep instructions concrete: name the exact Settings path, button, or gesture.
- If a step has already been tried this session, do not suggest it again; move to the next option.
- When steps are exhausted or hardware damage is likely, advise contacting Apple Support and say why.
- Only answer iPhone and Apple ecosystem questions. Politely decline anything else.
- Be warm but brief. No filler.`

// ContextualBuilder assembles the full prompt for one chat turn: retrieved
// knowledge, session memory, and the user's question.
type ContextualBuilder struct {
	session   *store.Session
	query     string
	documents []store.Document
	webNotice bool
}

// NewContextualBuilder creates a prompt builder for a single turn.
func NewContextualBuilder(session *store.Session, query string, documents []store.Document) *ContextualBuilder {
	return &ContextualBuilder{
		session:   session,
		query:     query,
		documents: documents,
	}
}

// FromWebSearch marks the reference material as coming from live web search
// rather than the curated knowledge base.
func (b *ContextualBuilder) FromWebSearch() *ContextualBuilder {
	b.webNotice = true
	return b
}

func (b *ContextualBuilder) Build() string {
	var prompt strings.Builder

	b.writeReferenceMaterial(&prompt)
	b.writeSessionState(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *ContextualBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	if len(b.documents) == 0 {
		return
	}

	prompt.WriteString("<reference_material>\n")
	if b.webNotice {
		prompt.WriteString("(The following was retrieved from a live web search. Prefer official Apple sources.)\n\n")
	}
	for i, doc := range b.documents {
		prompt.WriteString(fmt.Sprintf("[Source %d: %s]\n", i+1, doc.Title))
		prompt.WriteString(doc.Content)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *ContextualBuilder) writeSessionState(prompt *strings.Builder) {
	if b.session == nil {
		return
	}
	if len(b.session.StepsAttempted) == 0 && b.session.FrustrationSignals == 0 {
		return
	}

	prompt.WriteString("<session_state>\n")
	if b.session.CurrentIssue != "" && b.session.CurrentIssue != "unknown" {
		prompt.WriteString(fmt.Sprintf("Current issue: %s\n", b.session.CurrentIssue))
	}
	if len(b.session.StepsAttempted) > 0 {
		prompt.WriteString("Steps already suggested this session:\n")
		for _, step := range b.session.StepsAttempted {
			prompt.WriteString("- " + step + "\n")
		}
	}
	if b.session.FrustrationSignals > 0 {
		prompt.WriteString(fmt.Sprintf("The user has expressed frustration %d time(s). Acknowledge it and adjust tone.\n", b.session.FrustrationSignals))
	}
	prompt.WriteString("</session_state>\n\n")
}

func (b *ContextualBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now respond with the single most appropriate next step:")
}
