package store

import "troubleshoot-agent-be/pkg/agent"

// Document represents a retrieved knowledge chunk handed to the RAG pipeline.
type Document struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Session represents the active troubleshooting session state in memory.
// It tracks what the assistant has already suggested and how the
// conversation is going, so escalation can kick in at the right moment.
type Session struct {
	ID string `json:"id"` // ChatSessionID, client-generated

	// The issue currently being worked on ("battery", "wifi", ...).
	CurrentIssue agent.IssueCategory `json:"current_issue"`

	// Steps the assistant has suggested this session, in order.
	StepsAttempted []string `json:"steps_attempted"`

	// Count of steps the user reported as not working.
	FailedSteps int `json:"failed_steps"`

	// Count of frustration signals detected in user messages.
	FrustrationSignals int `json:"frustration_signals"`

	// Whether an escalation notice has already been sent for this session.
	Escalated bool `json:"escalated"`

	// Metadata for last interaction
	LastQuery string `json:"last_query"`
}

// NewSession returns a fresh session with no history.
func NewSession(id string) *Session {
	return &Session{
		ID:           id,
		CurrentIssue: agent.IssueUnknown,
	}
}

// RecordStep notes a suggestion the assistant just made.
func (s *Session) RecordStep(step string) {
	s.StepsAttempted = append(s.StepsAttempted, step)
}
