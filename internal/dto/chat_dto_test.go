package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The payload field names inside the response envelope are a contract with
// non-Go clients. Renaming any of them breaks deployed frontends.
func TestChatWireFieldNames(t *testing.T) {
	resp := SendChatResponse{
		SessionId:   "web-abc12345",
		MessageId:   uuid.New(),
		Text:        "Try enabling Low Power Mode.",
		Steps:       []AgentStepDTO{{Phase: "observe", Text: "battery drops quickly"}},
		Sources:     []SourceDTO{{Title: "battery_drain_basics.md", Score: 0.91}},
		AudioBase64: "AA==",
		CreatedAt:   time.Now(),
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Contains(t, m, "text")
	assert.Contains(t, m, "audio_base64")
	assert.NotContains(t, m, "response")
	assert.NotContains(t, m, "audio")

	steps, ok := m["steps"].([]interface{})
	require.True(t, ok)
	require.Len(t, steps, 1)
	step := steps[0].(map[string]interface{})
	assert.Equal(t, "observe", step["phase"])
	assert.Equal(t, "battery drops quickly", step["text"])
	assert.NotContains(t, step, "type")
	assert.NotContains(t, step, "content")
}

func TestChatRequestImageFieldName(t *testing.T) {
	var req SendChatRequest
	raw := `{"session_id":"web-abc12345","message":"screen flickers","image_base64":"AA=="}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "AA==", req.ImageBase64)
}

func TestSessionHistoryFieldName(t *testing.T) {
	resp := GetSessionResponse{
		SessionId: "web-abc12345",
		History:   []SessionMessageDTO{{Role: "user", Content: "my wifi keeps dropping"}},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "history")
	assert.NotContains(t, m, "messages")
}
