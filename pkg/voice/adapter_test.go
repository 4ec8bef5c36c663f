package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptForSpeech_Coordinates(t *testing.T) {
	got := AdaptForSpeech("Tap the icon at the top-right corner")
	assert.Contains(t, got, "in the top right of the screen")
	assert.NotContains(t, got, "top-right")
}

func TestAdaptForSpeech_SettingsPath(t *testing.T) {
	got := AdaptForSpeech("Go to Settings > Battery > Battery Health")
	assert.Contains(t, got, "open Settings")
	assert.Contains(t, got, "Battery Health")
	assert.NotContains(t, got, ">")
}

func TestAdaptForSpeech_URLSimplification(t *testing.T) {
	got := AdaptForSpeech("See https://support.apple.com/en-us/HT201295 for details")
	assert.Contains(t, got, "the Apple Support website")
	assert.NotContains(t, got, "https://")

	got = AdaptForSpeech("Check https://www.example.com/page")
	assert.Contains(t, got, "the example.com website")
}

func TestAdaptForSpeech_StepOrdinals(t *testing.T) {
	got := AdaptForSpeech("Repeat Step 3 if the issue persists")
	assert.Contains(t, got, "third step")
	assert.NotContains(t, got, "Step 3")
}

func TestAdaptForSpeech_StripsMarkdown(t *testing.T) {
	got := AdaptForSpeech("**Restart** your phone. See [this guide](https://support.apple.com/x).")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "](")
	assert.Contains(t, got, "Restart your phone")
}

func TestAdaptForSpeech_GearIcon(t *testing.T) {
	got := AdaptForSpeech("Tap the gear icon")
	assert.Contains(t, got, "cogwheel")
}
