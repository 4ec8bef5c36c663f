package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIssueCategory(t *testing.T) {
	cases := []struct {
		query string
		want  IssueCategory
	}{
		{"My battery drains really fast", IssueBattery},
		{"iPhone won't connect to wifi", IssueWifi},
		{"Storage is full and I can't take photos", IssueStorage},
		{"Apps keep crashing after the update", IssueCrashes},
		{"Phone gets hot while charging", IssueBattery},
		{"My phone is overheating", IssueOverheating},
		{"AirPods won't pair", IssueBluetooth},
		{"The screen flickers sometimes", IssueScreen},
		{"How do I make pasta", IssueUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectIssueCategory(tc.query), "query: %s", tc.query)
	}
}

func TestDetectFrustration(t *testing.T) {
	assert.True(t, DetectFrustration("That didn't work at all"))
	assert.True(t, DetectFrustration("Still not working, this is useless"))
	assert.True(t, DetectFrustration("I already tried that"))
	assert.True(t, DetectFrustration("Nope, won't fix it"))
	assert.True(t, DetectFrustration("No, it did not help"))

	assert.False(t, DetectFrustration("Thanks, that fixed it"))
	assert.False(t, DetectFrustration("What should I do next?"))
}

func TestSoundsLikeNoKnowledge(t *testing.T) {
	assert.True(t, SoundsLikeNoKnowledge("I don't have specific information about that model."))
	assert.True(t, SoundsLikeNoKnowledge("Unfortunately I cannot find anything about this in my sources."))
	assert.False(t, SoundsLikeNoKnowledge("Go to Settings > Battery and check Battery Health."))
}

func TestIsIPhoneRelatedQuery(t *testing.T) {
	assert.True(t, IsIPhoneRelatedQuery("iphone 15 battery replacement cost"))
	assert.True(t, IsIPhoneRelatedQuery("how to reset network settings"))
	assert.False(t, IsIPhoneRelatedQuery("best lasagna recipe"))
}

func TestShouldEscalate(t *testing.T) {
	assert.False(t, ShouldEscalate(2, 1))
	assert.True(t, ShouldEscalate(3, 0))
	assert.True(t, ShouldEscalate(0, 2))
}
