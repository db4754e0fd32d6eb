package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryFilePath(t *testing.T) {
	assert.Equal(t, "/discovery/organization/12/jsonld", DiscoveryFilePath("organization", 12, "jsonld"))
	assert.Equal(t, "/discovery/brand/3/index", DiscoveryFilePath("brand", 3, "index"))
}

func TestRemainingFreshness(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// a file cached late in its life only gets the remainder of the window
	assert.Equal(t, time.Hour, remainingFreshness(now, now, time.Hour))
	assert.Equal(t, time.Minute, remainingFreshness(now.Add(-59*time.Minute), now, time.Hour))

	// at or past the window the file is stale and must not be cached
	assert.LessOrEqual(t, remainingFreshness(now.Add(-time.Hour), now, time.Hour), time.Duration(0))
	assert.Negative(t, remainingFreshness(now.Add(-2*time.Hour), now, time.Hour))
}
