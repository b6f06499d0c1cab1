package misc

import (
	"github.com/stretchr/testify/assert"
	"regexp"
	"testing"
	"time"
)

func TestNewCorrelationID(t *testing.T) {
	now := time.Date(2026, 10, 14, 2, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "backup run", prefix: BackupPrefix},
		{name: "smoke test run", prefix: SmokeTestPrefix},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := NewCorrelationID(test.prefix, now)
			pattern := regexp.MustCompile(`^` + test.prefix + `_1791943200000_[a-zA-Z0-9]{8}$`)
			assert.Regexp(t, pattern, got)
		})
	}
}

func TestNewCorrelationID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewCorrelationID(BackupPrefix, now)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate correlation id %s", id)
		seen[id] = struct{}{}
	}
}

func TestStrContains(t *testing.T) {
	assert.True(t, StrContains("y", []string{"Yes", "yes", "y"}))
	assert.False(t, StrContains("n", []string{"Yes", "yes", "y"}))
}
