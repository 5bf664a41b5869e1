package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("é", 12)
	got := truncate(long, 10)
	assert.Equal(t, strings.Repeat("é", 10)+"...", got)
}
