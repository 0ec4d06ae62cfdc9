package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryBackoff(1))
	assert.Equal(t, 8*time.Second, retryBackoff(3))
	assert.Equal(t, 600*time.Second, retryBackoff(10), "capped at ten minutes")
	assert.Equal(t, 600*time.Second, retryBackoff(50))
}
