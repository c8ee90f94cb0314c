package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeClocker_Now(t *testing.T) {
	before := time.Now()
	got := New().Now()
	assert.False(t, got.Before(before))
}

func TestManual(t *testing.T) {
	c := NewManualUnix(59)
	assert.Equal(t, int64(59), c.Now().Unix())

	got := c.Advance(31 * time.Second)
	assert.Equal(t, int64(90), got.Unix())
	assert.Equal(t, int64(90), c.Now().Unix())

	c.Set(time.Unix(10, 0))
	assert.Equal(t, int64(10), c.Now().Unix())
}
