package sysmetrics_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/adequacy-core/internal/sysmetrics"
)

func TestTimer_StopReturnsNonNegativeDuration(t *testing.T) {
	timer := sysmetrics.NewTimer("unit-test", zerolog.Nop())
	time.Sleep(time.Millisecond)
	d, _ := timer.Stop()
	assert.GreaterOrEqual(t, d, time.Duration(0))
}
