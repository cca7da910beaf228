package observer_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/adequacy-core/internal/observer"
	"github.com/aristath/adequacy-core/internal/weekly"
)

func TestNotify_DeliversToRegisteredClient(t *testing.T) {
	b := observer.New(zerolog.Nop())

	// exercise the broadcast path directly rather than through a real
	// websocket dial, which would need a live net/http.Server.
	received := make(chan observer.Event, 1)
	c := observer.NewTestClient(received)
	b.AddTestClient(c)
	defer b.RemoveTestClient(c)

	p := &weekly.Problem{RunID: uuid.New(), Year: 2030, Week: 14}
	b.Notify("pass1_solved", p)

	ev := <-received
	assert.Equal(t, "pass1_solved", ev.Type)
	assert.Equal(t, 2030, ev.Year)
	assert.Equal(t, 14, ev.Week)
}

func TestNotify_DropsEventWhenClientBufferFull(t *testing.T) {
	b := observer.New(zerolog.Nop())

	received := make(chan observer.Event) // unbuffered, never read
	c := observer.NewTestClient(received)
	b.AddTestClient(c)
	defer b.RemoveTestClient(c)

	p := &weekly.Problem{RunID: uuid.New(), Year: 2030, Week: 1}
	assert.NotPanics(t, func() { b.Notify("week_complete", p) })
}
