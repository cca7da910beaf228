package nametag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagger_AppendAlignsWithIndex(t *testing.T) {
	tg := New(true)
	tg.Append(0, "thermal_p", "fr", "gas1", "", 2026, 14, 2016)
	tg.Append(3, "thermal_p", "fr", "gas2", "", 2026, 14, 2017)

	names := tg.Names()
	assert.Len(t, names, 4)
	assert.Equal(t, "thermal_p::fr::gas1::::2026-14-2016", names[0])
	assert.Equal(t, "", names[1])
	assert.Equal(t, "", names[2])
	assert.Equal(t, "thermal_p::fr::gas2::::2026-14-2017", names[3])
}

func TestTagger_DisabledStillAligns(t *testing.T) {
	tg := New(false)
	tg.Append(2, "thermal_p", "fr", "gas1", "", 2026, 14, 2016)
	assert.Len(t, tg.Names(), 3)
	for _, n := range tg.Names() {
		assert.Equal(t, "", n)
	}
}

func TestTagger_UniqueWithinKind(t *testing.T) {
	tg := New(true)
	tg.Append(0, "balance", "fr", "", "", 2026, 14, 2016)
	tg.Append(1, "balance", "de", "", "", 2026, 14, 2016)
	assert.True(t, tg.UniqueWithinKind("balance"))

	tg.Append(2, "balance", "fr", "", "", 2026, 14, 2016)
	assert.False(t, tg.UniqueWithinKind("balance"))
}

func TestTagger_Reset(t *testing.T) {
	tg := New(true)
	tg.Append(0, "balance", "fr", "", "", 2026, 14, 2016)
	tg.Reset()
	assert.Empty(t, tg.Names())
}
