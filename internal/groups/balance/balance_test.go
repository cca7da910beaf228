package balance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/balance"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

func runPasses(t *testing.T, areas []*domain.Area, links []*domain.Interconnection, horizon int) (*lpmatrix.Matrix, *indexmaps.Table) {
	t.Helper()
	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()

	sb := lpmatrix.NewSizingBuilder(matrix)
	balance.Build(sb, cols, rows, areas, links, horizon)

	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	require.NotPanics(t, func() {
		balance.Build(eb, cols, rows, areas, links, horizon)
	})
	return matrix, rows
}

func TestBuild_OneRowPerAreaPerHour(t *testing.T) {
	const horizon = 24
	areas := []*domain.Area{{GlobalIndex: 0, Name: "north"}, {GlobalIndex: 1, Name: "south"}}
	link := &domain.Interconnection{Origin: "north", Extremity: "south"}

	matrix, rows := runPasses(t, areas, []*domain.Interconnection{link}, horizon)
	assert.Equal(t, horizon*2, rows.Len())
	assert.Equal(t, horizon*2, matrix.NRows)
}

func TestBuild_InterconnectionTermsAppearOnBothEnds(t *testing.T) {
	const horizon = 1
	areas := []*domain.Area{{GlobalIndex: 0, Name: "north"}, {GlobalIndex: 1, Name: "south"}}
	link := &domain.Interconnection{Origin: "north", Extremity: "south"}

	matrix, _ := runPasses(t, areas, []*domain.Interconnection{link}, horizon)

	northRowLen := matrix.RowStart[1] - matrix.RowStart[0]
	southRowLen := matrix.RowStart[2] - matrix.RowStart[1]
	// each row: shortage, spillage, plus two interconnection terms = 4.
	assert.Equal(t, 4, northRowLen)
	assert.Equal(t, 4, southRowLen)
}
