package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/snapshot"
	"github.com/aristath/adequacy-core/internal/weekly"
)

func fixtureProblem() *weekly.Problem {
	m := lpmatrix.New()
	m.SetColumnCount(1)
	m.AnnounceRow(1)
	m.Freeze()
	b := lpmatrix.NewEmitBuilder(m)
	b.Term(0, 1.0)
	b.LessThan()
	m.RHS[0] = 10
	m.XMax[0] = 5

	return &weekly.Problem{
		RunID:  uuid.New(),
		Year:   2030,
		Week:   5,
		Matrix: m,
		Primal: []float64{3.5},
		Dual:   []float64{0.1},
		Pass1:  weekly.PassResult{ObjValue: 1, Status: weekly.StatusOptimal},
		Pass2:  weekly.PassResult{ObjValue: 2, Status: weekly.StatusOptimal},
	}
}

func TestWriteBinary_ReadBinaryRoundTrips(t *testing.T) {
	p := fixtureProblem()
	path := filepath.Join(t.TempDir(), "week.msgpack")

	require.NoError(t, snapshot.WriteBinary(path, p))

	b, err := snapshot.ReadBinary(path)
	require.NoError(t, err)
	assert.Equal(t, p.RunID.String(), b.RunID)
	assert.Equal(t, 2030, b.Year)
	assert.Equal(t, []float64{3.5}, b.Primal)
	assert.Equal(t, 2.0, b.Pass2ObjValue)
}

func TestWriteText_ProducesReadableFile(t *testing.T) {
	p := fixtureProblem()
	path := filepath.Join(t.TempDir(), "week.txt")

	require.NoError(t, snapshot.WriteText(path, p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "year=2030")
	assert.Contains(t, content, "col[0]")
	assert.Contains(t, content, "row[0]")
}
