package lpmatrix_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/errs"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

func TestBuilder_SizingThenEmit_AgreeingCounts(t *testing.T) {
	m := lpmatrix.New()

	size := lpmatrix.NewSizingBuilder(m)
	size.Term(0, 1).Term(1, 2).LessThan()
	size.Term(0, 1).EqualTo()
	m.SetColumnCount(2)
	m.Freeze()

	emit := lpmatrix.NewEmitBuilder(m)
	emit.Term(0, 1).Term(1, 2).LessThan()
	emit.Term(0, 1).EqualTo()

	require.NoError(t, emit.Validate())
	assert.Equal(t, 2, m.NRows)
	assert.Equal(t, 3, m.NNZ)
}

func TestBuilder_Validate_NoOpInSizingMode(t *testing.T) {
	m := lpmatrix.New()
	size := lpmatrix.NewSizingBuilder(m)
	size.Term(0, 1).LessThan()
	assert.NoError(t, size.Validate())
}

func TestBuilder_Validate_CatchesFewerEmitRowsThanSized(t *testing.T) {
	m := lpmatrix.New()

	size := lpmatrix.NewSizingBuilder(m)
	size.Term(0, 1).LessThan()
	size.Term(0, 1).EqualTo()
	m.SetColumnCount(1)
	m.Freeze()

	emit := lpmatrix.NewEmitBuilder(m)
	emit.Term(0, 1).LessThan()

	err := emit.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInconsistentSizing))
}

func TestBuilder_Validate_CatchesFewerNonZerosThanSized(t *testing.T) {
	m := lpmatrix.New()

	size := lpmatrix.NewSizingBuilder(m)
	size.Term(0, 1).Term(1, 1).LessThan()
	m.SetColumnCount(2)
	m.Freeze()

	emit := lpmatrix.NewEmitBuilder(m)
	// Sizing announced a 2-term row; emit only appends one before closing
	// it, leaving rows in step but non-zeros short.
	emit.Term(0, 1).LessThan()

	err := emit.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInconsistentSizing))
}

func TestNewEmitBuilder_PanicsOnUnfrozenMatrix(t *testing.T) {
	m := lpmatrix.New()
	assert.Panics(t, func() {
		lpmatrix.NewEmitBuilder(m)
	})
}
