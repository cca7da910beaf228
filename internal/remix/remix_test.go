package remix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/remix"
)

func zeros(n int) []float64 { return make([]float64, n) }

func constSlice(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

// flatThermalFlattensHydro is spec §8 scenario 1 ("Flat hydro smoothing"):
// constant thermal generation, a hydro trajectory rising from 0 to 40 MW
// against unserved demand falling from 80 to 0, should flatten to 20 MW
// every hour.
func flatThermalFlattensHydro() remix.Input {
	n := 5
	return remix.Input{
		G:         constSlice(n, 100),
		H:         []float64{0, 10, 20, 30, 40},
		D:         []float64{80, 60, 40, 20, 0},
		Pmax:      constSlice(n, 40),
		Pmin:      zeros(n),
		InitLevel: 500,
		Capacity:  1000,
		Inflow:    zeros(n),
		Overflow:  zeros(n),
		Pump:      zeros(n),
		S:         zeros(n),
		DTGMrg:    zeros(n),
	}
}

func TestRun_FlattensHydroAgainstConstantThermal(t *testing.T) {
	in := flatThermalFlattensHydro()
	out, err := remix.Run(in)
	require.NoError(t, err)

	for i, h := range out.H {
		assert.InDelta(t, 20, h, 1e-6, "hour %d", i)
	}
	assert.InDelta(t, sum(in.H), sum(out.H), 1e-6)
	for i, d := range out.D {
		assert.InDelta(t, in.H[i]+in.D[i]-out.H[i], d, 1e-6, "hour %d", i)
	}
}

// pmaxAtCurrentLevelIsNoOp is spec §8 scenario 2 ("Pmax clamp"): when every
// hour's Pmax already equals its current H, no valley has room to rise, so
// the algorithm must leave H and D untouched.
func TestRun_PmaxAtCurrentLevelIsNoOp(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.Pmax = append([]float64(nil), in.H...)

	out, err := remix.Run(in)
	require.NoError(t, err)
	assert.Equal(t, in.H, out.H)
	assert.Equal(t, in.D, out.D)
	assert.Equal(t, 0, out.Rounds)
}

// invalidInputRejection is spec §8 scenario 4: an hour where H exceeds its
// own Pmax is rejected before any reshaping is attempted.
func TestRun_RejectsHAboveOwnPmaxAtSomeHour(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.H = []float64{1, 2, 3, 4, 5}
	in.Pmax = []float64{2, 2, 2, 4, 5}

	_, err := remix.Run(in)
	assert.Error(t, err)
}

// capacityLimitsReshape is spec §8 scenario 3 ("Capacity limits reshape"):
// inflow tapers mid-week, so the level trajectory touches the reservoir's
// capacity ceiling at hour 4 and the valley/peak search can't keep flattening
// past that point — the result is piecewise flat, not globally flat.
func capacityLimitsReshape() remix.Input {
	n := 10
	return remix.Input{
		G:         zeros(n),
		H:         []float64{20, 10, 20, 10, 20, 10, 20, 10, 20, 10},
		D:         constSlice(n, 20),
		Pmax:      constSlice(n, 100),
		Pmin:      zeros(n),
		InitLevel: 100,
		Capacity:  145,
		Inflow:    []float64{25, 25, 25, 25, 25, 5, 5, 5, 5, 5},
		Overflow:  zeros(n),
		Pump:      zeros(n),
		S:         zeros(n),
		DTGMrg:    zeros(n),
	}
}

func TestRun_CapacityLimitsReshapeIsPiecewiseFlat(t *testing.T) {
	in := capacityLimitsReshape()
	out, err := remix.Run(in)
	require.NoError(t, err)

	want := []float64{16, 16, 16, 16, 16, 14, 14, 14, 14, 14}
	for i, h := range want {
		assert.InDelta(t, h, out.H[i], 1e-6, "hour %d", i)
	}
	assert.InDelta(t, sum(in.H), sum(out.H), 1e-6)
	for i, l := range out.Level {
		assert.True(t, l <= in.Capacity+1e-6, "hour %d level %v exceeds capacity", i, l)
	}
	// the level trajectory still touches the capacity ceiling at hour 4,
	// which is exactly what stops the search from flattening further.
	assert.InDelta(t, in.Capacity, out.Level[4], 1e-6)
}

func TestRun_ConservesEnergySum(t *testing.T) {
	in := flatThermalFlattensHydro()
	out, err := remix.Run(in)
	require.NoError(t, err)
	assert.InDelta(t, sum(in.H), sum(out.H), 1e-6)
	assert.InDelta(t, sum(plus(in.H, in.D)), sum(plus(out.H, out.D)), 1e-6)
}

func plus(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func TestRun_Idempotent(t *testing.T) {
	in := flatThermalFlattensHydro()
	first, err := remix.Run(in)
	require.NoError(t, err)

	second := in
	second.H = first.H
	second.D = first.D
	out, err := remix.Run(second)
	require.NoError(t, err)

	for i := range first.H {
		assert.InDelta(t, first.H[i], out.H[i], 1e-3)
	}
}

func TestRun_SymmetricUnderTimeReversal(t *testing.T) {
	in := flatThermalFlattensHydro()
	reversed := reverse(in)

	out1, err := remix.Run(in)
	require.NoError(t, err)
	out2, err := remix.Run(reversed)
	require.NoError(t, err)

	n := len(out1.H)
	for i := 0; i < n; i++ {
		assert.InDelta(t, out1.H[i], out2.H[n-1-i], 1e-6)
	}
}

func reverse(in remix.Input) remix.Input {
	rev := func(xs []float64) []float64 {
		n := len(xs)
		out := make([]float64, n)
		for i, x := range xs {
			out[n-1-i] = x
		}
		return out
	}
	out := in
	out.G = rev(in.G)
	out.D = rev(in.D)
	out.H = rev(in.H)
	out.Pmax = rev(in.Pmax)
	out.Pmin = rev(in.Pmin)
	out.Inflow = rev(in.Inflow)
	out.Overflow = rev(in.Overflow)
	out.Pump = rev(in.Pump)
	out.S = rev(in.S)
	out.DTGMrg = rev(in.DTGMrg)
	return out
}

// capacitySoLowAtCapIsNoOp is spec §8's first boundary behavior: initial
// computed levels already equal the cap everywhere (no room to raise any
// level) and G+H is flat, so no peak/valley swap exists and remix must be a
// no-op.
func TestRun_CapacityAtCapEverywhereIsNoOp(t *testing.T) {
	n := 3
	in := remix.Input{
		G:         zeros(n),
		D:         []float64{10, 10, 10},
		H:         []float64{10, 10, 10},
		Pmax:      []float64{20, 20, 20},
		Pmin:      []float64{0, 0, 0},
		InitLevel: 100,
		Capacity:  100,
		Inflow:    []float64{10, 10, 10},
		Overflow:  zeros(n),
		Pump:      zeros(n),
		S:         zeros(n),
		DTGMrg:    zeros(n),
	}
	out, err := remix.Run(in)
	require.NoError(t, err)
	assert.Equal(t, in.H, out.H)
}

// pminTooHighIsNoOp is spec §8's second boundary behavior: Pmin equals H
// everywhere, so no peak has room to fall.
func TestRun_PminEqualsHEverywhereIsNoOp(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.Pmin = append([]float64(nil), in.H...)

	out, err := remix.Run(in)
	require.NoError(t, err)
	assert.Equal(t, in.H, out.H)
}

// zeroActivationIsNoOp is spec §8's third boundary behavior, recast for
// HydroRemix: when every hour is ineligible (S+DTGMrg != 0), no swap can
// ever be proposed regardless of how peaky the load is.
func TestRun_NoEligibleHoursIsNoOp(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.DTGMrg = constSlice(len(in.H), 1)

	out, err := remix.Run(in)
	require.NoError(t, err)
	assert.Equal(t, in.H, out.H)
}

func TestRun_RejectsMismatchedLengths(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.D = in.D[:len(in.D)-1]
	_, err := remix.Run(in)
	assert.Error(t, err)
}

func TestRun_RejectsInitLevelAboveCapacity(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.InitLevel = in.Capacity + 1
	_, err := remix.Run(in)
	assert.Error(t, err)
}

func TestRun_RejectsPminAboveOwnPmax(t *testing.T) {
	in := flatThermalFlattensHydro()
	in.Pmin[0] = in.Pmax[0] + 1
	_, err := remix.Run(in)
	assert.Error(t, err)
}

func TestRun_EmptySeriesRejected(t *testing.T) {
	_, err := remix.Run(remix.Input{})
	assert.Error(t, err)
}
