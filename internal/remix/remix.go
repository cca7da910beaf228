// Package remix implements the post-solve hydro redispatch ("HydroRemix",
// spec §4.7): an iterative local-improvement pass that flattens net
// generation (thermal + hydro) around slack hours, reshaping the solved
// turbining trajectory toward valleys without changing its weekly energy
// total and without violating turbine/pump bounds or the reservoir's level
// trajectory. Grounded on the header `hydro-remix-new.h` signature (spec §9
// open question: the inflow-overflow+pump variant, not the superseded
// inflow-only one).
package remix

import "github.com/aristath/adequacy-core/internal/errs"

// MaxIterations bounds the valley/peak search; the loop also stops early
// once a full sweep produces no improving swap.
const MaxIterations = 1000

const eps = 1e-9

// Input is one reservoir's post-solve state for one week, named after the
// original algorithm's header signature: G is the residual thermal
// generation the reservoir is reshaping around, H is the solved turbining
// trajectory being redispatched, D is unserved demand. Pmax/Pmin bound
// turbining. Inflow/Overflow/Pump describe the reservoir's energy balance.
// S is the must-run floor and DTGMrg the dispatchable-thermal-generation
// margin; an hour is only eligible for reshaping when S(t)+DTGMrg(t)==0
// (spec §4.7 bullet 2).
type Input struct {
	G         []float64
	H         []float64
	D         []float64
	Pmax      []float64
	Pmin      []float64
	InitLevel float64
	Capacity  float64
	Inflow    []float64
	Overflow  []float64
	Pump      []float64
	S         []float64
	DTGMrg    []float64
}

// Result is the reshaped turbining and unserved-demand trajectories plus
// the resulting level trajectory, returned so a caller can write all three
// back without recomputing the level recursion itself.
type Result struct {
	H      []float64
	D      []float64
	Level  []float64
	Rounds int
}

// Run reshapes in.H toward valleys in the net load, moving energy from a
// peak hour (high G+H) to a valley hour (low G+H, unserved demand present)
// as long as both remain within Pmax/Pmin and the resulting level
// trajectory stays within [0, Capacity]. It fails fast on malformed input
// rather than silently clamping.
func Run(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	n := len(in.H)
	h := append([]float64(nil), in.H...)
	d := append([]float64(nil), in.D...)
	eligible := make([]bool, n)
	for t := 0; t < n; t++ {
		eligible[t] = absf(in.S[t]+in.DTGMrg[t]) < eps && in.H[t]+in.D[t] > eps
	}

	level, ok := trajectory(h, in)
	if !ok {
		return Result{}, errs.ErrInternal
	}

	rounds := 0
	for rounds = 0; rounds < MaxIterations; rounds++ {
		peak, valley, delta := bestSwap(h, d, in, level, eligible)
		if delta <= eps {
			break
		}
		h[peak] -= delta
		h[valley] += delta
		d[peak] += delta
		d[valley] -= delta

		newLevel, ok := trajectory(h, in)
		if !ok {
			// bestSwap already checked room between peak and valley; this
			// should not happen, but never apply a swap we can't confirm.
			h[peak] += delta
			h[valley] -= delta
			d[peak] -= delta
			d[valley] += delta
			break
		}
		level = newLevel
	}

	return Result{H: h, D: d, Level: level, Rounds: rounds}, nil
}

func validate(in Input) error {
	n := len(in.H)
	if n == 0 {
		return errs.ErrInvalidInput
	}
	for _, series := range [][]float64{in.G, in.D, in.Pmax, in.Pmin, in.Inflow, in.Overflow, in.Pump, in.S, in.DTGMrg} {
		if len(series) != n {
			return errs.ErrInvalidInput
		}
	}
	if in.Capacity < 0 || in.InitLevel < 0 || in.InitLevel > in.Capacity+eps {
		return errs.ErrInvalidInput
	}
	for t := 0; t < n; t++ {
		if in.Pmin[t] > in.Pmax[t]+eps {
			return errs.ErrInvalidInput
		}
		if in.H[t] > in.Pmax[t]+eps || in.H[t] < in.Pmin[t]-eps {
			return errs.ErrInvalidInput
		}
	}
	if _, ok := trajectory(in.H, in); !ok {
		return errs.ErrInvalidInput
	}
	return nil
}

// trajectory recomputes the level path implied by h, reporting false if it
// would leave [0, Capacity] at any hour.
func trajectory(h []float64, in Input) ([]float64, bool) {
	level := make([]float64, len(h))
	prev := in.InitLevel
	for t := range h {
		l := prev + in.Inflow[t] - h[t] - in.Overflow[t] + in.Pump[t]
		if l < -1e-6 || l > in.Capacity+1e-6 {
			return nil, false
		}
		if l < 0 {
			l = 0
		}
		if l > in.Capacity {
			l = in.Capacity
		}
		level[t] = l
		prev = l
	}
	return level, true
}

// bestSwap walks valleys in increasing order of (G+H)[v] and, for each,
// peaks in decreasing order of (G+H)[p], returning the first improving,
// feasible swap it finds (mirroring the reference nested-loop search:
// "for each valley ... for each peak ... if delta>0 break"). Returns
// delta==0 when no swap improves anything.
func bestSwap(h, d []float64, in Input, level []float64, eligible []bool) (peak, valley int, delta float64) {
	n := len(h)
	gh := make([]float64, n)
	for t := 0; t < n; t++ {
		gh[t] = in.G[t] + h[t]
	}

	valleys := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if eligible[v] && d[v] > eps && h[v] < in.Pmax[v]-eps {
			valleys = append(valleys, v)
		}
	}
	sortByKeyAsc(valleys, gh)

	peaks := make([]int, 0, n)
	for p := 0; p < n; p++ {
		if eligible[p] && h[p] > in.Pmin[p]+eps {
			peaks = append(peaks, p)
		}
	}
	sortByKeyDesc(peaks, gh)

	for _, v := range valleys {
		for _, p := range peaks {
			if p == v || gh[p] < gh[v]+eps {
				continue
			}

			var maxPeak, maxValley float64
			if v < p {
				// Only the segment [v,p-1] moves (downward) as h[v] rises;
				// h[p]'s decrease and h[v]'s increase cancel beyond p.
				maxPeak = h[p] - in.Pmin[p]
				maxValley = minf(in.Pmax[v]-h[v], d[v], roomToLower(level, v, p))
			} else {
				// Only the segment [p,v-1] moves (upward) as h[p] falls.
				maxPeak = minf(h[p]-in.Pmin[p], roomToRaise(level, p, v, in.Capacity))
				maxValley = minf(in.Pmax[v]-h[v], d[v])
			}

			step := minf(maxPeak, maxValley, (gh[p]-gh[v])/2)
			if step > eps {
				return p, v, step
			}
		}
	}
	return 0, 0, 0
}

// roomToLower returns how much h[v] can rise (lowering the level across
// [v,p-1]) before any hour in that segment hits zero.
func roomToLower(level []float64, v, p int) float64 {
	m := level[v]
	for t := v + 1; t < p; t++ {
		if level[t] < m {
			m = level[t]
		}
	}
	return m
}

// roomToRaise returns how much h[p] can fall (raising the level across
// [p,v-1]) before any hour in that segment hits capacity.
func roomToRaise(level []float64, p, v int, capacity float64) float64 {
	m := level[p]
	for t := p + 1; t < v; t++ {
		if level[t] > m {
			m = level[t]
		}
	}
	return capacity - m
}

func minf(values ...float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sortByKeyAsc(idx []int, key []float64) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && key[idx[j-1]] > key[idx[j]]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}

func sortByKeyDesc(idx []int, key []float64) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && key[idx[j-1]] < key[idx[j]]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}
