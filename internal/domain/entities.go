// Package domain holds the entity types that make up one simulated study:
// areas, interconnections, thermal clusters, hydro reservoirs, short-term
// storage clusters, capacity reservations, reserve participations and
// binding constraints. All of it is owned by the surrounding study and only
// borrowed by a WeeklyProblem for the lifetime of one week's solve.
package domain

// WaterValueMode selects how a hydro reservoir's end-of-horizon value is
// modeled.
type WaterValueMode int

const (
	WaterValueSimple WaterValueMode = iota
	WaterValueAccurate
)

// Area is a demand node with attached thermal and storage clusters.
type Area struct {
	GlobalIndex        int // index within the whole study, stable across weeks
	Name               string
	Demand             []float64 // per-timestep, MW
	ShortageCostPerMWh float64
	SurplusCostPerMWh  float64
	ThermalClusters    []*ThermalCluster
	STStorageClusters  []*ShortTermStorageCluster
	HydroReservoir     *HydroReservoir
	ReserveUp          []*CapacityReservation
	ReserveDown        []*CapacityReservation

	// Result holds this area's per-hour solved output cells, written back
	// by the solver through the back-pointers VariableBoundsSetter/
	// RhsAssembler register (spec §4.5/§6: "per-hour primal result cells",
	// "per-hour marginal prices").
	Result AreaResult
}

// AreaResult is one area's per-hour output: unserved demand, spillage, and
// the balance row's dual (the area's marginal electricity price).
type AreaResult struct {
	Shortage      []float64
	Spillage      []float64
	MarginalPrice []float64
}

// EnsureResult (re)sizes r's slices to horizon, zeroing them for reuse
// across weeks (WeeklyProblem's reinit semantics, spec §3).
func (r *AreaResult) EnsureResult(horizon int) {
	r.Shortage = resize(r.Shortage, horizon)
	r.Spillage = resize(r.Spillage, horizon)
	r.MarginalPrice = resize(r.MarginalPrice, horizon)
}

func resize(s []float64, n int) []float64 {
	if cap(s) >= n {
		s = s[:n]
		for i := range s {
			s[i] = 0
		}
		return s
	}
	return make([]float64, n)
}

// Interconnection is a directed-capacity link between two areas.
type Interconnection struct {
	Origin        string
	Extremity     string
	NTCDirect     []float64 // origin -> extremity, per timestep, MW
	NTCIndirect   []float64 // extremity -> origin, per timestep, MW
	HurdleCostDir float64
	HurdleCostInd float64
	LoopFlow      []float64
	Resistance    float64

	Result InterconnectionResult
}

// InterconnectionResult is one interconnection's solved per-hour flows.
type InterconnectionResult struct {
	FlowDirect   []float64
	FlowIndirect []float64
}

// EnsureResult (re)sizes r's slices to horizon.
func (r *InterconnectionResult) EnsureResult(horizon int) {
	r.FlowDirect = resize(r.FlowDirect, horizon)
	r.FlowIndirect = resize(r.FlowIndirect, horizon)
}

// ThermalCluster is a group of identical thermal units in one area.
type ThermalCluster struct {
	Area                string
	Name                string
	Group               string
	MinStablePowerMW    float64
	MinUpTimeHours      int
	MinDownTimeHours    int
	SpinningLoss        float64 // fractional derate on availability
	MarginalCostPerMWh  float64
	StartupCost         float64
	FixedCostPerHour    float64
	MarketBidCost       float64
	AvailableUnits      []float64 // per timestep, fractional unit count available
	MustRun             bool
	NominalCapacityMW   float64
	GlobalIndex         int // index within the whole study (NumeroDuPalierDansLEnsembleDesPaliersThermiques)
	InitialUnitsOn      float64

	// PminOverride, when non-nil, replaces MinStablePowerMW per timestep.
	// Written by the thermal heuristic between the two optimization
	// passes (spec §4.6); nil on the first pass.
	PminOverride []float64

	// UnitsOnSolved holds pass 1's solved running-unit trajectory, copied
	// by the driver from pass 1's primal values of ColThermalUnitsOn. The
	// heuristic reads and rewrites it ahead of pass 2.
	UnitsOnSolved []float64

	Result ThermalResult
}

// ThermalResult is one thermal cluster's solved per-hour output.
type ThermalResult struct {
	Power   []float64
	UnitsOn []float64
}

// EnsureResult (re)sizes r's slices to horizon.
func (r *ThermalResult) EnsureResult(horizon int) {
	r.Power = resize(r.Power, horizon)
	r.UnitsOn = resize(r.UnitsOn, horizon)
}

// EffectiveUnitsOn returns the solved running-unit count for timestep t, or
// zero if pass 1 hasn't written one back yet.
func (c *ThermalCluster) EffectiveUnitsOn(t int) float64 {
	if t < len(c.UnitsOnSolved) {
		return c.UnitsOnSolved[t]
	}
	return 0
}

// EffectivePmin returns the minimum stable power for timestep t, honoring
// any heuristic override.
func (c *ThermalCluster) EffectivePmin(t int) float64 {
	if c.PminOverride != nil && t < len(c.PminOverride) {
		return c.PminOverride[t]
	}
	return c.MinStablePowerMW
}

// EffectivePmax returns the per-unit-derated max power for timestep t.
func (c *ThermalCluster) EffectivePmax(t int) float64 {
	return c.NominalCapacityMW * (1 - c.SpinningLoss)
}

// NormalizedID folds a raw cluster/area name into a stable identifier:
// case-folded, trimmed, non-alphanumerics collapsed.
func NormalizedID(raw string) string {
	return normalizeID(raw)
}

// HydroReservoir is one area's hydro stock.
type HydroReservoir struct {
	Area             string
	CapacityMWh      float64
	InitialLevelMWh  float64
	RuleCurveUpper   []float64 // per timestep, MWh
	RuleCurveLower   []float64
	InflowMWh        []float64 // per timestep
	PumpingRatio     float64   // efficiency of pumping -> stored energy
	MinGeneration    []float64 // per timestep, MW
	WaterValueMode   WaterValueMode
	PmaxTurbineMW    []float64
	PmaxPumpMW       []float64

	// RemixedTurbineMW and RemixedLevelMWh hold HydroRemix's post-solve
	// output (spec §4.7), written back by the driver after pass 2. Nil
	// until the first remix pass completes.
	RemixedTurbineMW []float64
	RemixedLevelMWh  []float64

	Result HydroResult
}

// HydroResult is one reservoir's solved per-hour output, ahead of any
// HydroRemix reshaping.
type HydroResult struct {
	Turbine  []float64
	Pump     []float64
	Level    []float64
	Overflow []float64
}

// EnsureResult (re)sizes r's slices to horizon.
func (r *HydroResult) EnsureResult(horizon int) {
	r.Turbine = resize(r.Turbine, horizon)
	r.Pump = resize(r.Pump, horizon)
	r.Level = resize(r.Level, horizon)
	r.Overflow = resize(r.Overflow, horizon)
}

// ShortTermStorageCluster is a battery / pumped-hydro style storage unit.
type ShortTermStorageCluster struct {
	Area                  string
	Name                  string
	GlobalIndex           int
	ReservoirCapacityMWh  float64
	InjectionNominalMW    float64
	WithdrawalNominalMW   float64
	InjectionEfficiency   float64
	WithdrawalEfficiency  float64
	InitialLevelMWh       float64
	InitialLevelOptimized bool
	ModulationInjection   []float64 // per timestep, fraction of nominal capacity
	ModulationWithdrawal  []float64
	AdditionalConstraints []AdditionalConstraintsBlock

	Result STSResult
}

// STSResult is one short-term-storage cluster's solved per-hour output.
type STSResult struct {
	Injection  []float64
	Withdrawal []float64
	Level      []float64
}

// EnsureResult (re)sizes r's slices to horizon.
func (r *STSResult) EnsureResult(horizon int) {
	r.Injection = resize(r.Injection, horizon)
	r.Withdrawal = resize(r.Withdrawal, horizon)
	r.Level = resize(r.Level, horizon)
}

// AdditionalConstraintVariable names which STS variable family a side
// constraint applies to.
type AdditionalConstraintVariable int

const (
	VariableInjection AdditionalConstraintVariable = iota
	VariableWithdrawal
	VariableNetting
)

// AdditionalConstraintOperator names a side constraint's sense.
type AdditionalConstraintOperator int

const (
	OperatorLess AdditionalConstraintOperator = iota
	OperatorEqual
	OperatorGreater
)

// HourGroup is a non-empty set of hours-of-week in [1,168] that a single
// AdditionalConstraintsBlock row sums over.
type HourGroup struct {
	Hours []int
}

// Min returns the smallest hour in the group, and Max the largest.
func (g HourGroup) Min() int {
	m := g.Hours[0]
	for _, h := range g.Hours[1:] {
		if h < m {
			m = h
		}
	}
	return m
}

func (g HourGroup) Max() int {
	m := g.Hours[0]
	for _, h := range g.Hours[1:] {
		if h > m {
			m = h
		}
	}
	return m
}

// AdditionalConstraintsBlock is one named side constraint on an STS cluster,
// summing a variable family over each of its hour groups and comparing the
// sum against a per-group RHS.
type AdditionalConstraintsBlock struct {
	Name        string
	ClusterID   string
	Variable    AdditionalConstraintVariable
	Operator    AdditionalConstraintOperator
	Groups      []HourGroup
	RHS         []float64 // one entry per group; shorter inputs are zero-padded by the loader
	LocalIndex  int
	GlobalIndex int
}

// Validate enforces the rules from spec §6/§9: cluster id non-empty,
// variable/operator within their enumerations, hours within [1,168] and
// each group non-empty.
func (b AdditionalConstraintsBlock) Validate() error {
	return validateAdditionalConstraintsBlock(b)
}

// CapacityReservation is a named operating-reserve requirement in one
// direction (up or down) for one area.
type CapacityReservation struct {
	Area                       string
	ReserveName                string
	Direction                  ReserveDirection
	Need                       []float64 // per timestep, MW
	FailureCostPerMWh          float64
	SpillageCostPerMWh         float64
	MaxActivationDurationHours int
	MaxActivationRatio         float64
	MaxEnergyActivationRatio   float64
	ThermalParticipants        []*ReserveParticipation
	STStorageParticipants      []*ReserveParticipation
	LTStorageParticipants      []*ReserveParticipation

	Result ReserveResult
}

// ReserveResult is one capacity reservation's solved per-hour output: the
// need row's slack columns and its dual (the reserve's marginal price).
type ReserveResult struct {
	Shortage      []float64
	Excess        []float64
	MarginalPrice []float64
}

// EnsureResult (re)sizes r's slices to horizon.
func (r *ReserveResult) EnsureResult(horizon int) {
	r.Shortage = resize(r.Shortage, horizon)
	r.Excess = resize(r.Excess, horizon)
	r.MarginalPrice = resize(r.MarginalPrice, horizon)
}

// ReserveDirection is up or down.
type ReserveDirection int

const (
	ReserveUp ReserveDirection = iota
	ReserveDown
)

// ReserveParticipation couples one cluster to one CapacityReservation.
type ReserveParticipation struct {
	ClusterName       string
	ClusterKind       ClusterKind
	MaxTurbiningMW    float64
	MaxPumpingMW      float64
	MaxPowerOnMW      float64 // thermal only: running-unit participation ceiling
	MaxPowerOffMW     float64 // thermal only: off-unit participation ceiling (up direction only)
	ParticipationCost float64
	GlobalIndex       int

	// ThermalClusterIndex is the owning ThermalCluster's GlobalIndex
	// (thermal participants only). It couples the max-on/max-off reserve
	// bound rows to that cluster's N(t) running-unit column, the way the
	// original ties reserve participation to the same cluster's unit count.
	ThermalClusterIndex int

	// StorageClusterIndex is the owning storage entity's GlobalIndex for
	// ST/LT storage participants: the ShortTermStorageCluster's GlobalIndex
	// for ClusterSTStorage, or the owning Area's GlobalIndex for
	// ClusterLTStorage (long-term storage is the area's HydroReservoir,
	// whose level column is addressed by area id, not a cluster id of its
	// own). It couples the stock-level reserve constraint to that entity's
	// level column.
	StorageClusterIndex int
}

// ClusterKind distinguishes the three families of reserve participants.
type ClusterKind int

const (
	ClusterThermal ClusterKind = iota
	ClusterSTStorage
	ClusterLTStorage
)

// BindingScope is the time granularity over which a BindingConstraint's
// weighted terms apply.
type BindingScope int

const (
	ScopeHourly BindingScope = iota
	ScopeDaily
	ScopeWeekly
)

// BindingSense is a BindingConstraint's comparison operator.
type BindingSense int

const (
	BindingLessEqual BindingSense = iota
	BindingEqual
	BindingGreaterEqual
)

// BindingTerm is one weighted reference to an interconnection or a thermal
// cluster's dispatch, with an optional time offset (hours, for hourly
// constraints; wraps modulo the week length only when Scope is hourly).
type BindingTerm struct {
	InterconnectionIndex int // -1 when this term references a thermal cluster instead
	ThermalClusterIndex  int // -1 when this term references an interconnection instead
	Weight               float64
	TimeOffset           int
}

// BindingConstraint is a user-defined linear constraint coupling flows and
// dispatch across entities, possibly across timesteps.
type BindingConstraint struct {
	Name  string
	Sense BindingSense
	Scope BindingScope
	RHS   []float64 // per timestep (or per day/week depending on Scope)
	Terms []BindingTerm

	Result BindingResult
}

// BindingResult is one binding constraint's solved per-hour (or per-day,
// or single, depending on Scope) dual.
type BindingResult struct {
	MarginalPrice []float64
}

// EnsureResult (re)sizes r's slice to n entries (one per row the
// constraint's Scope produces: horizon for hourly, days for daily, 1 for
// weekly).
func (r *BindingResult) EnsureResult(n int) {
	r.MarginalPrice = resize(r.MarginalPrice, n)
}

// EnsureResults (re)sizes every entity's Result slices to horizon ahead of
// assembling a new week's LP (spec §3 "reused across weeks" / §4.5 "back-
// pointer where each optimized value should be written"). Called once by
// the driver before the sizing pass so every back-pointer registered
// during Bounds/RHS assembly has a live slot to close over.
func EnsureResults(areas []*Area, interconnections []*Interconnection, binding []*BindingConstraint, horizon int) {
	for _, area := range areas {
		area.Result.EnsureResult(horizon)
		for _, c := range area.ThermalClusters {
			c.Result.EnsureResult(horizon)
		}
		if area.HydroReservoir != nil {
			area.HydroReservoir.Result.EnsureResult(horizon)
		}
		for _, c := range area.STStorageClusters {
			c.Result.EnsureResult(horizon)
		}
		for _, res := range area.ReserveUp {
			res.Result.EnsureResult(horizon)
		}
		for _, res := range area.ReserveDown {
			res.Result.EnsureResult(horizon)
		}
	}
	for _, link := range interconnections {
		link.Result.EnsureResult(horizon)
	}
	for _, bc := range binding {
		n := horizon
		switch bc.Scope {
		case ScopeDaily:
			n = (horizon + 23) / 24
		case ScopeWeekly:
			n = 1
		}
		bc.Result.EnsureResult(n)
	}
}
