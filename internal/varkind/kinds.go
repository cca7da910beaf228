// Package varkind centralizes the string tags used as indexmaps.Key.Kind
// values across every constraint group and assembler. Keeping them in one
// package (instead of each group package defining its own) is what lets
// the sizing pass and the emit pass of two different groups never collide
// on the same (kind, id, timestep) triple by accident.
package varkind

// Column kinds (one per LP variable family).
const (
	ColThermalPower      = "thermal_power"       // P(t)
	ColThermalUnitsOn    = "thermal_units_on"     // N(t), running unit count
	ColThermalStarted    = "thermal_started"      // S(t)
	ColThermalStopped    = "thermal_stopped"      // A(t)
	ColThermalFellOut    = "thermal_fell_outage"  // F(t)

	ColHydroTurbine  = "hydro_turbine"  // H(t)
	ColHydroPump     = "hydro_pump"     // pump(t)
	ColHydroLevel    = "hydro_level"    // L(t)
	ColHydroOverflow = "hydro_overflow" // spillage/overflow(t)

	ColSTSInjection = "sts_injection"  // withdrawal from grid / charge
	ColSTSWithdraw  = "sts_withdrawal" // injection to grid / discharge
	ColSTSLevel     = "sts_level"

	ColAreaShortage = "area_shortage"
	ColAreaSpillage = "area_spillage"

	ColReserveThermalOn    = "reserve_thermal_on"
	ColReserveThermalOff   = "reserve_thermal_off"
	ColReserveThermalTotal = "reserve_thermal_total" // P, composed from on+off
	ColReserveSTStorage  = "reserve_st_storage"
	ColReserveLTStorage  = "reserve_lt_storage"
	ColReserveExcess     = "reserve_excess"
	ColReserveShortage   = "reserve_shortage"

	ColInterconnectionFlowDirect   = "interco_flow_direct"
	ColInterconnectionFlowIndirect = "interco_flow_indirect"
)

// Row kinds (one per constraint family).
const (
	RowThermalPmin       = "thermal_pmin"
	RowThermalPmax       = "thermal_pmax"
	RowThermalUnitCount  = "thermal_unit_count"
	RowThermalOutageCap  = "thermal_outage_cap"
	RowThermalMinUp      = "thermal_min_up"
	RowThermalMinDown    = "thermal_min_down"

	RowHydroWeeklyBudget = "hydro_weekly_budget"
	RowHydroDailyBudget  = "hydro_daily_budget"
	RowHydroPmaxTurbine  = "hydro_pmax_turbine"
	RowHydroPminTurbine  = "hydro_pmin_turbine"
	RowHydroPmaxPump     = "hydro_pmax_pump"
	RowHydroLevel        = "hydro_level"
	RowHydroLevelBounds  = "hydro_level_bounds"
	RowHydroFinalValue   = "hydro_final_value_slice"

	RowSTSLevel          = "sts_level"
	RowSTSInjectionCap   = "sts_injection_cap"
	RowSTSWithdrawalCap  = "sts_withdrawal_cap"
	RowSTSAdditional     = "sts_additional"

	RowReserveNeed          = "reserve_need"
	RowReserveComposition   = "reserve_composition"
	RowReserveMaxOn         = "reserve_max_on"
	RowReserveMaxOff        = "reserve_max_off"
	RowReserveMaxTurbining  = "reserve_max_turbining"
	RowReserveMaxPumping    = "reserve_max_pumping"
	RowReserveStockLevel    = "reserve_stock_level"
	RowReserveGlobalStock   = "reserve_global_stock"

	RowAreaBalance = "area_balance"
	RowBinding     = "binding_constraint"
)
