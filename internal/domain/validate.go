package domain

import (
	"fmt"

	"github.com/aristath/adequacy-core/internal/errs"
)

// validateAdditionalConstraintsBlock implements the specified (not the
// legacy, looser) validation rules for STS AdditionalConstraints blocks:
// cluster id non-empty, variable/operator within their enumerations, hours
// within [1,168], and every hour group non-empty.
func validateAdditionalConstraintsBlock(b AdditionalConstraintsBlock) error {
	if b.ClusterID == "" {
		return fmt.Errorf("additional constraint %q: %w: cluster id is empty", b.Name, errs.ErrInvalidInput)
	}
	switch b.Variable {
	case VariableInjection, VariableWithdrawal, VariableNetting:
	default:
		return fmt.Errorf("additional constraint %q: %w: unknown variable %d", b.Name, errs.ErrInvalidInput, b.Variable)
	}
	switch b.Operator {
	case OperatorLess, OperatorEqual, OperatorGreater:
	default:
		return fmt.Errorf("additional constraint %q: %w: unknown operator %d", b.Name, errs.ErrInvalidInput, b.Operator)
	}
	if len(b.Groups) == 0 {
		return fmt.Errorf("additional constraint %q: %w: no hour groups", b.Name, errs.ErrInvalidInput)
	}
	for i, g := range b.Groups {
		if len(g.Hours) == 0 {
			return fmt.Errorf("additional constraint %q group %d: %w: hour group is empty", b.Name, i, errs.ErrInvalidInput)
		}
		if g.Min() < 1 || g.Max() > 168 {
			return fmt.Errorf("additional constraint %q group %d: %w: hours must be in [1,168], got [%d,%d]",
				b.Name, i, errs.ErrInvalidInput, g.Min(), g.Max())
		}
	}
	return nil
}

// ValidateShortTermStorageCluster enforces the STS capacity/level invariant
// from spec §3: for capacity > 0, initial_level <= capacity.
func ValidateShortTermStorageCluster(c *ShortTermStorageCluster) error {
	if c.ReservoirCapacityMWh <= 0 {
		return nil
	}
	if c.InitialLevelMWh > c.ReservoirCapacityMWh {
		return fmt.Errorf("sts cluster %s/%s: %w: initial level %.3f exceeds capacity %.3f",
			c.Area, c.Name, errs.ErrInvalidInput, c.InitialLevelMWh, c.ReservoirCapacityMWh)
	}
	if c.InitialLevelMWh < 0 {
		return fmt.Errorf("sts cluster %s/%s: %w: initial level %.3f is negative",
			c.Area, c.Name, errs.ErrInvalidInput, c.InitialLevelMWh)
	}
	for _, blk := range c.AdditionalConstraints {
		if err := blk.Validate(); err != nil {
			return err
		}
		if blk.ClusterID != c.Name && blk.ClusterID != NormalizedID(c.Name) {
			return fmt.Errorf("additional constraint %q: %w: references unknown cluster %q",
				blk.Name, errs.ErrInvalidInput, blk.ClusterID)
		}
	}
	return nil
}

// ValidateBindingConstraint enforces spec §3's offset-wrap invariant: an
// hourly binding constraint's term offsets wrap modulo the week length;
// daily/weekly constraints never wrap (so any non-zero offset there is
// nonsensical input).
func ValidateBindingConstraint(bc *BindingConstraint, horizonHours int) error {
	if bc.Scope != ScopeHourly {
		for _, t := range bc.Terms {
			if t.TimeOffset != 0 {
				return fmt.Errorf("binding constraint %q: %w: non-hourly constraints cannot carry a time offset",
					bc.Name, errs.ErrInvalidInput)
			}
		}
	}
	_ = horizonHours
	return nil
}
