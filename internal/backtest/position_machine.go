package backtest

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/swing-trading/internal/types"
)

// Trailing ratchet factors used by the TRAILING_TARGET policy.
const (
	trailInitialStopFraction   = 0.6
	trailInitialTargetFraction = 0.8
	trailStepFraction          = 0.25
)

// ExitDecision is the outcome of one per-day evaluation: the settlement
// price and the rule that fired.
type ExitDecision struct {
	Price  float64
	Reason types.ExitReason
}

// PositionMachine evaluates a single open position against one day's bar.
// It is pure: each call returns the updated position and at most one exit
// decision, with no other side effects. Rules are checked in a fixed
// precedence order so only one exit fires per day even when several would
// qualify.
type PositionMachine struct {
	policy            ExitPolicy
	noTargetDays      int
	maxHoldDays       int
	noTargetExitPrice PriceSource
}

// NewPositionMachine builds a machine from the simulation config.
func NewPositionMachine(config Config) *PositionMachine {
	return &PositionMachine{
		policy:            config.ExitPolicy,
		noTargetDays:      config.NoTargetDays,
		maxHoldDays:       config.MaxHoldDays,
		noTargetExitPrice: config.NoTargetExitPrice,
	}
}

// EvaluateExit applies the exit rules to position for today's bar.
//
// The stop-loss is checked first: on an ambiguous bar whose range spans
// both levels, the worst intraday path is assumed to touch the stop before
// the target.
func (m *PositionMachine) EvaluateExit(position types.Position, bar types.Bar, today time.Time) (types.Position, optional.Option[ExitDecision]) {
	daysHeld := position.DaysHeld(today)

	if bar.Low <= position.StopLoss {
		return position, optional.Some(ExitDecision{
			Price:  position.StopLoss,
			Reason: types.ExitReasonStopLoss,
		})
	}

	if m.policy == ExitPolicyTrailingTarget {
		if bar.High >= position.Target {
			position = m.ratchet(position)

			return position, optional.None[ExitDecision]()
		}
	} else if !position.TargetHit && bar.High >= position.Target {
		position.TargetHit = true

		return position, optional.Some(ExitDecision{
			Price:  position.Target,
			Reason: types.ExitReasonTarget,
		})
	}

	if m.policy == ExitPolicyMaxHoldForced {
		if daysHeld >= m.maxHoldDays {
			return position, optional.Some(ExitDecision{
				Price:  bar.Open,
				Reason: types.ExitReasonMaxHold,
			})
		}

		return position, optional.None[ExitDecision]()
	}

	if !position.TargetHit && daysHeld >= m.noTargetDays {
		price := bar.Low
		if m.noTargetExitPrice == PriceSourceOpen {
			price = bar.Open
		}

		return position, optional.Some(ExitDecision{
			Price:  price,
			Reason: types.ExitReasonNoTarget,
		})
	}

	return position, optional.None[ExitDecision]()
}

// ratchet moves the stop and target upward on a target touch instead of
// exiting. The first touch locks in part of the move; later touches trail
// both levels by a quarter of the stop-target distance.
func (m *PositionMachine) ratchet(position types.Position) types.Position {
	if !position.TargetHit {
		position.TargetHit = true
		newStop := position.EntryPrice + trailInitialStopFraction*(position.Target-position.EntryPrice)
		extension := (position.Target - newStop) * trailInitialTargetFraction
		position.StopLoss = newStop
		position.Target += extension

		return position
	}

	step := (position.Target - position.StopLoss) * trailStepFraction
	position.StopLoss += step
	position.Target += step

	return position
}
