package advancement

import (
	"context"
	"strconv"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Hit point choice keys stored in value data.
const (
	HitPointsMax     = "max"
	HitPointsAverage = "avg"
	// HitPointsRoll asks Apply to roll the hit die server-side; the rolled
	// result is what gets stored.
	HitPointsRoll = "roll"
)

// HitPoints tracks the hit point gain chosen at every class level. It never
// contributes overlay changes; the sheet reads its resolved totals during
// the explicit hit point recompute instead.
type HitPoints struct {
	base
}

func configureHitPoints(cfg *entities.AdvancementConfig) error {
	if cfg.HitPoints == nil {
		return errors.InvalidArgument("hit points configuration is missing")
	}
	if !rules.IsHitDie(cfg.HitPoints.Die) {
		return errors.InvalidArgumentf("d%d is not a valid hit die", cfg.HitPoints.Die)
	}
	return nil
}

// Levels implements Advancement: hit points have content at every class
// level.
func (h *HitPoints) Levels() []int {
	levels := make([]int, rules.MaxLevel)
	for i := range levels {
		levels[i] = i + 1
	}
	return levels
}

// ConfiguredForLevel implements Advancement.
func (h *HitPoints) ConfiguredForLevel(level int) bool {
	v := h.value()
	if v == nil {
		return false
	}
	_, ok := v.HitPoints[level]
	return ok
}

// Apply implements Advancement. The first class level always takes the die
// maximum. Automated backfill repeats an "avg" choice from the immediately
// preceding level; any other gap is left pending for the player.
func (h *HitPoints) Apply(_ context.Context, level int, data *ApplyData, opts Options) error {
	die := h.cfg.HitPoints.Die

	choice := ""
	switch {
	case level == 1:
		choice = HitPointsMax
	case data != nil && data.HitPoints != "":
		resolved, err := h.resolveChoice(data.HitPoints, die)
		if err != nil {
			return err
		}
		choice = resolved
	case opts.Initial:
		if prev := h.value(); prev != nil && prev.HitPoints[level-1] == HitPointsAverage {
			choice = HitPointsAverage
		}
	}

	if choice == "" {
		if opts.Strict {
			return errors.FailedPreconditionf("hit points choice required at level %d", level)
		}
		return nil
	}

	v := h.ensureValue()
	if v.HitPoints == nil {
		v.HitPoints = make(map[int]string)
	}
	v.HitPoints[level] = choice
	return nil
}

// Reverse implements Advancement.
func (h *HitPoints) Reverse(_ context.Context, level int, _ Options) error {
	v := h.value()
	if v == nil {
		return nil
	}
	delete(v.HitPoints, level)
	if len(v.HitPoints) == 0 {
		v.HitPoints = nil
	}
	h.clearValue()
	return nil
}

func (h *HitPoints) resolveChoice(input string, die int) (string, error) {
	switch input {
	case HitPointsMax, HitPointsAverage:
		return input, nil
	case HitPointsRoll:
		n, err := h.env.Dice.Roll(die)
		if err != nil {
			return "", errors.Wrap(err, "failed to roll hit die")
		}
		return strconv.Itoa(n), nil
	default:
		n, err := strconv.Atoi(input)
		if err != nil {
			return "", errors.InvalidArgumentf("invalid hit points value %q", input)
		}
		if n < 1 || n > die {
			return "", errors.OutOfRangef("hit points roll %d is outside 1-%d", n, die)
		}
		return input, nil
	}
}

// ValueForLevel resolves the stored choice at a class level to its hit point
// gain. ok is false when the level has no recorded choice.
func (h *HitPoints) ValueForLevel(level int) (int, bool) {
	v := h.value()
	if v == nil {
		return 0, false
	}
	stored, ok := v.HitPoints[level]
	if !ok {
		return 0, false
	}
	die := h.cfg.HitPoints.Die
	switch stored {
	case HitPointsMax:
		return die, true
	case HitPointsAverage:
		return die/2 + 1, true
	default:
		n, err := strconv.Atoi(stored)
		if err != nil {
			return 0, false
		}
		return n, true
	}
}

// Total sums the resolved hit point gain over class levels 1..classLevels,
// treating unconfigured levels as zero.
func (h *HitPoints) Total(classLevels int) int {
	total := 0
	for level := 1; level <= classLevels; level++ {
		if gain, ok := h.ValueForLevel(level); ok {
			total += gain
		}
	}
	return total
}
