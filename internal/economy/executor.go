package economy

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/game"
)

const (
	actionDelay     = 500 * time.Millisecond
	checkpointDelay = 4 * time.Second
	draftStepDelay  = 3 * time.Second
)

// Executor turns planned actions into clicks and key presses on the game window.
type Executor struct {
	ctx        *botCtx.Context
	perception game.Perception
	input      game.Input
	// read unit names with OCR when trait icons are not recognized
	byName bool
}

func NewExecutor(ctx *botCtx.Context, perception game.Perception, input game.Input, kind Kind) *Executor {
	return &Executor{ctx: ctx, perception: perception, input: input, byName: kind == KindOCRStandard}
}

func (x *Executor) sleep(c context.Context, d time.Duration) error {
	return x.ctx.Sleep(c, d)
}

// Buy clicks shop cards of the wanted traits. With prioritized order a trait is only bought while every
// trait before it was available. It returns how many units were bought.
func (x *Executor) Buy(c context.Context, attempts int) (int, error) {
	bought := 0
	for i := 0; i < attempts; i++ {
		for _, trait := range x.ctx.Config.WantedTraits {
			m, found, err := x.perception.Locate(game.GameWindow, game.TraitTemplate(trait), game.LocateOpts{Region: game.ShopRegion})
			if err != nil || !found {
				if x.ctx.Config.PurchaseTraitsInPrioritizedOrder {
					return bought, nil
				}
				continue
			}
			if err = x.input.Click(game.GameWindow, m.Center, game.LeftButton); err != nil {
				return bought, fmt.Errorf("buying %s: %w", trait, err)
			}
			bought++
			x.ctx.Logger.Debug("Bought unit", slog.String("trait", trait))
			if err = x.sleep(c, actionDelay); err != nil {
				return bought, err
			}
		}
	}

	return bought, nil
}

// clickOrPress alternates between the shop button and its hotkey.
func (x *Executor) clickOrPress(t game.Template, key rune) error {
	if x.ctx.Rand.Chance(0.5) {
		m, found, err := x.perception.Locate(game.GameWindow, t, game.LocateOpts{})
		if err == nil && found {
			return x.input.Click(game.GameWindow, m.Center, game.LeftButton)
		}
	}

	return x.input.PressKey(key)
}

func (x *Executor) Level() error {
	return x.clickOrPress(game.XPBuy, 'f')
}

func (x *Executor) Reroll() error {
	return x.clickOrPress(game.Reroll, 'd')
}

// Sell drags the unit at p onto the shop.
func (x *Executor) Sell(c context.Context, p image.Point) error {
	if err := x.input.MoveTo(game.GameWindow, p); err != nil {
		return err
	}
	if err := x.sleep(c, actionDelay); err != nil {
		return err
	}
	target := image.Pt(x.ctx.Rand.Between(game.SellArea.Min.X, game.SellArea.Max.X), game.SellArea.Min.Y)

	return x.input.Drag(game.GameWindow, p, target)
}

// Identify returns the wanted trait of the unit whose info panel is open, "" when it has none.
func (x *Executor) Identify() string {
	for _, trait := range x.ctx.Config.WantedTraits {
		_, found, err := x.perception.Locate(game.GameWindow, game.TraitTemplate(trait), game.LocateOpts{Region: game.UnitInfoRegion})
		if err == nil && found {
			return trait
		}
	}
	if !x.byName {
		return ""
	}

	name, err := x.perception.ReadText(game.GameWindow, game.UnitNameRegion)
	if err != nil {
		return ""
	}

	return x.ctx.Config.TraitOf(name)
}

func (x *Executor) inspect(c context.Context, p image.Point, dismiss bool) (string, error) {
	if err := x.input.Click(game.GameWindow, p, game.RightButton); err != nil {
		return "", err
	}
	if dismiss {
		if err := x.input.Click(game.GameWindow, game.BenchSafePoint, game.RightButton); err != nil {
			return "", err
		}
	}
	if err := x.sleep(c, actionDelay); err != nil {
		return "", err
	}

	return x.Identify(), nil
}

// BenchCleanup inspects every bench slot and sells the units that are not wanted.
func (x *Executor) BenchCleanup(c context.Context, s *State) error {
	s.Bench = make([]string, len(game.BenchSlots))
	for i, p := range game.BenchSlots {
		trait, err := x.inspect(c, p, true)
		if err != nil {
			return err
		}
		s.Bench[i] = trait
	}

	for i, trait := range s.Bench {
		if trait != "" {
			continue
		}
		if err := x.Sell(c, game.BenchSlots[i]); err != nil {
			return err
		}
		x.ctx.Logger.Info("Sold bench unit", slog.Int("slot", i))
		if err := x.sleep(c, actionDelay); err != nil {
			return err
		}
	}
	x.ctx.Logger.Debug("Bench after cleanup", slog.Any("bench", s.Bench))

	return nil
}

// boardTargets are the hexes expected to hold a unit at the given level.
func boardTargets(level int) []image.Point {
	level = max(1, min(level, len(game.BoardSlots)))

	return game.BoardSlots[:level]
}

// BoardCleanup sells board units that are not wanted, only the first level hexes are looked at.
func (x *Executor) BoardCleanup(c context.Context, s *State) error {
	targets := boardTargets(s.Level)
	s.Board = make([]string, len(targets))
	for i, p := range targets {
		trait, err := x.inspect(c, p, false)
		if err != nil {
			return err
		}
		s.Board[i] = trait
	}

	for i, trait := range s.Board {
		if trait != "" {
			continue
		}
		if err := x.Sell(c, targets[i]); err != nil {
			return err
		}
		x.ctx.Logger.Info("Sold board unit", slog.Int("hex", i))
		if err := x.sleep(c, actionDelay); err != nil {
			return err
		}
	}

	return nil
}

// PlaceItems drags items from the item bench onto random board units, as many items as units.
func (x *Executor) PlaceItems(c context.Context, level int) error {
	targets := boardTargets(level)
	for i := 0; i < len(targets) && i < len(game.ItemSlots); i++ {
		target := targets[x.ctx.Rand.Between(0, len(targets)-1)]
		if err := x.input.Drag(game.GameWindow, game.ItemSlots[i], target); err != nil {
			return err
		}
		if err := x.sleep(c, actionDelay); err != nil {
			return err
		}
	}

	return nil
}

// CollectItems walks the little legend around the arena in a random order to pick up orbs.
func (x *Executor) CollectItems(c context.Context) error {
	x.ctx.Logger.Info("Running around, trying to collect items")
	checkpoints := append([]image.Point(nil), game.ItemCheckpoints...)
	x.ctx.Rand.Shuffle(len(checkpoints), func(i, j int) {
		checkpoints[i], checkpoints[j] = checkpoints[j], checkpoints[i]
	})

	for _, p := range checkpoints {
		if err := x.input.Click(game.GameWindow, p, game.RightButton); err != nil {
			return err
		}
		if err := x.sleep(c, checkpointDelay); err != nil {
			return err
		}
	}

	return nil
}

func (x *Executor) WalkRandom() error {
	p := image.Pt(
		x.ctx.Rand.Between(game.WalkArea.Min.X, game.WalkArea.Max.X),
		x.ctx.Rand.Between(game.WalkArea.Min.Y, game.WalkArea.Max.Y),
	)

	return x.input.Click(game.GameWindow, p, game.RightButton)
}

// Draft walks the carousel diamond once.
func (x *Executor) Draft(c context.Context) error {
	for _, p := range game.DraftPath {
		if err := x.input.Click(game.GameWindow, p, game.RightButton); err != nil {
			return err
		}
		if err := x.sleep(c, draftStepDelay); err != nil {
			return err
		}
	}

	return nil
}

// PickAugment clicks the middle offer once.
func (x *Executor) PickAugment(c context.Context) error {
	if err := x.input.Click(game.GameWindow, game.AugmentCenter, game.LeftButton); err != nil {
		return err
	}

	return x.sleep(c, actionDelay)
}
