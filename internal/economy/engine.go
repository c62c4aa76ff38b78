package economy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/game"
)

const (
	roundPrecision = 0.9
	takeAllDelay   = time.Second
)

// LevelSource reports the player level, 0 when unknown.
type LevelSource interface {
	Level(ctx context.Context) int
}

// TickResult tells what one engine tick did.
type TickResult int

const (
	TickEconomy TickResult = iota
	TickTakeAll
	TickDraft
	TickAugment
)

func (r TickResult) String() string {
	return [...]string{"economy", "take_all", "draft", "augment"}[r]
}

// Engine runs the in-match decisions, one Tick per lifecycle iteration.
type Engine struct {
	ctx        *botCtx.Context
	mode       Mode
	exec       *Executor
	perception game.Perception
	level      LevelSource
	state      State
}

func NewEngine(ctx *botCtx.Context, mode Mode, perception game.Perception, input game.Input, level LevelSource) *Engine {
	e := &Engine{
		ctx:        ctx,
		mode:       mode,
		exec:       NewExecutor(ctx, perception, input, mode.Kind()),
		perception: perception,
		level:      level,
	}
	e.Reset()

	return e
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) Executor() *Executor {
	return e.exec
}

// Reset forgets everything about the previous match.
func (e *Engine) Reset() {
	e.state = State{Gold: GoldUnknown}
}

func (e *Engine) State() State {
	return e.state
}

// FreeChampionRound is true on shared draft rounds, they show "-4" but are not in stage 1.
func FreeChampionRound(p game.Perception) bool {
	return game.Visible(p, game.GameWindow, game.RoundFreeChampion, roundPrecision) &&
		!game.Visible(p, game.GameWindow, game.RoundFirstStage, roundPrecision)
}

// Tick handles prompts that take priority over the economy, and otherwise plans and runs one round of
// purchases and maintenance.
func (e *Engine) Tick(c context.Context, round game.RoundMarker) (TickResult, error) {
	if m, found := game.AnyVisible(e.perception, game.GameWindow, game.TakeAll); found {
		e.ctx.Logger.Info("Treasure found, taking everything")
		if err := e.exec.input.Click(game.GameWindow, m.Center, game.LeftButton); err != nil {
			return TickTakeAll, fmt.Errorf("taking treasure: %w", err)
		}
		return TickTakeAll, e.ctx.Sleep(c, takeAllDelay)
	}

	if FreeChampionRound(e.perception) {
		e.ctx.Logger.Info("Shared draft round detected")
		return TickDraft, e.exec.Draft(c)
	}

	if _, found := game.AnyVisible(e.perception, game.GameWindow, game.ChooseAnAugment, game.ChooseOne); found {
		e.ctx.Logger.Info("Picking an augment")
		return TickAugment, e.exec.PickAugment(c)
	}

	e.state.Gold = e.mode.ReadGold()
	if e.level != nil {
		e.state.Level = e.level.Level(c)
	}

	actions := append(e.mode.Decide(round, e.state), e.maintenance(round)...)
	e.ctx.Logger.Debug("Economy tick",
		slog.String("round", round.String()),
		slog.Int("gold", e.state.Gold),
		slog.Int("level", e.state.Level),
		slog.Int("actions", len(actions)),
	)

	for _, a := range actions {
		if err := e.run(c, a); err != nil {
			return TickEconomy, fmt.Errorf("%s: %w", a.Kind, err)
		}
	}

	return TickEconomy, nil
}

// maintenance rolls the configured chance of each housekeeping action.
func (e *Engine) maintenance(round game.RoundMarker) []Action {
	rates := e.ctx.Config.Economy.Maintenance
	var actions []Action
	if round.Major >= 2 && e.ctx.Rand.Chance(rates.BenchCleanup) {
		actions = append(actions, Action{Kind: ActionBenchCleanup})
	}
	if round.Major > 4 && e.ctx.Rand.Chance(rates.BoardCleanup) {
		actions = append(actions, Action{Kind: ActionBoardCleanup})
	}
	if round.Major >= 2 && e.ctx.Rand.Chance(rates.PlaceItems) {
		actions = append(actions, Action{Kind: ActionPlaceItems})
	}
	if e.ctx.Rand.Chance(rates.CollectItems) {
		actions = append(actions, Action{Kind: ActionCollectItems})
	}
	if e.ctx.Rand.Chance(rates.WalkRandom) {
		actions = append(actions, Action{Kind: ActionWalkRandom})
	}

	return actions
}

func (e *Engine) run(c context.Context, a Action) error {
	switch a.Kind {
	case ActionBuy:
		_, err := e.exec.Buy(c, a.Count)
		if err != nil {
			return err
		}
	case ActionLevel:
		if err := e.exec.Level(); err != nil {
			return err
		}
	case ActionReroll:
		if err := e.exec.Reroll(); err != nil {
			return err
		}
	case ActionBenchCleanup:
		return e.exec.BenchCleanup(c, &e.state)
	case ActionBoardCleanup:
		return e.exec.BoardCleanup(c, &e.state)
	case ActionPlaceItems:
		return e.exec.PlaceItems(c, e.state.Level)
	case ActionCollectItems:
		return e.exec.CollectItems(c)
	case ActionWalkRandom:
		return e.exec.WalkRandom()
	default:
		return fmt.Errorf("unsupported action %d", a.Kind)
	}

	return e.ctx.Sleep(c, actionDelay)
}
