package economy

import (
	"errors"
	"fmt"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/game"
)

// GoldUnknown means the gold display could not be read, the policy then assumes there is enough.
const GoldUnknown = -1

const maxLevel = 8

type Kind string

const (
	KindDefault     Kind = config.EconomyModeDefault
	KindOCRStandard Kind = config.EconomyModeOCRStandard
)

// State is what the engine knows about the player during a match. Board and Bench hold the wanted trait
// each slot was recognized as, "" for units that are not wanted.
type State struct {
	Gold  int
	Level int
	Board []string
	Bench []string
}

type ActionKind int

const (
	ActionBuy ActionKind = iota
	ActionLevel
	ActionReroll
	ActionBenchCleanup
	ActionBoardCleanup
	ActionPlaceItems
	ActionCollectItems
	ActionWalkRandom
)

func (k ActionKind) String() string {
	switch k {
	case ActionBuy:
		return "buy"
	case ActionLevel:
		return "level"
	case ActionReroll:
		return "reroll"
	case ActionBenchCleanup:
		return "bench_cleanup"
	case ActionBoardCleanup:
		return "board_cleanup"
	case ActionPlaceItems:
		return "place_items"
	case ActionCollectItems:
		return "collect_items"
	case ActionWalkRandom:
		return "walk_random"
	}

	return fmt.Sprintf("action(%d)", int(k))
}

type Action struct {
	Kind ActionKind
	// Purchase attempts for ActionBuy
	Count int
}

// Mode is one of the two economy variants. They share the policy and differ in how gold is read and in
// the thresholds that go with that reading.
type Mode interface {
	Kind() Kind
	ReadGold() int
	Decide(round game.RoundMarker, s State) []Action
}

var ErrUnknownMode = errors.New("unknown economy mode")

func NewMode(cfg *config.Config, perception game.Perception) (Mode, error) {
	switch Kind(cfg.Economy.Mode) {
	case KindDefault:
		return &DefaultMode{policy: policy{th: cfg.Economy.Default}, perception: perception}, nil
	case KindOCRStandard:
		return &OCRStandardMode{policy: policy{th: cfg.Economy.OCRStandard}, perception: perception}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Economy.Mode)
}

type policy struct {
	th config.Thresholds
}

// Decide plans one tick from a single gold reading. Known level and reroll costs are subtracted as
// actions are planned, unit prices are not known and are ignored.
func (p policy) Decide(round game.RoundMarker, s State) []Action {
	gold := s.Gold
	enough := func(n int) bool { return gold == GoldUnknown || gold >= n }
	spend := func(n int) {
		if gold != GoldUnknown {
			gold -= n
		}
	}

	var actions []Action
	if enough(p.th.PurchaseGold) {
		actions = append(actions, Action{Kind: ActionBuy, Count: max(p.th.PurchaseAttempts, 1)})
	}

	if round.Major > 0 && round.Major >= p.th.LevelFromRound && (s.Level == 0 || s.Level < maxLevel) {
		levels := 1
		if p.th.AggressiveLevelRound > 0 && round.Major >= p.th.AggressiveLevelRound {
			levels = 2
		}
		for i := 0; i < levels && enough(p.th.LevelGold); i++ {
			actions = append(actions, Action{Kind: ActionLevel})
			spend(p.th.LevelCost)
			if s.Level > 0 && s.Level+i+1 >= maxLevel {
				break
			}
		}
	}

	if round.Major > 0 && round.Major >= p.th.RerollFromRound && enough(p.th.RerollGold) {
		actions = append(actions, Action{Kind: ActionReroll})
		spend(p.th.RerollCost)
	}

	return actions
}

// DefaultMode reads gold by matching the digit templates gold/0.png .. gold/N.png.
type DefaultMode struct {
	policy
	perception game.Perception
}

func (m *DefaultMode) Kind() Kind {
	return KindDefault
}

// ReadGold returns the lowest template that matches. No match, a missing template file or an unreadable
// window give GoldUnknown.
func (m *DefaultMode) ReadGold() int {
	for n := 0; n <= m.th.MaxGoldLookup; n++ {
		_, found, err := m.perception.Locate(game.GameWindow, game.GoldTemplate(n), game.LocateOpts{
			Region:    game.GoldTemplateRegion,
			Precision: game.GoldTemplatePrecision,
		})
		if err != nil {
			return GoldUnknown
		}
		if found {
			return n
		}
	}

	return GoldUnknown
}

// OCRStandardMode reads the exact gold amount with OCR.
type OCRStandardMode struct {
	policy
	perception game.Perception
}

func (m *OCRStandardMode) Kind() Kind {
	return KindOCRStandard
}

func (m *OCRStandardMode) ReadGold() int {
	gold, found, err := m.perception.ReadNumber(game.GameWindow, game.GoldTextRegion)
	if err != nil || !found {
		return GoldUnknown
	}

	return gold
}
