package economy

import (
	"context"
	"image"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/game"
	"github.com/hectorgimenez/tftbot/internal/testutil"
)

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Kind)
	}
	return out
}

func TestPolicyDefaultThresholds(t *testing.T) {
	p := policy{th: testutil.DefaultConfig().Economy.Default}
	round := func(major int) game.RoundMarker { return game.RoundMarker{Major: major, Minor: 1} }

	tests := []struct {
		name  string
		round game.RoundMarker
		state State
		want  []ActionKind
	}{
		{"unknown gold assumes enough", round(3), State{Gold: GoldUnknown}, []ActionKind{ActionBuy, ActionLevel, ActionReroll}},
		{"not enough for anything", round(3), State{Gold: 2}, nil},
		{"first stage only buys", round(1), State{Gold: 6}, []ActionKind{ActionBuy}},
		{"leveling starts before rerolls", round(2), State{Gold: 6}, []ActionKind{ActionBuy, ActionLevel}},
		{"level spends the gold", round(3), State{Gold: 4}, []ActionKind{ActionBuy, ActionLevel}},
		{"second level needs more gold", round(4), State{Gold: 6}, []ActionKind{ActionBuy, ActionLevel}},
		{"aggressive leveling", round(5), State{Gold: GoldUnknown}, []ActionKind{ActionBuy, ActionLevel, ActionLevel, ActionReroll}},
		{"max level", round(5), State{Gold: GoldUnknown, Level: 8}, []ActionKind{ActionBuy, ActionReroll}},
		{"one level left", round(5), State{Gold: GoldUnknown, Level: 7}, []ActionKind{ActionBuy, ActionLevel, ActionReroll}},
		{"unknown round", game.RoundMarker{}, State{Gold: GoldUnknown}, []ActionKind{ActionBuy}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(p.Decide(tt.round, tt.state)))
		})
	}
}

func TestPolicyOCRThresholds(t *testing.T) {
	p := policy{th: testutil.DefaultConfig().Economy.OCRStandard}
	r := game.RoundMarker{Major: 3, Minor: 2}

	assert.Equal(t, []ActionKind{ActionBuy, ActionLevel, ActionReroll}, kinds(p.Decide(r, State{Gold: 60, Level: 5})))
	// 56 - 4 leaves 52, below the reroll gate
	assert.Equal(t, []ActionKind{ActionBuy, ActionLevel}, kinds(p.Decide(r, State{Gold: 56, Level: 5})))
	assert.Equal(t, []ActionKind{ActionBuy, ActionReroll}, kinds(p.Decide(r, State{Gold: 57, Level: 8})))
	assert.Equal(t, []ActionKind{ActionBuy}, kinds(p.Decide(r, State{Gold: 20, Level: 5})))
	assert.Empty(t, p.Decide(r, State{Gold: 0, Level: 5}))

	buy := p.Decide(r, State{Gold: 20})[0]
	assert.Equal(t, 3, buy.Count)
}

func TestNewMode(t *testing.T) {
	cfg := testutil.DefaultConfig()
	screen := testutil.NewFakeScreen()

	m, err := NewMode(cfg, screen)
	require.NoError(t, err)
	assert.Equal(t, KindDefault, m.Kind())

	cfg.Economy.Mode = config.EconomyModeOCRStandard
	m, err = NewMode(cfg, screen)
	require.NoError(t, err)
	assert.Equal(t, KindOCRStandard, m.Kind())

	cfg.Economy.Mode = "yolo"
	_, err = NewMode(cfg, screen)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestDefaultModeReadGold(t *testing.T) {
	screen := testutil.NewFakeScreen()
	m, err := NewMode(testutil.DefaultConfig(), screen)
	require.NoError(t, err)

	assert.Equal(t, GoldUnknown, m.ReadGold())
	assert.Zero(t, screen.Locates(game.GoldTemplate(7)), "lookups stop at max_gold_lookup")

	screen.Show(game.GameWindow, game.GoldTemplate(4), image.Pt(900, 890))
	assert.Equal(t, 4, m.ReadGold())

	screen.Show(game.GameWindow, game.GoldTemplate(2), image.Pt(900, 890))
	assert.Equal(t, 2, m.ReadGold())

	// a value without a template file means the gold can not be told apart, assume enough
	screen.Hide(game.GameWindow, game.GoldTemplate(2), game.GoldTemplate(4))
	screen.SetMissing(game.GoldTemplate(1))
	screen.Show(game.GameWindow, game.GoldTemplate(3), image.Pt(900, 890))
	assert.Equal(t, GoldUnknown, m.ReadGold())
}

func TestOCRModeReadGold(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Economy.Mode = config.EconomyModeOCRStandard
	screen := testutil.NewFakeScreen()
	m, err := NewMode(cfg, screen)
	require.NoError(t, err)

	screen.SetNumber(47, true)
	assert.Equal(t, 47, m.ReadGold())

	screen.SetNumber(0, false)
	assert.Equal(t, GoldUnknown, m.ReadGold())

	screen.SetWindowError(game.GameWindow, game.ErrWindowNotFound)
	assert.Equal(t, GoldUnknown, m.ReadGold())
}

type fixedLevel int

func (l fixedLevel) Level(context.Context) int { return int(l) }

type harness struct {
	engine *Engine
	screen *testutil.FakeScreen
	input  *testutil.FakeInput
	stop   func()
}

func newHarness(t *testing.T, cfg *config.Config, level int) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testutil.DefaultConfig()
	}
	ctx, clock := testutil.NewContext(t, cfg)
	screen := testutil.NewFakeScreen()
	input := &testutil.FakeInput{}
	mode, err := NewMode(cfg, screen)
	require.NoError(t, err)

	h := &harness{
		engine: NewEngine(ctx, mode, screen, input, fixedLevel(level)),
		screen: screen,
		input:  input,
		stop:   testutil.DriveClock(t, clock),
	}
	t.Cleanup(h.stop)

	return h
}

func TestBuyRespectsPrioritizedOrder(t *testing.T) {
	h := newHarness(t, nil, 3)
	disco := image.Pt(575, 992)
	emo := image.Pt(975, 992)
	h.screen.Show(game.GameWindow, game.TraitTemplate("disco"), disco)
	h.screen.Show(game.GameWindow, game.TraitTemplate("emo"), emo)

	bought, err := h.engine.Executor().Buy(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, bought)
	assert.Equal(t, 3, h.input.Count(testutil.ClickedAt(disco)))
	assert.Zero(t, h.input.Count(testutil.ClickedAt(emo)))

	h.engine.ctx.Config.PurchaseTraitsInPrioritizedOrder = false
	h.input.Reset()
	bought, err = h.engine.Executor().Buy(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 6, bought)
	assert.Equal(t, 3, h.input.Count(testutil.ClickedAt(emo)))
}

func TestTickTakeAllPreemptsEconomy(t *testing.T) {
	h := newHarness(t, nil, 3)
	takeAll := image.Pt(960, 700)
	h.screen.Show(game.GameWindow, game.TakeAll, takeAll)
	h.screen.Show(game.GameWindow, game.RoundFreeChampion, image.Pt(800, 20))

	res, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 3, Minor: 2})
	require.NoError(t, err)
	assert.Equal(t, TickTakeAll, res)
	assert.Equal(t, 1, h.input.Count(testutil.ClickedAt(takeAll)))
	assert.Len(t, h.input.Events(), 1)
	assert.Zero(t, h.screen.Locates(game.GoldTemplate(0)))
}

func TestTickFreeChampionRoundWalksDiamond(t *testing.T) {
	h := newHarness(t, nil, 3)
	h.screen.Show(game.GameWindow, game.RoundFreeChampion, image.Pt(800, 20))

	res, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 2, Minor: 4})
	require.NoError(t, err)
	assert.Equal(t, TickDraft, res)

	events := h.input.Events()
	require.Len(t, events, 4)
	for i, e := range events {
		assert.Equal(t, game.RightButton, e.Button)
		assert.Equal(t, game.DraftPath[i], e.At)
	}
}

func TestTickFirstStageIsNotADraft(t *testing.T) {
	h := newHarness(t, nil, 1)
	h.screen.Show(game.GameWindow, game.RoundFreeChampion, image.Pt(800, 20))
	h.screen.Show(game.GameWindow, game.RoundFirstStage, image.Pt(780, 20))

	res, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 1, Minor: 4})
	require.NoError(t, err)
	assert.Equal(t, TickEconomy, res)
}

func TestTickAugment(t *testing.T) {
	h := newHarness(t, nil, 3)
	h.screen.Show(game.GameWindow, game.ChooseAnAugment, image.Pt(960, 200))

	res, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 2, Minor: 1})
	require.NoError(t, err)
	assert.Equal(t, TickAugment, res)
	events := h.input.Events()
	require.Len(t, events, 1)
	assert.Equal(t, game.AugmentCenter, events[0].At)
}

func TestTickInsufficientGoldDoesNothing(t *testing.T) {
	h := newHarness(t, nil, 4)
	h.screen.Show(game.GameWindow, game.GoldTemplate(2), image.Pt(900, 890))
	h.screen.Show(game.GameWindow, game.TraitTemplate("disco"), image.Pt(575, 992))

	res, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 4, Minor: 1})
	require.NoError(t, err)
	assert.Equal(t, TickEconomy, res)
	assert.Empty(t, h.input.Events())
	assert.Equal(t, 2, h.engine.State().Gold)
	assert.Equal(t, 4, h.engine.State().Level)
}

func TestTickLevelsAndRerolls(t *testing.T) {
	h := newHarness(t, nil, 5)

	_, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 3, Minor: 5})
	require.NoError(t, err)

	// buttons are not on screen, so both fall back to hotkeys
	keys := h.input.Count(func(e testutil.InputEvent) bool { return e.Kind == testutil.InputKey })
	assert.Equal(t, 2, keys)
	assert.Equal(t, 1, h.input.Count(func(e testutil.InputEvent) bool { return e.Key == 'f' }))
	assert.Equal(t, 1, h.input.Count(func(e testutil.InputEvent) bool { return e.Key == 'd' }))
}

func TestBenchCleanupSellsUnwantedUnits(t *testing.T) {
	h := newHarness(t, nil, 3)
	wanted := map[image.Point]bool{game.BenchSlots[0]: true, game.BenchSlots[2]: true}
	h.input.OnEvent = func(e testutil.InputEvent) {
		if e.Kind != testutil.InputClick || !slices.Contains(game.BenchSlots, e.At) {
			return
		}
		if wanted[e.At] {
			h.screen.Show(game.GameWindow, game.TraitTemplate("disco"), image.Pt(1600, 300))
		} else {
			h.screen.Hide(game.GameWindow, game.TraitTemplate("disco"))
		}
	}

	state := State{}
	require.NoError(t, h.engine.Executor().BenchCleanup(context.Background(), &state))

	assert.Equal(t, "disco", state.Bench[0])
	assert.Equal(t, "", state.Bench[1])
	assert.Equal(t, "disco", state.Bench[2])

	var sold []image.Point
	for _, e := range h.input.Events() {
		if e.Kind == testutil.InputDrag {
			sold = append(sold, e.At)
			assert.Equal(t, 980, e.To.Y)
			assert.True(t, e.To.X >= 800 && e.To.X <= 1300)
		}
	}
	assert.Len(t, sold, len(game.BenchSlots)-2)
	assert.NotContains(t, sold, game.BenchSlots[0])
	assert.NotContains(t, sold, game.BenchSlots[2])
}

func TestIdentifyByNameInOCRMode(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Economy.Mode = config.EconomyModeOCRStandard
	cfg.Economy.TraitChampions = map[string][]string{"punk": {"jinx", "vi"}}
	h := newHarness(t, cfg, 3)

	h.screen.SetText("Jinx")
	assert.Equal(t, "punk", h.engine.Executor().Identify())

	h.screen.SetText("Lux")
	assert.Equal(t, "", h.engine.Executor().Identify())
}

func TestMaintenanceCollectsItems(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Economy.Maintenance.CollectItems = 1
	h := newHarness(t, cfg, 3)
	h.screen.Show(game.GameWindow, game.GoldTemplate(0), image.Pt(900, 890))

	_, err := h.engine.Tick(context.Background(), game.RoundMarker{Major: 1, Minor: 2})
	require.NoError(t, err)

	var visited []image.Point
	for _, e := range h.input.Events() {
		visited = append(visited, e.At)
	}
	assert.ElementsMatch(t, game.ItemCheckpoints, visited)
}

func TestPlaceItemsSizedToLevel(t *testing.T) {
	h := newHarness(t, nil, 4)

	require.NoError(t, h.engine.Executor().PlaceItems(context.Background(), 4))
	events := h.input.Events()
	require.Len(t, events, 4)
	for i, e := range events {
		assert.Equal(t, game.ItemSlots[i], e.At)
		assert.Contains(t, game.BoardSlots[:4], e.To)
	}
}
