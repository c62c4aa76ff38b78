package config

import (
	"fmt"
	"maps"
	"time"

	"gopkg.in/yaml.v3"
)

type Timeout string

const (
	UpdateNotifier     Timeout = "update_notifier"
	LeagueClient       Timeout = "league_client"
	ClientConnect      Timeout = "client_connect"
	ClientAvailability Timeout = "client_availability"
	QueueSearch        Timeout = "queue_search"
	GameWindow         Timeout = "game_window"
	GameStart          Timeout = "game_start"
	ExitButton         Timeout = "exit_button"
	GracefulExit       Timeout = "graceful_exit"
	PostGame           Timeout = "post_game"
	SurrenderMin       Timeout = "surrender_min"
	SurrenderMax       Timeout = "surrender_max"
)

// Seconds
var defaultTimeouts = map[Timeout]int{
	UpdateNotifier:     5,
	LeagueClient:       300,
	ClientConnect:      60,
	ClientAvailability: 120,
	QueueSearch:        60,
	GameWindow:         30,
	GameStart:          60,
	ExitButton:         10,
	GracefulExit:       30,
	PostGame:           60,
	SurrenderMin:       100,
	SurrenderMax:       150,
}

// TimeoutTable maps a named wait to its bound. It is filled once while loading and only read afterwards.
type TimeoutTable struct {
	seconds map[Timeout]int
}

func NewTimeoutTable(overrides map[Timeout]int) TimeoutTable {
	t := TimeoutTable{seconds: maps.Clone(defaultTimeouts)}
	for k, v := range overrides {
		t.seconds[k] = v
	}

	return t
}

// Get returns the configured bound, falling back to the built-in default for unknown or missing names.
func (t TimeoutTable) Get(name Timeout) time.Duration {
	if s, found := t.seconds[name]; found {
		return time.Duration(s) * time.Second
	}

	return time.Duration(defaultTimeouts[name]) * time.Second
}

// Ticks is the number of one second polls a wait is allowed.
func (t TimeoutTable) Ticks(name Timeout) int {
	return int(t.Get(name) / time.Second)
}

func (t *TimeoutTable) UnmarshalYAML(value *yaml.Node) error {
	raw := map[string]int{}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("timeouts must be a map of name to seconds: %w", err)
	}

	overrides := make(map[Timeout]int, len(raw))
	for k, v := range raw {
		if v < 0 {
			return fmt.Errorf("timeout %s can not be negative", k)
		}
		overrides[Timeout(k)] = v
	}
	if t.seconds != nil {
		for k, v := range t.seconds {
			if _, found := overrides[k]; !found {
				overrides[k] = v
			}
		}
	}
	*t = NewTimeoutTable(overrides)

	return nil
}

func (t TimeoutTable) MarshalYAML() (interface{}, error) {
	out := make(map[string]int, len(defaultTimeouts))
	for k := range defaultTimeouts {
		out[string(k)] = int(t.Get(k) / time.Second)
	}
	for k, v := range t.seconds {
		out[string(k)] = v
	}

	return out, nil
}
