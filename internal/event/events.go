package event

import "time"

type FinishReason string

const (
	FinishedOK        FinishReason = "ok"
	FinishedSurrender FinishReason = "surrender"
	FinishedDied      FinishReason = "died"
	FinishedError     FinishReason = "error"
)

type MatchStartedEvent struct {
	BaseEvent
	MatchID string
}

func MatchStarted(be BaseEvent, matchID string) MatchStartedEvent {
	return MatchStartedEvent{BaseEvent: be, MatchID: matchID}
}

type MatchFinishedEvent struct {
	BaseEvent
	MatchID  string
	Reason   FinishReason
	Duration time.Duration
}

func MatchFinished(be BaseEvent, matchID string, reason FinishReason, duration time.Duration) MatchFinishedEvent {
	return MatchFinishedEvent{BaseEvent: be, MatchID: matchID, Reason: reason, Duration: duration}
}

type PhaseChangedEvent struct {
	BaseEvent
	From string
	To   string
}

func PhaseChanged(be BaseEvent, from, to string) PhaseChangedEvent {
	return PhaseChangedEvent{BaseEvent: be, From: from, To: to}
}

// RecoveryTier is how far a remediation escalated.
type RecoveryTier string

const (
	RecoveryWait      RecoveryTier = "wait"
	RecoveryReconnect RecoveryTier = "reconnect"
	RecoveryRestart   RecoveryTier = "restart"
	RecoveryForceKill RecoveryTier = "force_kill"
)

type RecoveryEvent struct {
	BaseEvent
	Tier  RecoveryTier
	Cause string
}

func Recovery(be BaseEvent, tier RecoveryTier, cause string) RecoveryEvent {
	return RecoveryEvent{BaseEvent: be, Tier: tier, Cause: cause}
}

type GamePausedEvent struct {
	BaseEvent
	Paused bool
}

func GamePaused(be BaseEvent, paused bool) GamePausedEvent {
	return GamePausedEvent{BaseEvent: be, Paused: paused}
}

type PlayNextGameEvent struct {
	BaseEvent
	Enabled bool
}

func PlayNextGame(be BaseEvent, enabled bool) PlayNextGameEvent {
	return PlayNextGameEvent{BaseEvent: be, Enabled: enabled}
}

type NgrokTunnelEvent struct {
	BaseEvent
	URL string
}

func NgrokTunnel(url string) NgrokTunnelEvent {
	return NgrokTunnelEvent{BaseEvent: Text("", "ngrok tunnel established: "+url), URL: url}
}
