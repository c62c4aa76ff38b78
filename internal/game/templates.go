package game

import (
	"fmt"
	"strings"
)

// Template is an image path relative to the captures directory.
type Template string

const (
	// Client
	TFTLogo             Template = "tft_logo.png"
	Death               Template = "death.png"
	ReconnectButton     Template = "buttons/reconnect.png"
	MissionsOK          Template = "buttons/missions_ok.png"
	SkipWaitingForStats Template = "buttons/skip_waiting_for_stats.png"
	PlayAgain           Template = "buttons/play_again.png"
	QuickPlay           Template = "buttons/quick_play.png"
	MessageOK           Template = "buttons/message_ok.png"
	MessageExit1        Template = "buttons/message_exit_1.png"
	MessageExit2        Template = "buttons/message_exit_2.png"

	FailedToReconnect          Template = "messages/failed_to_reconnect.png"
	DownForMaintenance         Template = "messages/down_for_maintenance.png"
	InstantFeedbackReport      Template = "messages/instant_feedback_report.png"
	LoginServersDown           Template = "messages/login_servers_down.png"
	SessionExpired             Template = "messages/session_expired.png"
	UnexpectedErrorWithSession Template = "messages/unexpected_error_with_session.png"
	UnexpectedLoginError       Template = "messages/unexpected_login_error.png"

	// Game
	ExitNowBase        Template = "buttons/exit_now_base.png"
	ExitNowHighlighted Template = "buttons/exit_now_highlighted.png"
	ExitNowOriginal    Template = "buttons/exit_now_original.png"
	ContinueButton     Template = "buttons/continue.png"
	Settings           Template = "buttons/settings.png"
	Surrender1         Template = "buttons/surrender_1.png"
	Surrender2         Template = "buttons/surrender_2.png"

	ChooseAnAugment Template = "buttons/choose_an_augment.png"
	ChooseOne       Template = "buttons/choose_one.png"
	Reroll          Template = "buttons/reroll.png"
	TakeAll         Template = "buttons/take_all.png"
	XPBuy           Template = "buttons/xp_buy.png"

	RoundFreeChampion Template = "round/-4.png"
	RoundFirstStage   Template = "round/1-.png"
	RoundFirstDraft   Template = "round/1-1.png"
	RoundThreeOne     Template = "round/3-1.png"
)

var ExitNowButtons = []Template{ExitNowBase, ExitNowHighlighted, ExitNowOriginal, ContinueButton}

var MessageExitButtons = []Template{MessageExit1, MessageExit2}

// ClientErrorMessages are dialogs the client can only recover from with a restart.
var ClientErrorMessages = []Template{
	FailedToReconnect,
	DownForMaintenance,
	LoginServersDown,
	SessionExpired,
	UnexpectedErrorWithSession,
	UnexpectedLoginError,
}

func GoldTemplate(n int) Template {
	return Template(fmt.Sprintf("gold/%d.png", n))
}

// StageTemplate matches the "N-" part of the round label.
func StageTemplate(major int) Template {
	return Template(fmt.Sprintf("round/%d-.png", major))
}

func TraitTemplate(trait string) Template {
	return Template("trait/" + strings.ReplaceAll(strings.ToLower(trait), " ", "_") + ".png")
}
