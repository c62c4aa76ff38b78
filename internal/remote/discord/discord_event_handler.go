package discord

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/tftbot/internal/event"
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	if !b.shouldPublish(e) {
		return nil
	}

	switch evt := e.(type) {
	case event.MatchFinishedEvent:
		message := fmt.Sprintf("**[%s]** %s after %s", evt.Supervisor(), evt.Message(), evt.Duration.Round(time.Second))
		return b.sendEventMessage(ctx, message)
	case event.RecoveryEvent:
		message := fmt.Sprintf("**[%s]** %s (%s: %s)", evt.Supervisor(), evt.Message(), evt.Tier, evt.Cause)
		return b.sendEventMessage(ctx, message)
	case event.NgrokTunnelEvent:
		return b.sendEventMessage(ctx, evt.Message())
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, e.Image(), &jpeg.Options{Quality: 80}); err != nil {
		return err
	}

	message := fmt.Sprintf("**[%s]** %s", e.Supervisor(), e.Message())
	return b.sendScreenshot(ctx, message, buf.Bytes())
}

func (b *Bot) sendEventMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "", nil)
	}

	_, err := b.discordSession.ChannelMessageSend(b.channelID, message)
	return err
}

func (b *Bot) sendScreenshot(ctx context.Context, message string, image []byte) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "Screenshot.jpeg", image)
	}

	_, err := b.discordSession.ChannelMessageSendComplex(b.channelID, &discordgo.MessageSend{
		Files:   []*discordgo.File{{Name: "Screenshot.jpeg", ContentType: "image/jpeg", Reader: bytes.NewReader(image)}},
		Content: message,
	})
	return err
}

func (b *Bot) shouldPublish(e event.Event) bool {
	switch evt := e.(type) {
	case event.MatchFinishedEvent:
		if evt.Reason == event.FinishedError {
			return b.recoveryMsgs
		}
		return b.matchMessages
	case event.RecoveryEvent:
		return b.recoveryMsgs && evt.Tier != event.RecoveryWait
	case event.NgrokTunnelEvent:
		return true
	}

	return e.Image() != nil
}
