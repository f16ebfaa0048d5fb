package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// RedirectLogs routes discordgo's package logger into slog, so connection-level
// errors raised inside the library end up in the structured log.
func RedirectLogs(log *slog.Logger) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			log.Error(msg, "source", "discordgo")
		case discordgo.LogWarning:
			log.Warn(msg, "source", "discordgo")
		case discordgo.LogInformational:
			log.Info(msg, "source", "discordgo")
		default:
			log.Debug(msg, "source", "discordgo")
		}
	}
}
