package discord

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"voicebot/internal/config"
	"voicebot/internal/ports/input"
	"voicebot/internal/ports/output"
)

// Bot is the Discord adapter: a thin dispatch layer that picks the message
// key for each interaction and hands rendering to the provider.
type Bot struct {
	session *discordgo.Session
	config  *config.Config
	handler *Handler
}

// NewBot creates a Bot and wires ports: provider (use cases) -> handler.
func NewBot(cfg *config.Config, messenger input.Messenger, history output.SessionHistory) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}

	bot := &Bot{
		session: s,
		config:  cfg,
		handler: NewHandler(messenger, history),
	}
	bot.session.AddHandler(bot.handleInteraction)
	return bot, nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	switch i.ApplicationCommandData().Name {
	case "say":
		b.handler.HandleSay(s, i)
	case "reset":
		b.handler.HandleReset(s, i)
	}
}

// Start runs the bot until interrupted.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer b.session.Close()

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "say",
			Description: "Render a message key in the bot's voice",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "key",
					Description: "Message key, e.g. user.start.greeting",
					Required:    true,
				},
			},
		},
		{Name: "reset", Description: "Forget which phrasings you have seen"},
	}

	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd); err != nil {
			slog.Warn("command registration failed", "command", cmd.Name, "error", err)
		}
	}

	slog.Info("bot online, CTRL+C to quit")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return nil
}
