package discord

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"voicebot/internal/ports/input"
	"voicebot/internal/ports/output"
)

// fallbackMessage ships when rendering fails: selector and renderer errors
// are deterministic, so the right move is a generic safe reply plus a log
// line, never a retry.
const fallbackMessage = "Something glitched on my side. Give it another go."

type Handler struct {
	messenger input.Messenger
	history   output.SessionHistory
	log       *slog.Logger
}

func NewHandler(messenger input.Messenger, history output.SessionHistory) *Handler {
	return &Handler{
		messenger: messenger,
		history:   history,
		log:       slog.Default(),
	}
}

// HandleSay renders the requested key for the invoking user, history-aware,
// and demonstrates keyboard passthrough: the components built here come back
// from the provider untouched.
func (h *Handler) HandleSay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	key := ""
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "key" {
			key = opt.StringValue()
		}
	}

	userID, displayName := resolveCaller(i)
	opts := []input.ComposeOption{
		input.WithUser(userID),
		input.WithValue("name", displayName),
	}
	if kb := keyboardFor(key); kb != nil {
		opts = append(opts, input.WithKeyboard(kb))
	}

	reply, err := h.messenger.Compose(context.Background(), key, opts...)
	if err != nil {
		h.log.Error("compose failed", "key", key, "user", userID, "error", err)
		respondEphemeral(s, i.Interaction, fallbackMessage)
		return
	}

	components, _ := reply.Keyboard.([]discordgo.MessageComponent)
	respond(s, i.Interaction, reply.Text, components)
}

// HandleReset is the session lifecycle signal: the user asked to be
// forgotten, so their recent-use history goes away and the next selection
// behaves like first contact.
func (h *Handler) HandleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, _ := resolveCaller(i)
	if err := h.history.EvictUser(context.Background(), userID); err != nil {
		h.log.Error("history evict failed", "user", userID, "error", err)
		respondEphemeral(s, i.Interaction, fallbackMessage)
		return
	}
	respondEphemeral(s, i.Interaction, "Clean slate. I will mix things up again.")
}

// keyboardFor builds the UI affordance for keys that carry one. This is the
// adapter's job; the core only passes the value through.
func keyboardFor(key string) []discordgo.MessageComponent {
	if !strings.HasPrefix(key, "user.start.") {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Help", Style: discordgo.SecondaryButton, CustomID: "btn_help"},
				discordgo.Button{Label: "Subscribe", Style: discordgo.PrimaryButton, CustomID: "btn_subscribe"},
			},
		},
	}
}
