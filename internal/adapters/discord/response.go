package discord

import (
	"github.com/bwmarrin/discordgo"
)

// resolveCaller extracts the invoking user's id and display name, whether
// the interaction came from a guild or a DM. Nick > GlobalName > Username.
func resolveCaller(i *discordgo.InteractionCreate) (userID, displayName string) {
	user := i.User
	if i.Member != nil {
		user = i.Member.User
		if i.Member.Nick != "" {
			return user.ID, i.Member.Nick
		}
	}
	if user == nil {
		return "", ""
	}
	if user.GlobalName != "" {
		return user.ID, user.GlobalName
	}
	return user.ID, user.Username
}

func respond(s *discordgo.Session, i *discordgo.Interaction, content string, components []discordgo.MessageComponent) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
