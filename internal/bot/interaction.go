package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// IsCommand reports whether i is an application command invocation named one of names.
func IsCommand(i *discordgo.InteractionCreate, names ...string) bool {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return false
	}
	name := i.ApplicationCommandData().Name
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// IsOwnMessage reports whether m was sent by the bot itself.
func IsOwnMessage(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	return s == nil || s.State == nil || s.State.User == nil ||
		m == nil || m.Message == nil || m.Author == nil ||
		m.Author.ID == s.State.User.ID
}

// InteractionUser returns the invoking user for guild and direct interactions.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{Username: "Unknown"}
}

// Acknowledge defers the response so slow work does not time out the interaction.
func Acknowledge(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// Followup sends content as the answer to a deferred interaction.
func Followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	msg, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("FollowupMessageCreate returned nil message without error")
	}
	return nil
}

// FollowupError sends an ephemeral error answer to a deferred interaction.
func FollowupError(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}
