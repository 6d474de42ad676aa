// Package platter provides the per-invocation context handed to command
// handlers: the raw interaction, the session, the resolved author and the
// guild store.
package platter

import (
	"github.com/bwmarrin/discordgo"

	"goldybot/internal/storage"
)

// Platter bundles everything a handler needs for one invocation.
type Platter struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Author      *discordgo.User
	GuildID     string
	Store       *storage.Storage

	deferred bool
}

// New composes a Platter for an interaction, resolving the author from the
// guild member when present (DM interactions carry the user directly).
func New(s *discordgo.Session, i *discordgo.InteractionCreate, store *storage.Storage) *Platter {
	author := i.User
	if i.Member != nil {
		author = i.Member.User
	}
	return &Platter{
		Session:     s,
		Interaction: i,
		Author:      author,
		GuildID:     i.GuildID,
		Store:       store,
	}
}

// Send sends the initial public response, or a follow-up if Wait was called.
func (p *Platter) Send(content string) error {
	if p.deferred {
		return p.Followup(content)
	}
	return p.Session.InteractionRespond(p.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// SendEphemeral sends the initial response visible only to the author, or an
// ephemeral follow-up if Wait was called.
func (p *Platter) SendEphemeral(content string) error {
	if p.deferred {
		return p.FollowupEphemeral(content)
	}
	return p.Session.InteractionRespond(p.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// SendEmbed sends the initial response as a single embed.
func (p *Platter) SendEmbed(embed *discordgo.MessageEmbed) error {
	return p.Session.InteractionRespond(p.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

// Wait acknowledges the interaction with a deferred response, buying the
// handler time past the platform's response window. Subsequent Send calls
// become follow-ups. Calling it twice is a no-op.
func (p *Platter) Wait() error {
	if p.deferred {
		return nil
	}
	err := p.Session.InteractionRespond(p.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		p.deferred = true
	}
	return err
}

// Followup sends a public follow-up message after the initial response.
func (p *Platter) Followup(content string) error {
	_, err := p.Session.FollowupMessageCreate(p.Interaction.Interaction, false, &discordgo.WebhookParams{Content: content})
	return err
}

// FollowupEphemeral sends a follow-up visible only to the author.
func (p *Platter) FollowupEphemeral(content string) error {
	_, err := p.Session.FollowupMessageCreate(p.Interaction.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

// EditResponse edits the initial response (typically after Wait).
func (p *Platter) EditResponse(content string) error {
	_, err := p.Session.InteractionResponseEdit(p.Interaction.Interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

// Guild fetches the invoking guild, preferring the session state cache.
func (p *Platter) Guild() (*discordgo.Guild, error) {
	if g, err := p.Session.State.Guild(p.GuildID); err == nil {
		return g, nil
	}
	return p.Session.Guild(p.GuildID)
}
