package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// sessionTransport adapts a live discordgo session to the Transport
// interface the reconciler works against.
type sessionTransport struct {
	dg    *discordgo.Session
	appID string
}

func newSessionTransport(dg *discordgo.Session) (*sessionTransport, error) {
	var appID string
	if dg.State != nil && dg.State.User != nil {
		appID = dg.State.User.ID
	}
	if appID == "" {
		u, err := dg.User("@me")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch bot user: %w", err)
		}
		appID = u.ID
	}
	return &sessionTransport{dg: dg, appID: appID}, nil
}

func (t *sessionTransport) ApplicationCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return t.dg.ApplicationCommands(t.appID, guildID)
}

func (t *sessionTransport) BulkOverwrite(guildID string, commands []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	return t.dg.ApplicationCommandBulkOverwrite(t.appID, guildID, commands)
}
