// Package mod is the built-in moderation extension: an admin command group
// with warn bookkeeping and per-guild settings, gated by a master check.
package mod

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"goldybot/internal/command"
	"goldybot/internal/extension"
	"goldybot/internal/platter"
)

var settingKeys = []string{"log_channel", "welcome_message", "mod_role"}

// New builds the moderation extension.
func New() (*extension.Extension, error) {
	ext := extension.New("mod")

	admin, err := ext.Group("admin", "Moderation commands for server staff.")
	if err != nil {
		return nil, err
	}
	admin.Master(requireAdministrator)

	_, err = admin.Subcommand(extension.SlashConfig{
		Name:        "warn",
		Description: "Record a warning against a member.",
		Params:      []string{"user", "reason"},
		Options: map[string]command.Option{
			"user": {
				Description: "The member to warn.",
				Type:        discordgo.ApplicationCommandOptionUser,
			},
			"reason": {
				Description: "Why the warning is issued.",
			},
		},
	}, warn)
	if err != nil {
		return nil, err
	}

	_, err = admin.Subcommand(extension.SlashConfig{
		Name:        "warnings",
		Description: "List the warnings recorded for a member.",
		Params:      []string{"user"},
		Options: map[string]command.Option{
			"user": {
				Description: "The member to look up.",
				Type:        discordgo.ApplicationCommandOptionUser,
			},
		},
	}, warnings)
	if err != nil {
		return nil, err
	}

	settings, err := admin.SubGroup("settings", "Per-server configuration.")
	if err != nil {
		return nil, err
	}

	_, err = settings.Subcommand(extension.SlashConfig{
		Name:        "set",
		Description: "Change one server setting.",
		Params:      []string{"key", "value"},
		Options: map[string]command.Option{
			"key": {
				Description:  "The setting to change.",
				Autocomplete: &command.Autocomplete{Callback: suggestSettingKeys},
			},
			"value": {
				Description: "The new value.",
			},
		},
	}, settingsSet)
	if err != nil {
		return nil, err
	}

	_, err = settings.Subcommand(extension.SlashConfig{
		Name:        "show",
		Description: "Show one server setting.",
		Params:      []string{"key"},
		Options: map[string]command.Option{
			"key": {
				Description:  "The setting to show.",
				Autocomplete: &command.Autocomplete{Recommendations: settingKeys},
			},
		},
	}, settingsShow)
	if err != nil {
		return nil, err
	}

	return ext, nil
}

// requireAdministrator is the master gate for the admin group.
func requireAdministrator(p *platter.Platter, _ command.Args) error {
	if p.Interaction.Member == nil {
		return command.NewFrontEndError("Moderation commands only work inside a server.")
	}
	if p.Interaction.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return command.NewFrontEndError("You need administrator permissions for that.")
	}
	return nil
}

func warn(p *platter.Platter, args command.Args) error {
	userID := args.String("user")
	reason := args.String("reason")
	if strings.TrimSpace(reason) == "" {
		return command.NewFrontEndError("A warning needs a reason.")
	}
	if err := p.Store.AddWarning(p.GuildID, userID, reason, p.Author.ID); err != nil {
		return fmt.Errorf("failed to record warning: %w", err)
	}
	return p.Send(fmt.Sprintf("⚠️ Warned <@%s>: %s", userID, reason))
}

func warnings(p *platter.Platter, args command.Args) error {
	userID := args.String("user")
	list, err := p.Store.Warnings(p.GuildID, userID)
	if err != nil {
		return fmt.Errorf("failed to load warnings: %w", err)
	}
	if len(list) == 0 {
		return p.SendEphemeral(fmt.Sprintf("<@%s> has a clean record.", userID))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Warnings for <@%s>:\n", userID)
	for i, w := range list {
		fmt.Fprintf(&b, "%d. %s (by <@%s> on %s)\n", i+1, w.Reason, w.IssuedBy, w.IssuedAt.Format("2006-01-02"))
	}
	return p.SendEphemeral(b.String())
}

func settingsSet(p *platter.Platter, args command.Args) error {
	key := args.String("key")
	value := args.String("value")
	if !validSettingKey(key) {
		return command.NewFrontEndError("Unknown setting %q.", key)
	}
	if err := p.Store.SetSetting(p.GuildID, key, value); err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return p.SendEphemeral(fmt.Sprintf("Setting `%s` updated.", key))
}

func settingsShow(p *platter.Platter, args command.Args) error {
	key := args.String("key")
	if !validSettingKey(key) {
		return command.NewFrontEndError("Unknown setting %q.", key)
	}
	value, err := p.Store.GetSetting(p.GuildID, key)
	if err != nil {
		return fmt.Errorf("failed to load setting: %w", err)
	}
	if value == "" {
		return p.SendEphemeral(fmt.Sprintf("Setting `%s` is not set.", key))
	}
	return p.SendEphemeral(fmt.Sprintf("`%s` = %s", key, value))
}

// suggestSettingKeys narrows the known setting keys by the typed prefix.
func suggestSettingKeys(_ *platter.Platter, typed string, _ command.Args) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	lowered := strings.ToLower(typed)
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, key := range settingKeys {
		if lowered != "" && !strings.Contains(key, lowered) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: key, Value: key})
	}
	return choices, nil
}

func validSettingKey(key string) bool {
	for _, k := range settingKeys {
		if k == key {
			return true
		}
	}
	return false
}
