// Package core is the built-in extension shipped with the bot: small
// utility commands that double as a living example of the extension API.
package core

import (
	"fmt"
	"math/rand"

	"github.com/bwmarrin/discordgo"

	"goldybot/internal/command"
	"goldybot/internal/extension"
	"goldybot/internal/platter"
	"goldybot/internal/version"
)

var fortuneTopics = []string{"love", "money", "career", "health", "travel", "friendship"}

var fortunes = []string{
	"Ask again when the moon is kinder.",
	"A pleasant surprise is waiting for you.",
	"Do not bet on it.",
	"The odds are firmly in your favour.",
	"Someone nearby already knows the answer.",
}

// New builds the core extension.
func New() (*extension.Extension, error) {
	ext := extension.New("core")

	_, err := ext.Slash(extension.SlashConfig{
		Name:        "ping",
		Description: "Check that the bot is alive.",
	}, ping)
	if err != nil {
		return nil, err
	}

	_, err = ext.Slash(extension.SlashConfig{
		Name:        "roll",
		Description: "Roll a die.",
		Params:      []string{"sides"},
		Options: map[string]command.Option{
			"sides": {
				Description: "How many sides the die has.",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Optional:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "d6", Value: 6},
					{Name: "d12", Value: 12},
					{Name: "d20", Value: 20},
				},
			},
		},
	}, roll)
	if err != nil {
		return nil, err
	}

	_, err = ext.Slash(extension.SlashConfig{
		Name:        "fortune",
		Description: "Receive a questionable prediction.",
		Params:      []string{"topic"},
		Options: map[string]command.Option{
			"topic": {
				Description:  "What the prediction should be about.",
				Optional:     true,
				Autocomplete: &command.Autocomplete{Recommendations: fortuneTopics},
			},
		},
	}, fortune)
	if err != nil {
		return nil, err
	}

	return ext, nil
}

func ping(p *platter.Platter, _ command.Args) error {
	return p.Send(fmt.Sprintf("🏓 Pong! %s %s is listening.", version.AppName, version.AppVersion))
}

func roll(p *platter.Platter, args command.Args) error {
	sides := args.Int("sides")
	if sides == 0 {
		sides = 6
	}
	return p.Send(fmt.Sprintf("🎲 You rolled a **%d** (d%d).", rand.Int63n(sides)+1, sides))
}

func fortune(p *platter.Platter, args command.Args) error {
	reply := fortunes[rand.Intn(len(fortunes))]
	if topic := args.String("topic"); topic != "" {
		reply = fmt.Sprintf("On %s: %s", topic, reply)
	}
	return p.Send("🔮 " + reply)
}
