package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"goldybot/internal/platter"
)

// optionNamePattern is Discord's legal-name rule for command and option
// names: 1-32 codepoints of letters, digits, hyphen or underscore.
var optionNamePattern = regexp.MustCompile(`^[-_\p{L}\p{N}\p{Devanagari}\p{Thai}]{1,32}$`)

const defaultOptionDescription = "Sorry, no description was given for this option."

// Args holds the argument values extracted from one interaction, keyed by
// option name. Values are the raw wire values discordgo decoded (string,
// float64, bool); use the typed accessors for convenience.
type Args map[string]any

// String returns the named argument as a string, or "" if absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns the named argument as an int64. Integer options arrive from
// the wire as float64.
func (a Args) Int(name string) int64 {
	f, _ := a[name].(float64)
	return int64(f)
}

// Bool returns the named argument as a bool, or false if absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Has reports whether the named argument was supplied.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Handler executes one command invocation. The Platter carries the event,
// the session and the resolved author; args holds the extracted option
// values. Returning a *FrontEndError renders it to the user.
type Handler func(p *platter.Platter, args Args) error

// Autocompleter produces live suggestions while the user types an option
// value. typed is the partial text of the focused option; args holds the
// sibling option values resolved so far.
type Autocompleter func(p *platter.Platter, typed string, args Args) ([]*discordgo.ApplicationCommandOptionChoice, error)

// Autocomplete configures suggestion behaviour for one option. Exactly one
// of Callback or Recommendations must be set.
type Autocomplete struct {
	Callback        Autocompleter
	Recommendations []string
}

// Option is the author-supplied metadata for one declared parameter. A zero
// Option synthesizes a required string option. Optional inverts the wire
// "required" flag so the zero value stays the strict default.
type Option struct {
	Name         string
	Description  string
	Type         discordgo.ApplicationCommandOptionType
	Optional     bool
	Choices      []*discordgo.ApplicationCommandOptionChoice
	Autocomplete *Autocomplete
}

// BuildOptions derives the wire-format option schema for a command from its
// declared parameter list. params is authoritative: the result holds exactly
// one option per parameter, in declaration order. specs may supply explicit
// metadata for a subset of the parameters; the rest become required string
// options with a placeholder description.
//
// The second return value maps option names to their autocomplete specs for
// the dispatcher's suggestion path.
func BuildOptions(cmdName string, params []string, specs map[string]Option) ([]*discordgo.ApplicationCommandOption, map[string]*Autocomplete, error) {
	for key := range specs {
		if !contains(params, key) {
			return nil, nil, &InvalidParameterError{
				Command: cmdName, Param: key,
				Reason: "slash option does not match any declared parameter",
			}
		}
	}

	var opts []*discordgo.ApplicationCommandOption
	completers := make(map[string]*Autocomplete)

	for _, param := range params {
		if err := validateName(cmdName, param); err != nil {
			return nil, nil, err
		}

		spec, ok := specs[param]
		if !ok {
			opts = append(opts, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        param,
				Description: defaultOptionDescription,
				Required:    true,
			})
			continue
		}

		if spec.Name == "" {
			spec.Name = param
		}
		if err := validateName(cmdName, spec.Name); err != nil {
			return nil, nil, err
		}
		wire, err := buildOption(cmdName, spec)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, wire)
		if spec.Autocomplete != nil {
			completers[spec.Name] = spec.Autocomplete
		}
	}

	return opts, completers, nil
}

// buildOption validates one explicit Option and converts it to wire format.
func buildOption(cmdName string, spec Option) (*discordgo.ApplicationCommandOption, error) {
	if len(spec.Choices) > 0 && spec.Autocomplete != nil {
		return nil, &InvalidParameterError{
			Command: cmdName, Param: spec.Name,
			Reason: "choices and autocomplete are mutually exclusive",
		}
	}
	if spec.Autocomplete != nil {
		hasCallback := spec.Autocomplete.Callback != nil
		hasStatic := len(spec.Autocomplete.Recommendations) > 0
		if hasCallback == hasStatic {
			return nil, &InvalidParameterError{
				Command: cmdName, Param: spec.Name,
				Reason: "autocomplete needs exactly one of callback or recommendations",
			}
		}
	}

	optType := spec.Type
	if len(spec.Choices) > 0 {
		choiceType, err := choicesType(cmdName, spec.Name, spec.Choices)
		if err != nil {
			return nil, err
		}
		if optType == 0 {
			optType = choiceType
		}
	}
	if optType == 0 {
		optType = discordgo.ApplicationCommandOptionString
	}

	desc := spec.Description
	if desc == "" {
		desc = defaultOptionDescription
	}

	return &discordgo.ApplicationCommandOption{
		Type:         optType,
		Name:         spec.Name,
		Description:  desc,
		Required:     !spec.Optional,
		Choices:      spec.Choices,
		Autocomplete: spec.Autocomplete != nil,
	}, nil
}

// choicesType checks that every choice value shares one scalar type and
// returns the matching wire type. Mixed-type choice lists are rejected
// outright rather than coerced.
func choicesType(cmdName, param string, choices []*discordgo.ApplicationCommandOptionChoice) (discordgo.ApplicationCommandOptionType, error) {
	var t discordgo.ApplicationCommandOptionType
	for _, c := range choices {
		var ct discordgo.ApplicationCommandOptionType
		switch c.Value.(type) {
		case string:
			ct = discordgo.ApplicationCommandOptionString
		case int, int64, float64:
			ct = discordgo.ApplicationCommandOptionInteger
		default:
			return 0, &InvalidParameterError{
				Command: cmdName, Param: param,
				Reason: fmt.Sprintf("choice %q has unsupported value type %T", c.Name, c.Value),
			}
		}
		if t == 0 {
			t = ct
		} else if t != ct {
			return 0, &InvalidParameterError{
				Command: cmdName, Param: param,
				Reason: fmt.Sprintf("choice %q mixes value types within one option", c.Name),
			}
		}
	}
	return t, nil
}

func validateName(cmdName, name string) error {
	if name != strings.ToLower(name) {
		return &InvalidParameterError{
			Command: cmdName, Param: name,
			Reason: "uppercase characters are not allowed",
		}
	}
	if !optionNamePattern.MatchString(name) {
		return &InvalidParameterError{
			Command: cmdName, Param: name,
			Reason: "must be 1-32 characters of letters, digits, hyphen or underscore",
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
