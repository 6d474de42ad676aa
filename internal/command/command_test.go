package command

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldybot/internal/platter"
)

func noopHandler(p *platter.Platter, args Args) error { return nil }

func TestNew_LeafDefinition(t *testing.T) {
	cmd, err := New("greet", "Say hello.", noopHandler, []string{"who"}, nil)
	require.NoError(t, err)

	def := cmd.SlashDefinition()
	assert.Equal(t, "greet", def.Name)
	assert.Equal(t, "Say hello.", def.Description)
	assert.Equal(t, discordgo.ChatApplicationCommand, def.Type)
	require.Len(t, def.Options, 1)
	assert.Equal(t, "who", def.Options[0].Name)
}

func TestNew_DescriptionDefaultsToPlaceholder(t *testing.T) {
	cmd, err := New("greet", "", noopHandler, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cmd.Description())
}

func TestNew_UppercaseNameRejected(t *testing.T) {
	_, err := New("Greet", "", noopHandler, nil, nil)
	var ipe *InvalidParameterError
	require.ErrorAs(t, err, &ipe)
}

func TestAddSubcommand_DuplicateNameFailsAtRegistration(t *testing.T) {
	parent, err := NewGroup("admin", "", nil)
	require.NoError(t, err)

	first, err := New("kick", "", noopHandler, nil, nil)
	require.NoError(t, err)
	require.NoError(t, parent.AddSubcommand(first))

	second, err := New("kick", "", noopHandler, nil, nil)
	require.NoError(t, err)
	assert.Error(t, parent.AddSubcommand(second))
}

func TestAddSubcommand_LeafCannotHoldChildren(t *testing.T) {
	leaf, err := New("ping", "", noopHandler, nil, nil)
	require.NoError(t, err)
	child, err := New("pong", "", noopHandler, nil, nil)
	require.NoError(t, err)
	assert.Error(t, leaf.AddSubcommand(child))
}

func TestSlashDefinition_NestedSchema(t *testing.T) {
	admin, err := NewGroup("admin", "Admin tools.", noopHandler)
	require.NoError(t, err)

	kick, err := New("kick", "Kick someone.", noopHandler, []string{"user_id"}, nil)
	require.NoError(t, err)
	require.NoError(t, admin.AddSubcommand(kick))

	roles, err := NewGroup("roles", "Role tools.", nil)
	require.NoError(t, err)
	require.NoError(t, admin.AddSubcommandGroup(roles))

	give, err := New("give", "Give a role.", noopHandler, []string{"role_id"}, nil)
	require.NoError(t, err)
	require.NoError(t, roles.AddSubcommand(give))

	def := admin.SlashDefinition()
	require.Len(t, def.Options, 2)

	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, def.Options[0].Type)
	assert.Equal(t, "kick", def.Options[0].Name)
	require.Len(t, def.Options[0].Options, 1)
	assert.Equal(t, "user_id", def.Options[0].Options[0].Name)

	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, def.Options[1].Type)
	assert.Equal(t, "roles", def.Options[1].Name)
	require.Len(t, def.Options[1].Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, def.Options[1].Options[0].Type)
	assert.Equal(t, "give", def.Options[1].Options[0].Name)
}

func TestSlashDefinition_ReflectsLaterAttaches(t *testing.T) {
	admin, err := NewGroup("admin", "", nil)
	require.NoError(t, err)
	require.Empty(t, admin.SlashDefinition().Options)

	kick, err := New("kick", "", noopHandler, nil, nil)
	require.NoError(t, err)
	require.NoError(t, admin.AddSubcommand(kick))

	assert.Len(t, admin.SlashDefinition().Options, 1)
}

func TestAddSubcommandGroup_ThirdLevelRejected(t *testing.T) {
	top, err := NewGroup("admin", "", nil)
	require.NoError(t, err)
	mid, err := NewGroup("roles", "", nil)
	require.NoError(t, err)
	require.NoError(t, top.AddSubcommandGroup(mid))

	deep, err := NewGroup("colors", "", nil)
	require.NoError(t, err)
	assert.Error(t, mid.AddSubcommandGroup(deep), "group under an attached group")
}

func TestAddSubcommandGroup_PreNestedGroupRejected(t *testing.T) {
	mid, err := NewGroup("roles", "", nil)
	require.NoError(t, err)
	deep, err := NewGroup("colors", "", nil)
	require.NoError(t, err)
	require.NoError(t, mid.AddSubcommandGroup(deep))

	top, err := NewGroup("admin", "", nil)
	require.NoError(t, err)
	assert.Error(t, top.AddSubcommandGroup(mid), "attaching a group that already nests a group")
}

func TestChild_LookupByName(t *testing.T) {
	admin, err := NewGroup("admin", "", nil)
	require.NoError(t, err)
	kick, err := New("kick", "", noopHandler, nil, nil)
	require.NoError(t, err)
	require.NoError(t, admin.AddSubcommand(kick))

	got, ok := admin.Child("kick")
	require.True(t, ok)
	assert.Same(t, kick, got)

	_, ok = admin.Child("ban")
	assert.False(t, ok)
}
