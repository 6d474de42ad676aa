package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"goldybot/internal/config"
	"goldybot/internal/registry"
	"goldybot/internal/storage"
)

// Bot owns the gateway session and wires the reconciler and dispatcher into
// its event handlers.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	storage    *storage.Storage
	registry   *registry.Registry
	dispatcher *Dispatcher

	// fatal receives setup failures raised inside event handlers, which
	// Run turns into its own return value.
	fatal chan error

	// sync seam, swappable in tests
	sync func(s *discordgo.Session) error
}

// NewBot builds the bot around an already-populated registry.
func NewBot(cfg *config.Config, store *storage.Storage, reg *registry.Registry) *Bot {
	b := &Bot{
		cfg:        cfg,
		storage:    store,
		registry:   reg,
		dispatcher: NewDispatcher(reg, store),
		fatal:      make(chan error, 1),
	}
	b.sync = func(s *discordgo.Session) error {
		transport, err := newSessionTransport(s)
		if err != nil {
			return err
		}
		return NewReconciler(transport, b.registry, b.cfg.TestGuildID).Sync()
	}
	return b
}

// Run opens the gateway session and blocks until ctx is cancelled or setup
// fails. Command sync happens once in the ready handler, before any
// dispatch; a sync failure is fatal and terminates Run.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	return b.wait(ctx)
}

func (b *Bot) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		log.Println("[INFO] Shutdown signal received, closing session...")
		return nil
	case err := <-b.fatal:
		return err
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if !b.cfg.SyncCommands {
		log.Println("[INFO] Command sync disabled, skipping")
		log.Printf("[INFO] ✅ Bot %s is running", r.User.Username)
		return
	}

	if err := b.sync(s); err != nil {
		log.Printf("[ERR] Command sync failed: %v", err)
		// Non-blocking: gateway reconnects re-fire ready, and the first
		// failure already terminates Run.
		select {
		case b.fatal <- fmt.Errorf("command sync failed: %w", err):
		default:
		}
		return
	}
	log.Printf("[INFO] ✅ Bot %s is running", r.User.Username)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handled, err := b.dispatcher.Dispatch(s, i)
	if err != nil {
		// Already rendered to the user and logged by the dispatcher.
		return
	}
	if handled && i.Type == discordgo.InteractionApplicationCommand {
		data := i.ApplicationCommandData()
		author := i.User
		if i.Member != nil {
			author = i.Member.User
		}
		if author != nil && i.GuildID != "" {
			if err := b.storage.LogCommand(i.GuildID, author.ID, author.Username, data.Name); err != nil {
				log.Printf("[WARN] Failed to record command use: %v", err)
			}
		}
	}
}
