package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldybot/internal/config"
	"goldybot/internal/registry"
)

func readyEvent() *discordgo.Ready {
	return &discordgo.Ready{User: &discordgo.User{Username: "goldy"}}
}

func TestOnReady_SyncFailureTerminatesWait(t *testing.T) {
	b := NewBot(&config.Config{SyncCommands: true}, nil, registry.New())
	boom := errors.New("rate limited")
	b.sync = func(s *discordgo.Session) error { return boom }

	b.onReady(&discordgo.Session{}, readyEvent())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := b.wait(ctx)
	require.ErrorIs(t, err, boom, "a failed sync must abort startup, not leave the bot serving")
}

func TestOnReady_SyncSuccessKeepsRunning(t *testing.T) {
	b := NewBot(&config.Config{SyncCommands: true}, nil, registry.New())
	b.sync = func(s *discordgo.Session) error { return nil }

	b.onReady(&discordgo.Session{}, readyEvent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.wait(ctx), "cancellation is a clean shutdown")
}

func TestOnReady_SyncDisabledSkipsReconciler(t *testing.T) {
	b := NewBot(&config.Config{SyncCommands: false}, nil, registry.New())
	called := false
	b.sync = func(s *discordgo.Session) error {
		called = true
		return errors.New("should not run")
	}

	b.onReady(&discordgo.Session{}, readyEvent())
	assert.False(t, called)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.wait(ctx))
}

func TestOnReady_RepeatedFailuresDoNotBlockHandler(t *testing.T) {
	b := NewBot(&config.Config{SyncCommands: true}, nil, registry.New())
	b.sync = func(s *discordgo.Session) error { return errors.New("still down") }

	// Gateway reconnects re-fire ready; the handler must not wedge once the
	// fatal slot is taken.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			b.onReady(&discordgo.Session{}, readyEvent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onReady blocked on a repeated sync failure")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, b.wait(ctx))
}
