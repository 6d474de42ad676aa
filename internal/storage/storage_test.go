package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogCommand_KeepsNewestEntries(t *testing.T) {
	s := newStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.LogCommand("g1", "u1", "alice", fmt.Sprintf("cmd-%d", i)))
	}

	history, err := s.CommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, fmt.Sprintf("cmd-%d", commandHistoryLimit+4), history[len(history)-1].Command)
	assert.Equal(t, "cmd-5", history[0].Command, "oldest entries are dropped")
}

func TestWarnings_PerMember(t *testing.T) {
	s := newStorage(t)

	require.NoError(t, s.AddWarning("g1", "u1", "spam", "mod-1"))
	require.NoError(t, s.AddWarning("g1", "u1", "more spam", "mod-2"))
	require.NoError(t, s.AddWarning("g1", "u2", "rude", "mod-1"))

	list, err := s.Warnings("g1", "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "spam", list[0].Reason)
	assert.Equal(t, "mod-2", list[1].IssuedBy)

	other, err := s.Warnings("g2", "u1")
	require.NoError(t, err)
	assert.Empty(t, other, "guild documents are independent")
}

func TestSettings_RoundTrip(t *testing.T) {
	s := newStorage(t)

	value, err := s.GetSetting("g1", "log_channel")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.SetSetting("g1", "log_channel", "123"))
	require.NoError(t, s.SetSetting("g1", "mod_role", "456"))

	value, err = s.GetSetting("g1", "log_channel")
	require.NoError(t, err)
	assert.Equal(t, "123", value)
}
