package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"goldybot/datastore"
)

const commandHistoryLimit = 20

// Storage wraps the document store with per-guild typed accessors. Documents
// are keyed by guild ID; handlers reach it through the Platter.
type Storage struct {
	ds *datastore.DataStore
}

// CommandLogRecord is one entry of a guild's command-use history.
type CommandLogRecord struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Command  string    `json:"command"`
	Datetime time.Time `json:"datetime"`
}

// Warning is a moderation note attached to a guild member.
type Warning struct {
	UserID   string    `json:"user_id"`
	Reason   string    `json:"reason"`
	IssuedBy string    `json:"issued_by"`
	IssuedAt time.Time `json:"issued_at"`
}

// Record is the per-guild document.
type Record struct {
	CommandHistory []CommandLogRecord   `json:"cmd_history"`
	Warnings       map[string][]Warning `json:"warnings"` // key = userID
	Settings       map[string]string    `json:"settings"`
}

// New opens the storage file.
func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Close flushes and closes the underlying store.
func (s *Storage) Close() error {
	return s.ds.Close()
}

// guildRecord loads the guild document, creating an empty one on first use.
func (s *Storage) guildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Find(guildID)
	if !exists {
		return &Record{
			Warnings: map[string][]Warning{},
			Settings: map[string]string{},
		}, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling guild record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling guild record: %w", err)
	}
	if record.Warnings == nil {
		record.Warnings = map[string][]Warning{}
	}
	if record.Settings == nil {
		record.Settings = map[string]string{}
	}
	return &record, nil
}

func (s *Storage) saveGuildRecord(guildID string, record *Record) {
	s.ds.Set(guildID, record)
}

// LogCommand appends a command-use entry, keeping the newest entries only.
func (s *Storage) LogCommand(guildID, userID, username, commandName string) error {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}
	record.CommandHistory = append(record.CommandHistory, CommandLogRecord{
		UserID:   userID,
		Username: username,
		Command:  commandName,
		Datetime: time.Now(),
	})
	if len(record.CommandHistory) > commandHistoryLimit {
		record.CommandHistory = record.CommandHistory[len(record.CommandHistory)-commandHistoryLimit:]
	}
	s.saveGuildRecord(guildID, record)
	return nil
}

// CommandHistory returns the guild's recent command-use entries.
func (s *Storage) CommandHistory(guildID string) ([]CommandLogRecord, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandHistory, nil
}

// AddWarning attaches a moderation warning to a member.
func (s *Storage) AddWarning(guildID, userID, reason, issuedBy string) error {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}
	record.Warnings[userID] = append(record.Warnings[userID], Warning{
		UserID:   userID,
		Reason:   reason,
		IssuedBy: issuedBy,
		IssuedAt: time.Now(),
	})
	s.saveGuildRecord(guildID, record)
	return nil
}

// Warnings returns the warnings recorded for a member.
func (s *Storage) Warnings(guildID, userID string) ([]Warning, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.Warnings[userID], nil
}

// SetSetting upsert-merges one settings field into the guild document.
func (s *Storage) SetSetting(guildID, key, value string) error {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}
	record.Settings[key] = value
	s.saveGuildRecord(guildID, record)
	return nil
}

// GetSetting reads one settings field from the guild document.
func (s *Storage) GetSetting(guildID, key string) (string, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.Settings[key], nil
}
