package state

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"xwatch/pkg/logger"
	"xwatch/pkg/xapi"
)

// Entry is the persisted record for a single handle
type Entry struct {
	SinceID string `json:"since_id"`
}

// Watermarks maps lowercased handles to their last-reported post id
type Watermarks map[string]Entry

// Get looks up the entry for a handle, case-insensitively
func (w Watermarks) Get(handle string) (Entry, bool) {
	entry, ok := w[strings.ToLower(handle)]
	return entry, ok
}

// SinceID returns the stored watermark for a handle, or "" when none exists
func (w Watermarks) SinceID(handle string) string {
	entry, _ := w.Get(handle)
	return entry.SinceID
}

// Advance moves the watermark for a handle forward to id. A stored id that
// is already at or past the new one is kept, so the watermark never
// decreases across runs.
func (w Watermarks) Advance(handle, id string) {
	key := strings.ToLower(handle)
	if current, ok := w[key]; ok && current.SinceID != "" {
		if xapi.CompareIDs(current.SinceID, id) >= 0 {
			return
		}
	}
	w[key] = Entry{SinceID: id}
}

// Remove drops the entry for a handle. Losing a watermark only causes
// redundant reporting on the next run, never data loss.
func (w Watermarks) Remove(handle string) {
	delete(w, strings.ToLower(handle))
}

// Store handles watermark persistence
type Store struct {
	path   string
	logger logger.Logger

	// Top-level keys that are not watermark entries, kept verbatim from
	// Load so Save round-trips them untouched
	extras map[string]json.RawMessage
}

// NewStore creates a store backed by the given state file path
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		path:   path,
		logger: log,
	}
}

// Path returns the state file path the store persists to
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted watermark mapping. A missing file is the expected
// first-run condition and yields an empty mapping; an unreadable or corrupt
// file is downgraded to an empty mapping with a warning, since the worst
// outcome is redundant reporting.
func (s *Store) Load() (Watermarks, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.DebugWithFields("no state file, starting fresh", map[string]interface{}{
				"path": s.path,
			})
			return make(Watermarks), nil
		}
		s.logger.WarnWithFields("state file unreadable, treating as empty", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return make(Watermarks), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.WarnWithFields("state file corrupt, treating as empty", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return make(Watermarks), nil
	}

	// Decode entries individually so an unknown top-level key can never
	// invalidate the stored watermarks. Values that are not watermark
	// entries are carried through Save untouched.
	marks := make(Watermarks, len(raw))
	s.extras = make(map[string]json.RawMessage)
	for key, value := range raw {
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil || entry.SinceID == "" {
			s.extras[key] = value
			continue
		}
		marks[strings.ToLower(key)] = entry
	}

	s.logger.DebugWithFields("state loaded", map[string]interface{}{
		"path":    s.path,
		"handles": len(marks),
	})

	return marks, nil
}

// Save persists the watermark mapping atomically. The temp-write plus rename
// guarantees a crash mid-write never leaves a partially written file where
// the next Load would see it.
func (s *Store) Save(marks Watermarks) error {
	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}

	out := make(map[string]json.RawMessage, len(marks)+len(s.extras))
	for key, value := range s.extras {
		out[key] = value
	}
	for key, entry := range marks {
		raw, err := json.Marshal(entry)
		if err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to encode state entry: %w", err)
		}
		out[key] = raw
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync state file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.logger.DebugWithFields("state saved", map[string]interface{}{
		"path":    s.path,
		"handles": len(marks),
	})

	return nil
}

// Exists checks if a state file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
