package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"pointer/internal/fileutil"
	"pointer/internal/logging"
)

// Info summarizes a stored session for listings.
type Info struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	Messages     int       `json:"messages"`
	TotalTokens  int       `json:"total_tokens"`
}

// Store persists sessions as one JSON snapshot per session and tracks which
// session is active. A single interactive loop owns the store; there is no
// concurrent-writer protection.
type Store struct {
	dir    string
	active *Session
}

// DefaultDir returns the platform data directory for session files.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "pointer", "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "pointer", "sessions"), nil
	}
	return filepath.Join(home, ".local", "share", "pointer", "sessions"), nil
}

// NewStore creates a store over dir, creating it as needed. An empty dir
// selects the platform default.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve session directory: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (st *Store) Dir() string {
	return st.dir
}

// Active returns the active session, or nil when none is loaded.
func (st *Store) Active() *Session {
	return st.active
}

// New creates a fresh session and makes it active. The previous active
// session is left as last saved.
func (st *Store) New(title string) *Session {
	st.active = NewSession(title)
	return st.active
}

// SetActive replaces the active session.
func (st *Store) SetActive(s *Session) {
	st.active = s
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, id+".json")
}

// Save writes the active session as one atomic snapshot.
func (st *Store) Save() error {
	if st.active == nil {
		return fmt.Errorf("no active session")
	}
	return st.SaveSession(st.active)
}

// SaveSession writes the given session as one atomic snapshot keyed by its
// id.
func (st *Store) SaveSession(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := fileutil.AtomicWrite(st.path(s.ID), data, 0600); err != nil {
		return fmt.Errorf("write session %s: %w", s.ID, err)
	}
	logging.Debug("session saved", "id", s.ID, "messages", s.Len())
	return nil
}

// Load reads a stored session and makes it the active one.
func (st *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(st.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	st.active = &s
	return &s, nil
}

// List enumerates stored sessions, most recently modified first. Files that
// fail to decode are skipped.
func (st *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(st.dir, entry.Name()))
		if err != nil {
			continue
		}
		var s Session
		if err := json.Unmarshal(data, &s); err != nil {
			logging.Debug("skipping unreadable session file", "file", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, Info{
			ID:           s.ID,
			Title:        s.Title,
			CreatedAt:    s.CreatedAt,
			LastModified: s.LastModified,
			Messages:     len(s.Messages),
			TotalTokens:  s.TotalTokens,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastModified.After(infos[j].LastModified)
	})
	return infos, nil
}

// Delete removes a stored session. If it was the active one the active
// pointer is cleared.
func (st *Store) Delete(id string) error {
	if err := os.Remove(st.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session %s not found", id)
		}
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if st.active != nil && st.active.ID == id {
		st.active = nil
	}
	return nil
}
