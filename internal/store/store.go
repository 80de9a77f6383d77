// Package store persists wizard sessions as JSON files and writes assembled
// submissions into an outbox directory for an external transport to pick up.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

const recordVersion = "1"

var (
	// ErrNotFound is returned when no session matches an id.
	ErrNotFound = errors.New("session not found")
	// ErrAmbiguous is returned when an id prefix matches several sessions.
	ErrAmbiguous = errors.New("ambiguous session id")
)

// Record is one persisted session.
type Record struct {
	Version     string          `json:"version"`
	ID          string          `json:"id"`
	UtilityCode string          `json:"utilityCode"`
	Context     *domain.Context `json:"context,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	Session     wizard.Snapshot `json:"session"`
}

// Summary is the listing view of a record, read without decoding the
// whole document.
type Summary struct {
	ID          string
	UtilityCode string
	WorkType    string
	JobID       string
	ActiveStep  string
	Completed   int
	Submitted   bool
	UpdatedAt   time.Time
}

// Store is a directory of session files named <id>.json.
type Store struct {
	dir string
	now func() time.Time
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Create persists a new record for the given session snapshot.
func (s *Store) Create(ctx *domain.Context, snap wizard.Snapshot) (*Record, error) {
	now := s.now().UTC().Format(time.RFC3339)
	rec := &Record{
		Version:     recordVersion,
		ID:          uuid.NewString(),
		UtilityCode: snap.UtilityCode,
		Context:     ctx,
		CreatedAt:   now,
		UpdatedAt:   now,
		Session:     snap,
	}
	if err := s.write(rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return rec, nil
}

// Save stores snap on rec and writes it.
func (s *Store) Save(rec *Record, snap wizard.Snapshot) error {
	rec.Session = snap
	rec.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.write(rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads the record whose id equals or uniquely starts with id.
func (s *Store) Load(id string) (*Record, error) {
	path, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the store dir
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("load session unmarshal: %w", err)
	}
	return &rec, nil
}

// Delete removes the record matching id.
func (s *Store) Delete(id string) error {
	path, err := s.resolve(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns summaries of every record, most recently updated first.
// Unreadable files are skipped.
func (s *Store) List() ([]Summary, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		data, err := os.ReadFile(s.path(id))
		if err != nil || !gjson.ValidBytes(data) {
			continue
		}
		out = append(out, summarize(data))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func summarize(data []byte) Summary {
	r := gjson.ParseBytes(data)
	sum := Summary{
		ID:          r.Get("id").String(),
		UtilityCode: r.Get("utilityCode").String(),
		WorkType:    r.Get("session.workType").String(),
		JobID:       r.Get("context.job.id").String(),
		ActiveStep:  r.Get("session.activeStep").String(),
		Submitted:   r.Get("session.submission").Exists(),
	}
	r.Get("session.state.completed").ForEach(func(_, v gjson.Result) bool {
		if v.Bool() {
			sum.Completed++
		}
		return true
	})
	if t, err := time.Parse(time.RFC3339, r.Get("updatedAt").String()); err == nil {
		sum.UpdatedAt = t
	}
	return sum
}

func (s *Store) resolve(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if _, err := os.Stat(s.path(id)); err == nil {
		return s.path(id), nil
	}

	ids, err := s.ids()
	if err != nil {
		return "", err
	}
	var matches []string
	for _, candidate := range ids {
		if strings.HasPrefix(candidate, id) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	case 1:
		return s.path(matches[0]), nil
	default:
		return "", fmt.Errorf("%w: %q matches %d sessions", ErrAmbiguous, id, len(matches))
	}
}

func (s *Store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) write(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeAtomic(s.dir, rec.ID+".json", pretty.Pretty(data))
}

// writeAtomic writes data to dir/name through a temp file and rename.
func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".write-*.tmp")
	if err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
