package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

// OutboxMeta is envelope metadata written alongside a submission.
type OutboxMeta struct {
	SessionID string
	Warnings  []string
	CreatedAt time.Time // zero means now
}

// WriteOutbox wraps sub in an envelope and writes it to dir. The envelope
// carries its own id so a transport can deduplicate retries. It returns the
// written path.
func WriteOutbox(dir string, sub *domain.Submission, meta OutboxMeta) (string, error) {
	if sub == nil {
		return "", fmt.Errorf("write outbox: nil submission")
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("write outbox marshal: %w", err)
	}

	created := meta.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	id := uuid.NewString()

	env := []byte(`{}`)
	fields := []struct {
		path  string
		value any
	}{
		{"id", id},
		{"kind", "asbuilt.submission"},
		{"version", 1},
		{"sessionId", meta.SessionID},
		{"createdAt", created.UTC().Format(time.RFC3339)},
	}
	for _, f := range fields {
		if env, err = sjson.SetBytes(env, f.path, f.value); err != nil {
			return "", fmt.Errorf("write outbox envelope %s: %w", f.path, err)
		}
	}
	warnings := meta.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	if env, err = sjson.SetBytes(env, "warnings", warnings); err != nil {
		return "", fmt.Errorf("write outbox envelope warnings: %w", err)
	}
	if env, err = sjson.SetRawBytes(env, "submission", raw); err != nil {
		return "", fmt.Errorf("write outbox envelope submission: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.json", created.UTC().Format("20060102-150405"), sub.UtilityCode, id[:8])
	if err := writeAtomic(dir, name, pretty.Pretty(env)); err != nil {
		return "", fmt.Errorf("write outbox: %w", err)
	}
	return filepath.Join(dir, name), nil
}
