// Package delta journals the file contents replaced by commits so they can be
// reversed on undo. Deltas are persisted to SQLite and keyed by file.
package delta

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNothingToUndo is returned when a file has no journaled commit.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrDrift is returned when a file changed on disk after the commit
	// being undone; restoring it would lose those changes.
	ErrDrift = errors.New("file changed since the last commit")
)

// Entry describes one journaled commit.
type Entry struct {
	ID       int64
	Path     string
	Revision int // tree revision the commit produced
	Created  time.Time
}

// Tracker records and replays commit deltas.
type Tracker struct {
	mu sync.Mutex
	db *sql.DB
}

// New creates a Tracker that writes to the given database. A nil db yields
// a tracker that records nothing.
func New(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Record stores the content a commit replaced together with what it wrote
// and returns the entry id, 0 when nothing was recorded. Failures are
// logged; a commit never fails because its undo record could not be written.
func (t *Tracker) Record(path string, revision int, oldContent, newContent []byte) int64 {
	if t == nil || t.db == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	res, err := t.db.Exec(
		`INSERT INTO file_deltas (file_path, revision, old_content, new_content, created)
		 VALUES (?, ?, ?, ?, ?)`,
		path, revision, oldContent, newContent, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Int("revision", revision).Msg("failed to record commit delta")
		return 0
	}
	id, _ := res.LastInsertId()
	return id
}

// Discard removes a single entry, used when the commit it journaled did not
// reach the disk.
func (t *Tracker) Discard(id int64) {
	if t == nil || t.db == nil || id == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.db.Exec(`DELETE FROM file_deltas WHERE id = ?`, id); err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("failed to discard delta")
	}
}

// Last returns the most recent journaled commit of path.
func (t *Tracker) Last(path string) (Entry, error) {
	if t == nil || t.db == nil {
		return Entry{}, ErrNothingToUndo
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e, _, _, err := t.last(path)
	return e, err
}

func (t *Tracker) last(path string) (Entry, []byte, []byte, error) {
	var (
		e        Entry
		created  int64
		old, cur []byte
	)
	err := t.db.QueryRow(
		`SELECT id, file_path, revision, old_content, new_content, created FROM file_deltas
		 WHERE file_path = ? ORDER BY id DESC LIMIT 1`,
		path,
	).Scan(&e.ID, &e.Path, &e.Revision, &old, &cur, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, nil, nil, ErrNothingToUndo
	}
	if err != nil {
		return Entry{}, nil, nil, fmt.Errorf("query deltas: %w", err)
	}
	e.Created = time.Unix(created, 0)
	return e, old, cur, nil
}

// Undo restores path to its content before the most recent commit and drops
// that journal entry. The file must still hold exactly what the commit
// wrote, otherwise ErrDrift is returned and nothing is touched.
func (t *Tracker) Undo(path string) (Entry, error) {
	if t == nil || t.db == nil {
		return Entry{}, ErrNothingToUndo
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	e, old, written, err := t.last(path)
	if err != nil {
		return Entry{}, err
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !bytes.Equal(onDisk, written) {
		return Entry{}, fmt.Errorf("%s: %w", path, ErrDrift)
	}
	if err := WriteAtomic(path, old); err != nil {
		return Entry{}, fmt.Errorf("restore %s: %w", path, err)
	}
	if _, err := t.db.Exec(`DELETE FROM file_deltas WHERE id = ?`, e.ID); err != nil {
		log.Warn().Err(err).Str("file", path).Int64("id", e.ID).Msg("failed to drop undone delta")
	}
	log.Debug().Str("file", path).Int("revision", e.Revision).Msg("commit undone")
	return e, nil
}

// Forget removes every journal entry of path.
func (t *Tracker) Forget(path string) {
	if t == nil || t.db == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.db.Exec(`DELETE FROM file_deltas WHERE file_path = ?`, path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("failed to delete file deltas")
	}
}
