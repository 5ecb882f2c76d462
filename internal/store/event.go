package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

const (
	queryInsertEvent = `INSERT INTO events (id, seq, label, actions, x, y, tracking, created_at)
		VALUES (:id, :seq, :label, :actions, :x, :y, :tracking, :created_at)`
	querySelectEvent = `SELECT id, seq, label, actions, x, y, tracking, created_at FROM events`
)

// Event is one journal entry: a gesture change or a dispatched click.
type Event struct {
	ID        string    `db:"id" json:"id"`
	Seq       uint64    `db:"seq" json:"seq"`
	Label     string    `db:"label" json:"label"`
	Actions   string    `db:"actions" json:"actions"`
	X         int       `db:"x" json:"x"`
	Y         int       `db:"y" json:"y"`
	Tracking  bool      `db:"tracking" json:"tracking"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EventRepository provides access to journal events.
type EventRepository struct {
	db *sqlx.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts e, assigning an ID and timestamp when they are empty.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.NamedExec(queryInsertEvent, e)
	return err
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	var e Event
	if err := r.db.Get(&e, querySelectEvent+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns up to limit events, newest first. A non-positive limit uses
// DefaultListLimit.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var events []*Event
	err := r.db.Select(&events, querySelectEvent+` ORDER BY created_at DESC, seq DESC LIMIT ?`, limit)
	return events, err
}

// CountByLabel returns how many events were recorded per label.
func (r *EventRepository) CountByLabel() (map[string]int, error) {
	var rows []struct {
		Label string `db:"label"`
		N     int    `db:"n"`
	}
	if err := r.db.Select(&rows, `SELECT label, COUNT(*) AS n FROM events GROUP BY label`); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.N
	}
	return counts, nil
}

// Clear deletes every event.
func (r *EventRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM events`)
	return err
}
