package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DefaultEventLimit is the number of events List returns when no limit is given.
const DefaultEventLimit = 50

// ShapeEvent records one change of the selected shape.
type ShapeEvent struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository stores shape-change history.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, assigning an ID and timestamp when they are empty.
func (r *EventRepository) Record(e *ShapeEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	// Stored in UTC so created_at compares in time order.
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO shape_events (id, from_shape, to_shape, source, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.From, e.To, e.Source, e.CreatedAt,
	)
	return err
}

// List returns up to limit events, newest first. A non-positive limit uses
// DefaultEventLimit.
func (r *EventRepository) List(limit int) ([]*ShapeEvent, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	rows, err := r.db.Query(
		`SELECT id, from_shape, to_shape, source, created_at
		 FROM shape_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*ShapeEvent, 0)
	for rows.Next() {
		e := &ShapeEvent{}
		if err := rows.Scan(&e.ID, &e.From, &e.To, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Count returns the total number of recorded events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM shape_events`).Scan(&n)
	return n, err
}

// Prune deletes events created before cutoff and returns how many were removed.
func (r *EventRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM shape_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
