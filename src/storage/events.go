package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const eventColumns = `id, title, event_date, location, description, created_at, updated_at`

// EventFields lists the columns update_event may change.
var EventFields = []string{"title", "event_date", "location", "description"}

// GetEvent retrieves an event by ID. Returns nil, nil when absent.
func GetEvent(ctx context.Context, db sqlscan.Querier, id string) (*Event, error) {
	var e Event
	err := sqlscan.Get(ctx, db, &e, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func CreateEvent(ctx context.Context, db Execer, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = now
	}
	event.EventDate = event.EventDate.UTC()

	query := `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.EventDate,
		event.Location,
		event.Description,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return err
}

// ListEvents returns events ordered by date. A non-zero from drops events before it.
func ListEvents(ctx context.Context, db sqlscan.Querier, from time.Time) ([]Event, error) {
	events := []Event{}
	var err error
	if from.IsZero() {
		err = sqlscan.Select(ctx, db, &events, `SELECT `+eventColumns+` FROM events ORDER BY event_date, rowid`)
	} else {
		err = sqlscan.Select(ctx, db, &events, `SELECT `+eventColumns+` FROM events WHERE event_date >= ? ORDER BY event_date, rowid`, from.UTC())
	}
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEventField sets one editable field. event_date values must be
// passed as time.Time. Reports false when no event matched.
func UpdateEventField(ctx context.Context, db Execer, id, field string, value any) (bool, error) {
	valid := false
	for _, f := range EventFields {
		if f == field {
			valid = true
			break
		}
	}
	if !valid {
		return false, fmt.Errorf("%w '%s', allowed fields: %v", ErrInvalidField, field, EventFields)
	}
	if t, ok := value.(time.Time); ok {
		value = t.UTC()
	}

	query := fmt.Sprintf(`UPDATE events SET %s = ?, updated_at = ? WHERE id = ?`, field)
	res, err := db.ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func DeleteEvent(ctx context.Context, db Execer, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
