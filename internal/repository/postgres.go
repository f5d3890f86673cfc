package repository

import (
	"context"
	"fmt"

	"github.com/sergss/geomark/internal/models"
)

// SaveSession stores a completed run summary together with its placemarks and
// returns the generated session ID. Placemark insertion failures do not roll
// back the session row; the summary is still worth keeping.
func (r *Repository) SaveSession(
	ctx context.Context,
	record models.SessionRecord,
	marks []models.Placemark,
) (int64, error) {
	query := `
		INSERT INTO search_sessions (started_at, finished_at, total, found_count, not_found, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING session_id;
	`

	var sessionID int64
	err := r.db.QueryRow(ctx, query,
		record.StartedAt, record.FinishedAt, record.Total, record.FoundCount, record.NotFound, record.Cancelled,
	).Scan(&sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert search session: %w", err)
	}

	for _, mark := range marks {
		if err = r.savePlacemark(ctx, sessionID, mark); err != nil {
			r.log.ErrorContext(ctx, "Failed to save placemark",
				"session", sessionID, "index", mark.Index, "error", err)
		}
	}

	r.log.DebugContext(ctx, "Search session recorded", "session", sessionID, "total", record.Total)

	return sessionID, nil
}

func (r *Repository) savePlacemark(ctx context.Context, sessionID int64, mark models.Placemark) error {
	query := `
		INSERT INTO search_placemarks (session_id, seq, latitude, longitude, original_address, found_address)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := r.db.Exec(ctx, query,
		sessionID, mark.Index, mark.Coordinates.Latitude, mark.Coordinates.Longitude, mark.Original, mark.Found,
	)
	if err != nil {
		return fmt.Errorf("failed to insert placemark: %w", err)
	}

	return nil
}

// RecentSessions lists the most recently finished sessions, newest first,
// limited to the specified count.
func (r *Repository) RecentSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	var sessions []models.SessionRecord
	query := `
		SELECT session_id, started_at, finished_at, total, found_count, not_found, cancelled
		FROM search_sessions
		ORDER BY started_at DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record models.SessionRecord
		if errScan := rows.Scan(
			&record.ID, &record.StartedAt, &record.FinishedAt,
			&record.Total, &record.FoundCount, &record.NotFound, &record.Cancelled,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan search session: %w", errScan)
		}
		sessions = append(sessions, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return sessions, nil
}
