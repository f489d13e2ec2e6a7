package modelstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heliodata/sunbox/box"
	"github.com/heliodata/sunbox/frame"
)

// SessionRecord is one persisted analysis session: the observation context
// and the box parameters, enough to rebuild the geometry with
// box.NewAnchored.
type SessionRecord struct {
	ID        string
	CreatedAt time.Time

	ObsTime      time.Time
	ObsLatDeg    float64
	ObsLonDeg    float64
	ObsDistMm    float64
	OriginLonDeg float64
	OriginLatDeg float64
	OriginRadMm  float64

	DimsPix [3]int
	ResMm   float64
	RSunMm  float64
	PadFrac float64
}

// Observation rebuilds the session's observation context.
func (r SessionRecord) Observation() frame.Observation {
	return frame.Observation{
		Time: r.ObsTime,
		Observer: frame.Observer{
			LatDeg:     r.ObsLatDeg,
			LonDeg:     r.ObsLonDeg,
			DistanceMm: r.ObsDistMm,
		},
	}
}

// Box rebuilds the session's analysis volume from the stored parameters.
func (r SessionRecord) Box() (*box.Box, error) {
	obs := r.Observation()
	origin := frame.NewStonyhurst(obs, r.OriginLonDeg, r.OriginLatDeg, r.OriginRadMm)
	return box.NewAnchored(obs, origin, r.DimsPix, r.ResMm,
		box.WithRSun(r.RSunMm), box.WithPadFrac(r.PadFrac))
}

// NewSessionRecord captures an observation and a constructed box as a
// session record. The box origin is stored as its heliographic position.
func NewSessionRecord(obs frame.Observation, b *box.Box) (SessionRecord, error) {
	hgs, err := b.Origin().To(frame.StonyhurstFrame(obs))
	if err != nil {
		return SessionRecord{}, fmt.Errorf("resolving box origin: %w", err)
	}
	return SessionRecord{
		ObsTime:      obs.Time,
		ObsLatDeg:    obs.Observer.LatDeg,
		ObsLonDeg:    obs.Observer.LonDeg,
		ObsDistMm:    obs.Observer.DistanceMm,
		OriginLonDeg: hgs.LonDeg(),
		OriginLatDeg: hgs.LatDeg(),
		OriginRadMm:  hgs.RadiusMm(),
		DimsPix:      b.DimsPix(),
		ResMm:        b.ResolutionMm(),
		RSunMm:       b.RSunMm(),
		PadFrac:      b.PadFrac(),
	}, nil
}

// SaveSession inserts a session record. An empty ID is assigned a fresh UUID
// and a zero CreatedAt the store clock's current time; the stored ID is
// returned.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, created_at, obs_time,
			obs_lat_deg, obs_lon_deg, obs_dist_mm,
			origin_lon_deg, origin_lat_deg, origin_rad_mm,
			dim_x_pix, dim_y_pix, dim_z_pix,
			res_mm, rsun_mm, pad_frac
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UnixNano(), rec.ObsTime.UnixNano(),
		rec.ObsLatDeg, rec.ObsLonDeg, rec.ObsDistMm,
		rec.OriginLonDeg, rec.OriginLatDeg, rec.OriginRadMm,
		rec.DimsPix[0], rec.DimsPix[1], rec.DimsPix[2],
		rec.ResMm, rec.RSunMm, rec.PadFrac,
	)
	if err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return rec.ID, nil
}

const sessionColumns = `
	id, created_at, obs_time,
	obs_lat_deg, obs_lon_deg, obs_dist_mm,
	origin_lon_deg, origin_lat_deg, origin_rad_mm,
	dim_x_pix, dim_y_pix, dim_z_pix,
	res_mm, rsun_mm, pad_frac`

func scanSession(row interface{ Scan(...interface{}) error }) (SessionRecord, error) {
	var rec SessionRecord
	var createdNs, obsNs int64
	err := row.Scan(
		&rec.ID, &createdNs, &obsNs,
		&rec.ObsLatDeg, &rec.ObsLonDeg, &rec.ObsDistMm,
		&rec.OriginLonDeg, &rec.OriginLatDeg, &rec.OriginRadMm,
		&rec.DimsPix[0], &rec.DimsPix[1], &rec.DimsPix[2],
		&rec.ResMm, &rec.RSunMm, &rec.PadFrac,
	)
	if err != nil {
		return SessionRecord{}, err
	}
	rec.CreatedAt = time.Unix(0, createdNs).UTC()
	rec.ObsTime = time.Unix(0, obsNs).UTC()
	return rec, nil
}

// Session returns the session with the given id, or ErrNotFound.
func (s *Store) Session(ctx context.Context, id string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("loading session %s: %w", id, err)
	}
	return rec, nil
}

// ListSessions returns all sessions, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var recs []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return recs, nil
}

// DeleteSession removes a session and, via the schema's cascade, its model
// volumes. Deleting an unknown session returns ErrNotFound.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}
