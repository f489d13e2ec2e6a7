package modelstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/heliodata/sunbox/box"
	"github.com/heliodata/sunbox/grid"
)

// SaveModel stores a solved volume for a session, replacing any previous
// volume of the same kind.
func (s *Store) SaveModel(ctx context.Context, sessionID string, kind box.ModelKind, v *box.VectorCube) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown model kind %q", kind)
	}
	nx, ny, nz := v.Shape()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO model_volumes (
			id, session_id, kind, nx, ny, nz,
			bx_data, by_data, bz_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, kind) DO UPDATE SET
			nx = excluded.nx, ny = excluded.ny, nz = excluded.nz,
			bx_data = excluded.bx_data,
			by_data = excluded.by_data,
			bz_data = excluded.bz_data,
			created_at = excluded.created_at`,
		uuid.New().String(), sessionID, string(kind), nx, ny, nz,
		cubeBytes(v.Bx), cubeBytes(v.By), cubeBytes(v.Bz),
		s.clock.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving %s model for session %s: %w", kind, sessionID, err)
	}
	return nil
}

// Model loads one solved volume, or ErrNotFound when the session has no
// volume of that kind.
func (s *Store) Model(ctx context.Context, sessionID string, kind box.ModelKind) (*box.VectorCube, error) {
	var nx, ny, nz int
	var bxBlob, byBlob, bzBlob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT nx, ny, nz, bx_data, by_data, bz_data
		FROM model_volumes WHERE session_id = ? AND kind = ?`,
		sessionID, string(kind),
	).Scan(&nx, &ny, &nz, &bxBlob, &byBlob, &bzBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s model for session %s: %w", kind, sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s model for session %s: %w", kind, sessionID, err)
	}

	bx, err := cubeFromBytes(nx, ny, nz, bxBlob)
	if err != nil {
		return nil, fmt.Errorf("decoding bx for session %s: %w", sessionID, err)
	}
	by, err := cubeFromBytes(nx, ny, nz, byBlob)
	if err != nil {
		return nil, fmt.Errorf("decoding by for session %s: %w", sessionID, err)
	}
	bz, err := cubeFromBytes(nx, ny, nz, bzBlob)
	if err != nil {
		return nil, fmt.Errorf("decoding bz for session %s: %w", sessionID, err)
	}
	return box.NewVectorCube(bx, by, bz)
}

// Volume assembles a session's stored models into a FieldVolume. Kinds with
// no stored volume are simply absent; a session with no volumes at all yields
// an empty holder.
func (s *Store) Volume(ctx context.Context, sessionID string) (*box.FieldVolume, error) {
	f := box.NewFieldVolume()
	for _, kind := range box.ModelKinds {
		v, err := s.Model(ctx, sessionID, kind)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := f.Set(kind, v); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// cubeBytes serializes cube values as little-endian float64s.
func cubeBytes(c *grid.Cube) []byte {
	buf := make([]byte, 8*len(c.Data))
	for i, v := range c.Data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func cubeFromBytes(nx, ny, nz int, buf []byte) (*grid.Cube, error) {
	if len(buf) != 8*nx*ny*nz {
		return nil, fmt.Errorf("volume blob is %d bytes, want %d for (%d,%d,%d)",
			len(buf), 8*nx*ny*nz, nx, ny, nz)
	}
	values := make([]float64, nx*ny*nz)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return grid.FromValues(nx, ny, nz, values)
}
