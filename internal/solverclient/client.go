// Package solverclient calls the external field-extrapolation service over
// HTTP/JSON.
//
// The service exchanges volumes in (y, x, z) axis order and names the two
// in-plane components the other way around from the box frame: service bx is
// the box by and vice versa. Requests and responses pass through
// grid.Cube.TransposeXY and a component swap so callers only ever see
// box-order volumes.
package solverclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/heliodata/sunbox/box"
	"github.com/heliodata/sunbox/grid"
	"github.com/heliodata/sunbox/internal/version"
	"github.com/heliodata/sunbox/magfield"
)

// Client talks to one solver service instance.
type Client struct {
	BaseURL    string
	HTTPClient HTTPClient
	UserAgent  string
}

// Option adjusts a Client at construction.
type Option func(*Client)

// WithHTTPClient substitutes the transport, usually a mock in tests.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithUserAgent overrides the User-Agent header on solver requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// New returns a client for the solver service at baseURL. The default
// transport carries no request timeout: solves run long, so deadlines come
// from the caller's context.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		UserAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// potentialRequest is the /v1/potential body: the radial bottom boundary in
// row-major (y, x) order plus the volume height and the force-free alpha.
type potentialRequest struct {
	Bz    [][]float64 `json:"bz"`
	NZ    int         `json:"nz"`
	Alpha float64     `json:"alpha"`
}

// nlfffRequest is the /v1/nlfff body: a seed volume in the service's own
// component naming and axis order.
type nlfffRequest struct {
	Bx [][][]float64 `json:"bx"`
	By [][][]float64 `json:"by"`
	Bz [][][]float64 `json:"bz"`
}

type volumeResponse struct {
	Bx [][][]float64 `json:"bx"`
	By [][][]float64 `json:"by"`
	Bz [][][]float64 `json:"bz"`
}

// Potential requests a linear force-free extrapolation with alpha = 0 above
// the radial bottom-boundary map, nz layers high. NaN cells are sent as zero;
// the solvers require finite boundaries.
func (c *Client) Potential(ctx context.Context, bottom *grid.Map, nz int) (*box.VectorCube, error) {
	if nz < 1 {
		return nil, fmt.Errorf("potential solve needs nz >= 1, got %d", nz)
	}
	body := potentialRequest{Bz: wireMap(bottom), NZ: nz, Alpha: 0}
	var resp volumeResponse
	if err := c.post(ctx, "/v1/potential", body, &resp); err != nil {
		return nil, err
	}
	v, err := volumeFromWire(resp)
	if err != nil {
		return nil, fmt.Errorf("potential response: %w", err)
	}
	nx, ny, gotNZ := v.Shape()
	if nx != bottom.NX || ny != bottom.NY || gotNZ != nz {
		return nil, fmt.Errorf("potential response shape (%d,%d,%d), want (%d,%d,%d)",
			nx, ny, gotNZ, bottom.NX, bottom.NY, nz)
	}
	return v, nil
}

// NLFFF requests a nonlinear force-free solve from a seed volume, usually the
// potential solution. The boundary components replace the seed's bottom layer
// before submission; NaN cells are sent as zero.
func (c *Client) NLFFF(ctx context.Context, seed *box.VectorCube, boundary *magfield.Boundary) (*box.VectorCube, error) {
	// Stamp the boundary in box order, then swap components and axes for
	// the wire.
	sbx := seed.By.Clone()
	sby := seed.Bx.Clone()
	sbz := seed.Bz.Clone()
	if err := sbx.SetLayer(0, boundary.Bx); err != nil {
		return nil, fmt.Errorf("stamping bx boundary: %w", err)
	}
	if err := sby.SetLayer(0, boundary.By); err != nil {
		return nil, fmt.Errorf("stamping by boundary: %w", err)
	}
	if err := sbz.SetLayer(0, boundary.Bz); err != nil {
		return nil, fmt.Errorf("stamping bz boundary: %w", err)
	}
	body := nlfffRequest{
		Bx: wireCube(sbx.TransposeXY()),
		By: wireCube(sby.TransposeXY()),
		Bz: wireCube(sbz.TransposeXY()),
	}
	var resp volumeResponse
	if err := c.post(ctx, "/v1/nlfff", body, &resp); err != nil {
		return nil, err
	}
	v, err := volumeFromWire(resp)
	if err != nil {
		return nil, fmt.Errorf("nlfff response: %w", err)
	}
	wantNX, wantNY, wantNZ := seed.Shape()
	nx, ny, nz := v.Shape()
	if nx != wantNX || ny != wantNY || nz != wantNZ {
		return nil, fmt.Errorf("nlfff response shape (%d,%d,%d), want (%d,%d,%d)",
			nx, ny, nz, wantNX, wantNY, wantNZ)
	}
	return v, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding solver request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building solver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling solver %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("solver %s: status %d: %s", path, resp.StatusCode,
			strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding solver %s response: %w", path, err)
	}
	return nil
}

// volumeFromWire undoes the service's axis order and component naming and
// assembles a box-order volume.
func volumeFromWire(resp volumeResponse) (*box.VectorCube, error) {
	sbx, err := cubeFromWire(resp.Bx)
	if err != nil {
		return nil, fmt.Errorf("bx: %w", err)
	}
	sby, err := cubeFromWire(resp.By)
	if err != nil {
		return nil, fmt.Errorf("by: %w", err)
	}
	sbz, err := cubeFromWire(resp.Bz)
	if err != nil {
		return nil, fmt.Errorf("bz: %w", err)
	}
	return box.NewVectorCube(sby.TransposeXY(), sbx.TransposeXY(), sbz.TransposeXY())
}

// wireMap renders a map as nested rows, NaN cells as zero.
func wireMap(m *grid.Map) [][]float64 {
	rows := make([][]float64, m.NY)
	for iy := 0; iy < m.NY; iy++ {
		row := make([]float64, m.NX)
		for ix := 0; ix < m.NX; ix++ {
			v := m.At(iy, ix)
			if math.IsNaN(v) {
				v = 0
			}
			row[ix] = v
		}
		rows[iy] = row
	}
	return rows
}

// wireCube renders a cube as nested arrays in its own axis order, NaN cells
// as zero.
func wireCube(c *grid.Cube) [][][]float64 {
	out := make([][][]float64, c.NX)
	for i := 0; i < c.NX; i++ {
		plane := make([][]float64, c.NY)
		for j := 0; j < c.NY; j++ {
			col := make([]float64, c.NZ)
			for k := 0; k < c.NZ; k++ {
				v := c.At(i, j, k)
				if math.IsNaN(v) {
					v = 0
				}
				col[k] = v
			}
			plane[j] = col
		}
		out[i] = plane
	}
	return out
}

func cubeFromWire(vals [][][]float64) (*grid.Cube, error) {
	if len(vals) == 0 || len(vals[0]) == 0 || len(vals[0][0]) == 0 {
		return nil, fmt.Errorf("empty volume")
	}
	n1, n2, n3 := len(vals), len(vals[0]), len(vals[0][0])
	c := grid.NewCube(n1, n2, n3)
	for i, plane := range vals {
		if len(plane) != n2 {
			return nil, fmt.Errorf("ragged volume: plane %d has %d rows, want %d", i, len(plane), n2)
		}
		for j, col := range plane {
			if len(col) != n3 {
				return nil, fmt.Errorf("ragged volume: column (%d,%d) has %d values, want %d", i, j, len(col), n3)
			}
			for k, v := range col {
				c.Set(i, j, k, v)
			}
		}
	}
	return c, nil
}
