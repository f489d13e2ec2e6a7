package solverclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heliodata/sunbox/box"
	"github.com/heliodata/sunbox/grid"
	"github.com/heliodata/sunbox/magfield"
)

func testMap(ny, nx int, fill func(iy, ix int) float64) *grid.Map {
	m := grid.New(ny, nx, grid.Mapping{
		CRPix1: 1, CRPix2: 1, CDelt1: 1, CDelt2: 1,
		CType1: grid.CTypeHelioprojectiveLon, CType2: grid.CTypeHelioprojectiveLat,
		CUnit1: "arcsec", CUnit2: "arcsec",
	}, grid.Meta{Quantity: "bz", Unit: "G"})
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			m.Set(iy, ix, fill(iy, ix))
		}
	}
	return m
}

func testCube(nx, ny, nz int, fill func(ix, iy, iz int) float64) *grid.Cube {
	c := grid.NewCube(nx, ny, nz)
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				c.Set(ix, iy, iz, fill(ix, iy, iz))
			}
		}
	}
	return c
}

// serviceArray builds a (y, x, z)-ordered nested array the way the solver
// service emits volumes, with fill indexed in box axes.
func serviceArray(nx, ny, nz int, fill func(ix, iy, iz int) float64) [][][]float64 {
	out := make([][][]float64, ny)
	for iy := range out {
		plane := make([][]float64, nx)
		for ix := range plane {
			col := make([]float64, nz)
			for iz := range col {
				col[iz] = fill(ix, iy, iz)
			}
			plane[ix] = col
		}
		out[iy] = plane
	}
	return out
}

func serviceVolumeJSON(t *testing.T, nx, ny, nz int, base float64) string {
	t.Helper()
	resp := volumeResponse{
		Bx: serviceArray(nx, ny, nz, func(ix, iy, iz int) float64 {
			return base + float64(100*ix+10*iy+iz)
		}),
		By: serviceArray(nx, ny, nz, func(ix, iy, iz int) float64 {
			return base + 1000 + float64(100*ix+10*iy+iz)
		}),
		Bz: serviceArray(nx, ny, nz, func(ix, iy, iz int) float64 {
			return base + 2000 + float64(100*ix+10*iy+iz)
		}),
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshaling service volume: %v", err)
	}
	return string(data)
}

func TestNewDefaults(t *testing.T) {
	c := New("http://solver.example:8123/")
	if c.BaseURL != "http://solver.example:8123" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", c.BaseURL)
	}
	if c.HTTPClient == nil {
		t.Error("default HTTPClient is nil")
	}
	if !strings.HasPrefix(c.UserAgent, "sunbox/") {
		t.Errorf("UserAgent = %q, want sunbox/ prefix", c.UserAgent)
	}

	mock := NewMockHTTPClient()
	c = New("http://solver.example", WithHTTPClient(mock), WithUserAgent("probe/1"))
	if c.HTTPClient != HTTPClient(mock) {
		t.Error("WithHTTPClient not applied")
	}
	if c.UserAgent != "probe/1" {
		t.Errorf("UserAgent = %q, want probe/1", c.UserAgent)
	}
}

func TestPotentialRequestEncoding(t *testing.T) {
	const nx, ny, nz = 3, 2, 4
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, serviceVolumeJSON(t, nx, ny, nz, 0))
	c := New("http://solver.example", WithHTTPClient(mock), WithUserAgent("probe/1"))

	bottom := testMap(ny, nx, func(iy, ix int) float64 {
		return float64(10*iy + ix)
	})
	bottom.Set(1, 2, math.NaN())

	if _, err := c.Potential(context.Background(), bottom, nz); err != nil {
		t.Fatalf("Potential failed: %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if req.URL.String() != "http://solver.example/v1/potential" {
		t.Errorf("url = %s, want http://solver.example/v1/potential", req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if ua := req.Header.Get("User-Agent"); ua != "probe/1" {
		t.Errorf("user agent = %q, want probe/1", ua)
	}

	var sent potentialRequest
	if err := json.NewDecoder(req.Body).Decode(&sent); err != nil {
		t.Fatalf("decoding sent body: %v", err)
	}
	if sent.NZ != nz {
		t.Errorf("sent nz = %d, want %d", sent.NZ, nz)
	}
	if sent.Alpha != 0 {
		t.Errorf("sent alpha = %v, want 0", sent.Alpha)
	}
	if len(sent.Bz) != ny || len(sent.Bz[0]) != nx {
		t.Fatalf("sent bz is %dx%d, want %dx%d", len(sent.Bz), len(sent.Bz[0]), ny, nx)
	}
	if sent.Bz[0][1] != 1 || sent.Bz[1][0] != 10 {
		t.Errorf("sent bz rows not in (y, x) order: %v", sent.Bz)
	}
	if sent.Bz[1][2] != 0 {
		t.Errorf("NaN cell sent as %v, want 0", sent.Bz[1][2])
	}
}

func TestPotentialRoundTrip(t *testing.T) {
	const nx, ny, nz = 3, 2, 4
	respJSON := serviceVolumeJSON(t, nx, ny, nz, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/potential" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(respJSON))
	}))
	defer srv.Close()

	c := New(srv.URL)
	bottom := testMap(ny, nx, func(iy, ix int) float64 { return 1 })
	v, err := c.Potential(context.Background(), bottom, nz)
	if err != nil {
		t.Fatalf("Potential failed: %v", err)
	}

	gotNX, gotNY, gotNZ := v.Shape()
	if gotNX != nx || gotNY != ny || gotNZ != nz {
		t.Fatalf("volume shape (%d,%d,%d), want (%d,%d,%d)", gotNX, gotNY, gotNZ, nx, ny, nz)
	}

	// Box bx must carry the service by values (and vice versa) with the
	// axis order restored.
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				base := float64(100*ix + 10*iy + iz)
				if got := v.Bx.At(ix, iy, iz); got != 1000+base {
					t.Fatalf("bx(%d,%d,%d) = %v, want %v", ix, iy, iz, got, 1000+base)
				}
				if got := v.By.At(ix, iy, iz); got != base {
					t.Fatalf("by(%d,%d,%d) = %v, want %v", ix, iy, iz, got, base)
				}
				if got := v.Bz.At(ix, iy, iz); got != 2000+base {
					t.Fatalf("bz(%d,%d,%d) = %v, want %v", ix, iy, iz, got, 2000+base)
				}
			}
		}
	}
}

func TestNLFFFStampsBoundaryAndSwapsComponents(t *testing.T) {
	const nx, ny, nz = 3, 2, 4

	seedBx := testCube(nx, ny, nz, func(ix, iy, iz int) float64 {
		return 1000 + float64(100*ix+10*iy+iz)
	})
	seedBy := testCube(nx, ny, nz, func(ix, iy, iz int) float64 {
		return 2000 + float64(100*ix+10*iy+iz)
	})
	seedBz := testCube(nx, ny, nz, func(ix, iy, iz int) float64 {
		return 3000 + float64(100*ix+10*iy+iz)
	})
	seed, err := box.NewVectorCube(seedBx, seedBy, seedBz)
	if err != nil {
		t.Fatalf("NewVectorCube failed: %v", err)
	}

	bnd := &magfield.Boundary{
		Bx: testMap(ny, nx, func(iy, ix int) float64 { return 10 + float64(3*iy+ix) }),
		By: testMap(ny, nx, func(iy, ix int) float64 { return 20 + float64(3*iy+ix) }),
		Bz: testMap(ny, nx, func(iy, ix int) float64 { return 30 + float64(3*iy+ix) }),
	}
	bnd.Bx.Set(0, 1, math.NaN()) // off-field cell goes to the service as 0

	respJSON := serviceVolumeJSON(t, nx, ny, nz, 5)
	var sentBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/nlfff" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		sentBody = body
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(respJSON))
	}))
	defer srv.Close()

	c := New(srv.URL)
	v, err := c.NLFFF(context.Background(), seed, bnd)
	if err != nil {
		t.Fatalf("NLFFF failed: %v", err)
	}

	var sent nlfffRequest
	if err := json.Unmarshal(sentBody, &sent); err != nil {
		t.Fatalf("decoding sent body: %v", err)
	}
	if len(sent.Bx) != ny || len(sent.Bx[0]) != nx || len(sent.Bx[0][0]) != nz {
		t.Fatalf("sent bx shape (%d,%d,%d), want (%d,%d,%d) in (y, x, z) order",
			len(sent.Bx), len(sent.Bx[0]), len(sent.Bx[0][0]), ny, nx, nz)
	}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			// Layer 0 carries the boundary, NaN zero-filled. Service bx is
			// the boundary bx even though the volume came from the box by.
			wantBx := 10 + float64(3*iy+ix)
			if iy == 0 && ix == 1 {
				wantBx = 0
			}
			if got := sent.Bx[iy][ix][0]; got != wantBx {
				t.Errorf("sent bx[%d][%d][0] = %v, want %v", iy, ix, got, wantBx)
			}
			if got := sent.By[iy][ix][0]; got != 20+float64(3*iy+ix) {
				t.Errorf("sent by[%d][%d][0] = %v, want %v", iy, ix, got, 20+float64(3*iy+ix))
			}
			if got := sent.Bz[iy][ix][0]; got != 30+float64(3*iy+ix) {
				t.Errorf("sent bz[%d][%d][0] = %v, want %v", iy, ix, got, 30+float64(3*iy+ix))
			}
			// Layers above carry the seed, component-swapped.
			for iz := 1; iz < nz; iz++ {
				base := float64(100*ix + 10*iy + iz)
				if got := sent.Bx[iy][ix][iz]; got != 2000+base {
					t.Fatalf("sent bx[%d][%d][%d] = %v, want seed by %v", iy, ix, iz, got, 2000+base)
				}
				if got := sent.By[iy][ix][iz]; got != 1000+base {
					t.Fatalf("sent by[%d][%d][%d] = %v, want seed bx %v", iy, ix, iz, got, 1000+base)
				}
				if got := sent.Bz[iy][ix][iz]; got != 3000+base {
					t.Fatalf("sent bz[%d][%d][%d] = %v, want seed bz %v", iy, ix, iz, got, 3000+base)
				}
			}
		}
	}

	// The seed itself is untouched.
	if seed.By.At(1, 0, 0) != 2000+100 {
		t.Errorf("seed by mutated: %v", seed.By.At(1, 0, 0))
	}

	// Response decoded with the swap undone.
	if got := v.Bx.At(2, 1, 3); got != 5+1000+float64(100*2+10*1+3) {
		t.Errorf("result bx(2,1,3) = %v", got)
	}
	if got := v.By.At(2, 1, 3); got != 5+float64(100*2+10*1+3) {
		t.Errorf("result by(2,1,3) = %v", got)
	}
}

func TestNLFFFBoundaryShapeMismatch(t *testing.T) {
	seed, err := box.NewVectorCube(grid.NewCube(3, 2, 4), grid.NewCube(3, 2, 4), grid.NewCube(3, 2, 4))
	if err != nil {
		t.Fatalf("NewVectorCube failed: %v", err)
	}
	bnd := &magfield.Boundary{
		Bx: testMap(5, 5, func(iy, ix int) float64 { return 0 }),
		By: testMap(5, 5, func(iy, ix int) float64 { return 0 }),
		Bz: testMap(5, 5, func(iy, ix int) float64 { return 0 }),
	}
	c := New("http://solver.example", WithHTTPClient(NewMockHTTPClient()))
	_, err = c.NLFFF(context.Background(), seed, bnd)
	if !errors.Is(err, grid.ErrShapeMismatch) {
		t.Errorf("error = %v, want ErrShapeMismatch", err)
	}
}

func TestPotentialRejectsBadNZ(t *testing.T) {
	c := New("http://solver.example", WithHTTPClient(NewMockHTTPClient()))
	bottom := testMap(2, 2, func(iy, ix int) float64 { return 0 })
	if _, err := c.Potential(context.Background(), bottom, 0); err == nil {
		t.Error("Potential with nz=0 succeeded, want error")
	}
}

func TestSolverErrorStatus(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusInternalServerError, "solver blew up\n")
	c := New("http://solver.example", WithHTTPClient(mock))

	bottom := testMap(2, 2, func(iy, ix int) float64 { return 0 })
	_, err := c.Potential(context.Background(), bottom, 3)
	if err == nil {
		t.Fatal("Potential against failing solver succeeded")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error %q does not name the status", err)
	}
	if !strings.Contains(err.Error(), "solver blew up") {
		t.Errorf("error %q does not carry the body", err)
	}
}

func TestSolverTransportError(t *testing.T) {
	sentinel := errors.New("connection refused")
	mock := NewMockHTTPClient()
	mock.AddError(sentinel)
	c := New("http://solver.example", WithHTTPClient(mock))

	bottom := testMap(2, 2, func(iy, ix int) float64 { return 0 })
	_, err := c.Potential(context.Background(), bottom, 3)
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want wrapped transport error", err)
	}
}

func TestSolverBadJSON(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "{not json")
	c := New("http://solver.example", WithHTTPClient(mock))

	bottom := testMap(2, 2, func(iy, ix int) float64 { return 0 })
	if _, err := c.Potential(context.Background(), bottom, 3); err == nil {
		t.Error("Potential with undecodable response succeeded")
	}
}

func TestPotentialShapeMismatch(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, serviceVolumeJSON(t, 3, 2, 4, 0))
	c := New("http://solver.example", WithHTTPClient(mock))

	// 5 layers requested, 4 returned.
	bottom := testMap(2, 3, func(iy, ix int) float64 { return 0 })
	_, err := c.Potential(context.Background(), bottom, 5)
	if err == nil || !strings.Contains(err.Error(), "shape") {
		t.Errorf("error = %v, want shape mismatch", err)
	}
}

func TestPotentialContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL)
	bottom := testMap(2, 2, func(iy, ix int) float64 { return 0 })
	if _, err := c.Potential(ctx, bottom, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCubeFromWireRagged(t *testing.T) {
	ragged := [][][]float64{
		{{1, 2}, {3, 4}},
		{{5, 6}},
	}
	if _, err := cubeFromWire(ragged); err == nil {
		t.Error("ragged volume accepted")
	}
	short := [][][]float64{
		{{1, 2}, {3}},
	}
	if _, err := cubeFromWire(short); err == nil {
		t.Error("short column accepted")
	}
	if _, err := cubeFromWire(nil); err == nil {
		t.Error("empty volume accepted")
	}
}
