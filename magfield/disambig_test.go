package magfield

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/heliodata/sunbox/frame"
	"github.com/heliodata/sunbox/grid"
	"github.com/heliodata/sunbox/internal/monitoring"
)

func testMapping() grid.Mapping {
	return grid.Mapping{
		CRPix1: 1.5, CRPix2: 1.5,
		CRVal1: 0, CRVal2: 0,
		CDelt1: 0.5, CDelt2: 0.5,
		CType1: grid.CTypeHelioprojectiveLon,
		CType2: grid.CTypeHelioprojectiveLat,
		CUnit1: "arcsec", CUnit2: "arcsec",
		Time: time.Date(2024, time.May, 9, 17, 12, 0, 0, time.UTC),
	}
}

// mapOf builds a co-registered grid from row-major values.
func mapOf(t *testing.T, ny, nx int, values ...float64) *grid.Map {
	t.Helper()
	if len(values) != ny*nx {
		t.Fatalf("mapOf: %d values for %dx%d", len(values), ny, nx)
	}
	m := grid.New(ny, nx, testMapping(), grid.Meta{
		Observer: frame.Observer{LatDeg: 5.1, DistanceMm: 149597.8707},
		Quantity: "azimuth",
		Unit:     "deg",
	})
	copy(m.Data, values)
	return m
}

func TestDisambiguateScenario(t *testing.T) {
	azimuth := mapOf(t, 2, 2, 0, 90, 180, 270)
	code := mapOf(t, 2, 2, 0, 1, 2, 3)

	out, err := Disambiguate(azimuth, code, MethodPotentialAcute)
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	want := []float64{0, 270, 180, 90}
	for i, w := range want {
		if out.Data[i] != w {
			t.Errorf("pixel %d = %g, want %g", i, out.Data[i], w)
		}
	}
	// Inputs are immutable values.
	if azimuth.Data[1] != 90 {
		t.Error("input azimuth was modified")
	}
}

func TestDisambiguateOutputRange(t *testing.T) {
	azimuth := mapOf(t, 2, 3, -90, 720, 359.5, 180, 0.25, -0.25)
	code := mapOf(t, 2, 3, 1, 1, 0, 0, 1, 0)
	for _, method := range []Method{MethodPotentialAcute, MethodRandom, MethodRadialAcute} {
		out, err := Disambiguate(azimuth, code, method)
		if err != nil {
			t.Fatalf("method %s: %v", method, err)
		}
		for i, v := range out.Data {
			if v < 0 || v >= 360 {
				t.Errorf("method %s pixel %d = %g outside [0,360)", method, i, v)
			}
		}
	}
}

func TestDisambiguateAllZeroCodes(t *testing.T) {
	azimuth := mapOf(t, 2, 2, -90, 10, 350, 720)
	code := mapOf(t, 2, 2, 0, 0, 0, 0)
	for _, method := range []Method{MethodPotentialAcute, MethodRandom, MethodRadialAcute} {
		out, err := Disambiguate(azimuth, code, method)
		if err != nil {
			t.Fatalf("method %s: %v", method, err)
		}
		want := []float64{270, 10, 350, 0}
		for i, w := range want {
			if out.Data[i] != w {
				t.Errorf("method %s pixel %d = %g, want %g (mod-360 of input)", method, i, out.Data[i], w)
			}
		}
	}
}

func TestDisambiguateSelectedBitFlipsEverywhere(t *testing.T) {
	azimuth := mapOf(t, 2, 2, 0, 90, 180, 350)
	want := []float64{180, 270, 0, 170}
	for _, method := range []Method{MethodPotentialAcute, MethodRandom, MethodRadialAcute} {
		bit := float64(int(1) << int(method))
		code := mapOf(t, 2, 2, bit, bit, bit, bit)
		out, err := Disambiguate(azimuth, code, method)
		if err != nil {
			t.Fatalf("method %s: %v", method, err)
		}
		for i, w := range want {
			if out.Data[i] != w {
				t.Errorf("method %s pixel %d = %g, want %g", method, i, out.Data[i], w)
			}
		}
	}
}

func TestDisambiguateIdempotentUnderNoOpCodes(t *testing.T) {
	azimuth := mapOf(t, 2, 2, 15, 195, 345, 80)
	bitSet := mapOf(t, 2, 2, 4, 4, 4, 4)
	once, err := Disambiguate(azimuth, bitSet, MethodRadialAcute)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	noOp := mapOf(t, 2, 2, 0, 0, 0, 0)
	twice, err := Disambiguate(once, noOp, MethodRadialAcute)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	for i := range once.Data {
		if once.Data[i] != twice.Data[i] {
			t.Errorf("pixel %d changed under no-op codes: %g -> %g", i, once.Data[i], twice.Data[i])
		}
	}
}

func TestDisambiguateCodeTruncation(t *testing.T) {
	azimuth := mapOf(t, 1, 3, 10, 10, 10)
	// 1.9 truncates to 1 (flip under bit 0), 0.9 to 0, NaN flips nothing.
	code := mapOf(t, 1, 3, 1.9, 0.9, math.NaN())
	out, err := Disambiguate(azimuth, code, MethodPotentialAcute)
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	want := []float64{190, 10, 10}
	for i, w := range want {
		if out.Data[i] != w {
			t.Errorf("pixel %d = %g, want %g", i, out.Data[i], w)
		}
	}
}

func TestDisambiguateNaNAzimuth(t *testing.T) {
	azimuth := mapOf(t, 1, 2, math.NaN(), 45)
	code := mapOf(t, 1, 2, 1, 1)
	out, err := Disambiguate(azimuth, code, MethodPotentialAcute)
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if !math.IsNaN(out.Data[0]) {
		t.Errorf("NaN azimuth became %g", out.Data[0])
	}
	if out.Data[1] != 225 {
		t.Errorf("finite neighbor = %g, want 225", out.Data[1])
	}
}

func TestDisambiguateShapeMismatch(t *testing.T) {
	azimuth := mapOf(t, 2, 2, 0, 0, 0, 0)
	code := mapOf(t, 1, 4, 0, 0, 0, 0)
	_, err := Disambiguate(azimuth, code, MethodRadialAcute)
	if !errors.Is(err, grid.ErrShapeMismatch) {
		t.Fatalf("error = %v, want ErrShapeMismatch", err)
	}
}

func TestDisambiguateInvalidMethodClamps(t *testing.T) {
	defer monitoring.SetLogger(nil)
	var notices []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		notices = append(notices, fmt.Sprintf(format, v...))
	})

	azimuth := mapOf(t, 1, 2, 10, 20)
	code := mapOf(t, 1, 2, 4, 0) // bit 2 set on the first pixel only

	for _, bad := range []Method{-1, 3, 99} {
		notices = nil
		out, err := Disambiguate(azimuth, code, bad)
		if err != nil {
			t.Fatalf("method %d: %v", bad, err)
		}
		if out.Data[0] != 190 || out.Data[1] != 20 {
			t.Errorf("method %d output = %v, want radial-acute behavior [190 20]", bad, out.Data)
		}
		if len(notices) != 1 || !strings.Contains(notices[0], "radial-acute") {
			t.Errorf("method %d notices = %v, want one clamp notice", bad, notices)
		}
	}
}

func TestDisambiguateCarriesMapping(t *testing.T) {
	azimuth := mapOf(t, 2, 2, 0, 90, 180, 270)
	code := mapOf(t, 2, 2, 0, 0, 0, 0)
	out, err := Disambiguate(azimuth, code, MethodRadialAcute)
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if !out.Mapping.Equal(azimuth.Mapping) {
		t.Error("output mapping differs from input")
	}
	if out.Meta != azimuth.Meta {
		t.Error("output meta differs from input")
	}
}
