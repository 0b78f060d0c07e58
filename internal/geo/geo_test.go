package geo

import (
	"math"
	"testing"
)

var (
	oldTownSquare    = Location{Latitude: 50.0875, Longitude: 14.4213}
	wenceslasSquare  = Location{Latitude: 50.0813, Longitude: 14.4283}
	farOutsidePrague = Location{Latitude: 50.1, Longitude: 14.5}
	nextToOldTownSqr = Location{Latitude: 50.0876, Longitude: 14.4214}
)

func TestDistance(t *testing.T) {
	d := Distance(oldTownSquare, wenceslasSquare)
	if d < 700 || d > 1000 {
		t.Errorf("expected roughly 800-900 m between the squares, got %.1f", d)
	}
}

func TestDistanceSamePoint(t *testing.T) {
	if d := Distance(oldTownSquare, oldTownSquare); d != 0 {
		t.Errorf("expected 0 for coincident points, got %v", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	ab := Distance(oldTownSquare, wenceslasSquare)
	ba := Distance(wenceslasSquare, oldTownSquare)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestWithinRadius(t *testing.T) {
	if !WithinRadius(oldTownSquare, nextToOldTownSqr, 20) {
		t.Error("expected point ~13 m away to be within 20 m")
	}
	if WithinRadius(oldTownSquare, farOutsidePrague, 10) {
		t.Error("expected far point to be outside 10 m")
	}
}

func TestBearing(t *testing.T) {
	north := Bearing(Location{Latitude: 50, Longitude: 14}, Location{Latitude: 51, Longitude: 14})
	if math.Abs(north) > 0.01 {
		t.Errorf("expected bearing 0 for due north, got %v", north)
	}

	east := Bearing(Location{Latitude: 50, Longitude: 14}, Location{Latitude: 50, Longitude: 15})
	if east < 89 || east > 91 {
		t.Errorf("expected bearing ~90 for due east, got %v", east)
	}

	b := Bearing(oldTownSquare, wenceslasSquare)
	if b < 0 || b >= 360 {
		t.Errorf("bearing out of range [0,360): %v", b)
	}
}

func TestDecimalToDMS(t *testing.T) {
	d := DecimalToDMS(50.0875, true)
	if d.Degrees != 50 {
		t.Errorf("expected 50 degrees, got %d", d.Degrees)
	}
	if d.Minutes != 5 {
		t.Errorf("expected 5 minutes, got %d", d.Minutes)
	}
	if d.Seconds < 14 || d.Seconds > 16 {
		t.Errorf("expected seconds near 15, got %d", d.Seconds)
	}
	if d.Direction != North {
		t.Errorf("expected N, got %s", d.Direction)
	}
}

func TestDecimalToDMSNegativeLongitude(t *testing.T) {
	d := DecimalToDMS(-14.4213, false)
	if d.Degrees != 14 {
		t.Errorf("expected 14 degrees, got %d", d.Degrees)
	}
	if d.Direction != West {
		t.Errorf("expected W, got %s", d.Direction)
	}
}

func TestDMSToDecimal(t *testing.T) {
	decimal := DMSToDecimal(50, 5, 15, North)
	if math.Abs(decimal-50.0875) > 0.005 {
		t.Errorf("expected ~50.0875, got %v", decimal)
	}

	if south := DMSToDecimal(50, 5, 15, South); south >= 0 {
		t.Errorf("expected negative for S, got %v", south)
	}
	if west := DMSToDecimal(14, 25, 17, West); west >= 0 {
		t.Errorf("expected negative for W, got %v", west)
	}
}

// Round-tripping through DMS loses at most the seconds quantization.
func TestDMSRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.5, 14.4213, 50.0875, 89.9999, -33.8568, -0.1275} {
		d := DecimalToDMS(v, true)
		got := d.Decimal()
		if math.Abs(got-v) > 1.0/3600 {
			t.Errorf("round trip of %v drifted to %v", v, got)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	if got := FormatDistance(15.4); got != "15 m" {
		t.Errorf("expected \"15 m\", got %q", got)
	}
	if got := FormatDistance(1234); got != "1.2 km" {
		t.Errorf("expected \"1.2 km\", got %q", got)
	}
}
