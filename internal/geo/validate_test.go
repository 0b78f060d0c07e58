package geo

import (
	"strings"
	"testing"
)

var testSolution = Solution{
	Latitude:  DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: North},
	Longitude: DMS{Degrees: 14, Minutes: 25, Seconds: 30, Direction: East},
}

func TestCompareDMSIdentical(t *testing.T) {
	c := DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: North}
	if !CompareDMS(c, c, 0) {
		t.Error("expected identical coordinates to match at zero tolerance")
	}
}

func TestCompareDMSDirectionMismatch(t *testing.T) {
	a := DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: North}
	b := DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: South}
	// Direction mismatch is rejected no matter how generous the tolerance.
	if CompareDMS(a, b, 10000) {
		t.Error("expected direction mismatch to fail")
	}
}

func TestCompareDMSDegreesExact(t *testing.T) {
	a := DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: North}
	b := DMS{Degrees: 51, Minutes: 5, Seconds: 10, Direction: North}
	if CompareDMS(a, b, 1) {
		t.Error("expected degree mismatch to fail")
	}
}

func TestCompareDMSMinutesExact(t *testing.T) {
	a := DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: North}
	b := DMS{Degrees: 50, Minutes: 6, Seconds: 10, Direction: North}
	if CompareDMS(a, b, 1) {
		t.Error("expected minute mismatch to fail")
	}
}

func TestCompareDMSSecondsTolerance(t *testing.T) {
	secret := DMS{Degrees: 50, Minutes: 5, Seconds: 10, Direction: North}

	within := DMS{Degrees: 50, Minutes: 5, Seconds: 11, Direction: North}
	if !CompareDMS(within, secret, 1) {
		t.Error("expected 1 second off to pass at tolerance 1")
	}

	outside := DMS{Degrees: 50, Minutes: 5, Seconds: 12, Direction: North}
	if CompareDMS(outside, secret, 1) {
		t.Error("expected 2 seconds off to fail at tolerance 1")
	}
}

// The match is deliberately coarse: no borrow across the minute boundary.
func TestCompareDMSNoMinuteBorrow(t *testing.T) {
	secret := DMS{Degrees: 50, Minutes: 0, Seconds: 0, Direction: North}
	input := DMS{Degrees: 50, Minutes: 1, Seconds: 59, Direction: North}
	if CompareDMS(input, secret, 1) {
		t.Error("expected adjacent-minute input to fail even though 1s apart in angle")
	}
}

func TestValidateInputCorrect(t *testing.T) {
	res := ValidateInput(testSolution.Latitude, testSolution.Longitude, testSolution, DefaultToleranceSeconds)

	if !res.IsValid || !res.LatitudeCorrect || !res.LongitudeCorrect {
		t.Errorf("expected a fully valid result, got %+v", res)
	}
	if !strings.Contains(res.Message, "Correct") {
		t.Errorf("expected an affirmative message, got %q", res.Message)
	}
}

func TestValidateInputWrongLatitude(t *testing.T) {
	wrongLat := DMS{Degrees: 51, Minutes: 5, Seconds: 10, Direction: North}

	res := ValidateInput(wrongLat, testSolution.Longitude, testSolution, DefaultToleranceSeconds)

	if res.IsValid {
		t.Error("expected invalid result")
	}
	if res.LatitudeCorrect {
		t.Error("expected latitude to be wrong")
	}
	if !res.LongitudeCorrect {
		t.Error("expected longitude to be right")
	}
	if !strings.Contains(res.Message, "latitude") {
		t.Errorf("expected message to name the latitude, got %q", res.Message)
	}
}

func TestValidateInputBothWrong(t *testing.T) {
	wrongLat := DMS{Degrees: 51, Minutes: 5, Seconds: 10, Direction: North}
	wrongLon := DMS{Degrees: 15, Minutes: 25, Seconds: 30, Direction: East}

	res := ValidateInput(wrongLat, wrongLon, testSolution, DefaultToleranceSeconds)

	if res.IsValid || res.LatitudeCorrect || res.LongitudeCorrect {
		t.Errorf("expected everything wrong, got %+v", res)
	}
	if !strings.Contains(res.Message, "Both") {
		t.Errorf("expected the both-incorrect message, got %q", res.Message)
	}
}

func TestFakeSolutionDiffers(t *testing.T) {
	fake := FakeSolution(testSolution, DefaultFakeOffset)

	if fake == testSolution {
		t.Error("expected the decoy to differ from the real solution")
	}
	if CompareDMS(fake.Latitude, testSolution.Latitude, DefaultToleranceSeconds) &&
		CompareDMS(fake.Longitude, testSolution.Longitude, DefaultToleranceSeconds) {
		t.Error("expected the decoy to fail validation against the real solution")
	}
}

func TestFakeSolutionOffset(t *testing.T) {
	fake := FakeSolution(testSolution, DefaultFakeOffset)

	wantLat := testSolution.Latitude.Decimal() + DefaultFakeOffset
	gotLat := fake.Latitude.Decimal()
	if diff := gotLat - wantLat; diff > 1.0/3600 || diff < -1.0/3600 {
		t.Errorf("expected decoy latitude near %v, got %v", wantLat, gotLat)
	}
}
