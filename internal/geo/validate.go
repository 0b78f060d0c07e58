package geo

// DefaultToleranceSeconds is the seconds tolerance applied when comparing a
// player-entered coordinate against a secret solution.
const DefaultToleranceSeconds = 1

// Result describes the outcome of validating a coordinate pair.
type Result struct {
	IsValid          bool   `json:"isValid"`
	LatitudeCorrect  bool   `json:"latitudeCorrect"`
	LongitudeCorrect bool   `json:"longitudeCorrect"`
	Message          string `json:"message"`
}

// CompareDMS reports whether input matches secret. Direction, degrees and
// minutes must match exactly; seconds match within ±toleranceSeconds
// inclusive. The tolerance never borrows across the minute boundary (0'0"
// vs 1'59" is a mismatch even though they are a second apart in true angle).
// Games were authored around this coarse match, so it must stay exact.
func CompareDMS(input, secret DMS, toleranceSeconds int) bool {
	if input.Direction != secret.Direction {
		return false
	}
	if input.Degrees != secret.Degrees {
		return false
	}
	if input.Minutes != secret.Minutes {
		return false
	}

	diff := input.Seconds - secret.Seconds
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceSeconds
}

// ValidateInput checks a player-entered latitude/longitude pair against the
// secret solution. Both axes are checked independently; the message names
// the wrong axis when exactly one is off.
func ValidateInput(inputLat, inputLon DMS, solution Solution, toleranceSeconds int) Result {
	latCorrect := CompareDMS(inputLat, solution.Latitude, toleranceSeconds)
	lonCorrect := CompareDMS(inputLon, solution.Longitude, toleranceSeconds)

	res := Result{
		IsValid:          latCorrect && lonCorrect,
		LatitudeCorrect:  latCorrect,
		LongitudeCorrect: lonCorrect,
	}

	switch {
	case res.IsValid:
		res.Message = "Correct! The coordinates match."
	case !latCorrect && !lonCorrect:
		res.Message = "Both coordinates are incorrect. Try again."
	case !latCorrect:
		res.Message = "The latitude is incorrect. The longitude is right."
	default:
		res.Message = "The longitude is incorrect. The latitude is right."
	}

	return res
}

// DefaultFakeOffset shifts a decoy solution roughly 100 m from the real one.
const DefaultFakeOffset = 0.001

// FakeSolution builds a decoy solution by shifting the real one by
// offsetDegrees on both axes. The offset is always positive and fixed; the
// decoy looks plausible but is not randomized.
func FakeSolution(real Solution, offsetDegrees float64) Solution {
	lat := real.Latitude.Decimal() + offsetDegrees
	lon := real.Longitude.Decimal() + offsetDegrees

	return Solution{
		Latitude:  DecimalToDMS(lat, true),
		Longitude: DecimalToDMS(lon, false),
	}
}
