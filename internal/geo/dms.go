package geo

import "fmt"

// Direction is the hemisphere letter of a DMS coordinate.
type Direction string

const (
	North Direction = "N"
	South Direction = "S"
	East  Direction = "E"
	West  Direction = "W"
)

// DMS is a degrees-minutes-seconds coordinate with a hemisphere direction.
// Degree bounds (0-90 latitude, 0-180 longitude) are not enforced by the
// type; callers validate at their input boundaries.
type DMS struct {
	Degrees   int       `json:"degrees"`
	Minutes   int       `json:"minutes"`
	Seconds   int       `json:"seconds"`
	Direction Direction `json:"direction"`
}

// Solution is the secret DMS coordinate pair of an input-type checkpoint.
type Solution struct {
	Latitude  DMS `json:"latitude"`
	Longitude DMS `json:"longitude"`
}

func (d DMS) String() string {
	return fmt.Sprintf("%d°%d'%d\"%s", d.Degrees, d.Minutes, d.Seconds, d.Direction)
}

// DecimalToDMS converts decimal degrees into DMS. Seconds are rounded, which
// can produce 60 without carrying into minutes; stored solutions were
// authored against this behavior, so it is kept as-is.
func DecimalToDMS(decimal float64, isLatitude bool) DMS {
	absolute := decimal
	if absolute < 0 {
		absolute = -absolute
	}
	degrees := int(absolute)
	minutesFloat := (absolute - float64(degrees)) * 60
	minutes := int(minutesFloat)
	seconds := int(minutesFloat*60 - float64(minutes)*60 + 0.5)

	var direction Direction
	if isLatitude {
		direction = North
		if decimal < 0 {
			direction = South
		}
	} else {
		direction = East
		if decimal < 0 {
			direction = West
		}
	}

	return DMS{Degrees: degrees, Minutes: minutes, Seconds: seconds, Direction: direction}
}

// DMSToDecimal converts a DMS coordinate to decimal degrees, negative for
// the southern and western hemispheres.
func DMSToDecimal(degrees, minutes, seconds int, direction Direction) float64 {
	decimal := float64(degrees) + float64(minutes)/60 + float64(seconds)/3600
	if direction == South || direction == West {
		decimal = -decimal
	}
	return decimal
}

// Decimal is DMSToDecimal on the receiver.
func (d DMS) Decimal() float64 {
	return DMSToDecimal(d.Degrees, d.Minutes, d.Seconds, d.Direction)
}
