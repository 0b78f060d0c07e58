package play

// Zone tracks proximity to the active checkpoint as an explicit state
// machine. The Entering state exists so that crossing into the radius is a
// distinct, observable transition: a continuous stream of in-radius fixes
// triggers exactly one entry.
type Zone int

const (
	ZoneOutside Zone = iota
	ZoneEntering
	ZoneInside
)

func (z Zone) String() string {
	switch z {
	case ZoneEntering:
		return "entering"
	case ZoneInside:
		return "inside"
	default:
		return "outside"
	}
}

// Next advances the zone for one fix. entered is true only on the
// outside-to-entering transition.
func (z Zone) Next(inRadius bool) (next Zone, entered bool) {
	if !inRadius {
		return ZoneOutside, false
	}
	switch z {
	case ZoneOutside:
		return ZoneEntering, true
	default:
		return ZoneInside, false
	}
}
