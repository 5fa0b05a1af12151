package comfort

// Zone is a comfort classification of the dew point. Zones are ordered from
// driest to most humid so they can be compared.
type Zone int

const (
	ZoneVeryDry Zone = iota
	ZoneDry
	ZoneVeryComfortable
	ZoneComfortable
	ZoneSlightlyHumid
	ZoneMuggy
	ZoneOppressive
)

// Band boundaries in °F dew point. Each band includes its lower bound.
const (
	dewPointOppressive      = 65
	dewPointMuggy           = 60
	dewPointSlightlyHumid   = 55
	dewPointComfortable     = 45
	dewPointVeryComfortable = 40
	dewPointDry             = 30
)

// Classify maps a dew point to its comfort zone. It is total: values far
// outside the plausible psychrometric range land in the open-ended bands.
func Classify(dewPointF float64) Zone {
	switch {
	case dewPointF >= dewPointOppressive:
		return ZoneOppressive
	case dewPointF >= dewPointMuggy:
		return ZoneMuggy
	case dewPointF >= dewPointSlightlyHumid:
		return ZoneSlightlyHumid
	case dewPointF >= dewPointComfortable:
		return ZoneComfortable
	case dewPointF >= dewPointVeryComfortable:
		return ZoneVeryComfortable
	case dewPointF >= dewPointDry:
		return ZoneDry
	default:
		return ZoneVeryDry
	}
}

func (z Zone) String() string {
	switch z {
	case ZoneOppressive:
		return "Oppressive"
	case ZoneMuggy:
		return "Muggy"
	case ZoneSlightlyHumid:
		return "Slightly Humid"
	case ZoneComfortable:
		return "Comfortable"
	case ZoneVeryComfortable:
		return "Very Comfortable"
	case ZoneDry:
		return "Dry"
	default:
		return "Very Dry"
	}
}
