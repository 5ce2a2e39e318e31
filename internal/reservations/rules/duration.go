package rules

// DurationPolicy estimates how long a party occupies its tables.
type DurationPolicy struct {
	BaseMin          int
	PerExtraGuestMin int
	LateHour         int
	LateBonusMin     int
	MaxMin           int
}

func DefaultDurationPolicy() DurationPolicy {
	return DurationPolicy{
		BaseMin:          60,
		PerExtraGuestMin: 15,
		LateHour:         21,
		LateBonusMin:     30,
		MaxMin:           180,
	}
}

// Estimate returns the occupancy in minutes for partySize guests starting at
// startMin minutes after midnight. Guests beyond two add time; late sittings
// get a bonus; the result never exceeds MaxMin.
func (p DurationPolicy) Estimate(partySize, startMin int) int {
	d := p.BaseMin
	if extra := partySize - 2; extra > 0 {
		d += extra * p.PerExtraGuestMin
	}
	if startMin/60 >= p.LateHour {
		d += p.LateBonusMin
	}
	return min(d, p.MaxMin)
}

// EstimateAt is Estimate for an HH:MM start time.
func (p DurationPolicy) EstimateAt(partySize int, startTime string) (int, error) {
	startMin, err := ParseTime(startTime)
	if err != nil {
		return 0, err
	}
	return p.Estimate(partySize, startMin), nil
}
