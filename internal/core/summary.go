package core

// PeriodSummary aggregates expected versus collected revenue for one
// billing period.
type PeriodSummary struct {
	Period      Period
	Expected    Money
	Collected   Money
	Unpaid      Money
	PaidCount   int
	UnpaidCount int
}

// SummarizePeriod sums billed totals across rooms for one period. Only
// rooms that have a reading for the period participate; a room with no
// record contributes nothing, not its no-reading baseline. The function
// is pure: callers recompute whenever rooms, readings or rates change.
func SummarizePeriod(rooms []Room, readings []Reading, rates GlobalRates) PeriodSummary {
	byRoom := make(map[string]*Reading, len(readings))
	var period Period
	for i := range readings {
		byRoom[readings[i].RoomID] = &readings[i]
		period = readings[i].Period
	}

	s := PeriodSummary{Period: period}
	for _, room := range rooms {
		reading, ok := byRoom[room.ID]
		if !ok {
			continue
		}
		total := RoomTotal(room, reading, rates)
		s.Expected = s.Expected.Add(total)
		if reading.Paid {
			s.Collected = s.Collected.Add(total)
			s.PaidCount++
		} else {
			s.UnpaidCount++
		}
	}
	s.Unpaid = s.Expected.Sub(s.Collected)
	return s
}
