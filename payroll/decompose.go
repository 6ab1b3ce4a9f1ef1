/*
decompose.go - Shift decomposition engine

PURPOSE:
  Splits a shift into same-day pieces, applies the reporting period's
  inclusion policy and allocates each piece's minutes to rate buckets.

ALGORITHM:
  1. Midnight split: a shift whose start and end dates differ becomes
       [start, midnight after start) and [midnight of end's date, end)
  2. Inclusion: the first piece is kept only if it starts at or after the
     period start; the second only if it ends at or before the period end.
     This is an inclusion test, not a clip to the period boundaries.
  3. Allocation (AllocateShift), per piece:
       a. every general bonus:   overlap of the piece with the daily window
       b. every weekday bonus whose days contain the piece's start weekday:
          same overlap
       c. the whole piece at the base rate
     Only strictly positive overlaps produce entries.

EXAMPLE:
  base 100/h, night bonus 00:00-06:00 +30/h, shift Mon 22:00 - Tue 02:00

  Split:   Mon 22:00-24:00, Tue 00:00-02:00
  Entries: {2h @100 base}, {2h @30 night}, {2h @100 base}
  Earned:  2*100 + 2*30 + 2*100 = 460

SEE ALSO:
  - aggregate.go: Sums the entries
  - bonus.go: BonusRule.Overlap
*/
package payroll

// SplitAtMidnight returns the shift unchanged when it starts and ends on the
// same date, otherwise the two pieces on either side of the date boundary.
// Shifts crossing more than one midnight are rejected by Shift.Validate; if
// one reaches here anyway the days in between are not represented.
func SplitAtMidnight(s Shift) []Shift {
	if SameDate(s.Start, s.End) {
		return []Shift{s}
	}
	first := Shift{ID: s.ID, Start: s.Start, End: StartOfDay(s.Start).AddDate(0, 0, 1)}
	second := Shift{ID: s.ID, Start: StartOfDay(s.End), End: s.End}
	return []Shift{first, second}
}

// Decompose turns one shift into rate entries for the given period.
func Decompose(s Shift, period ReportingPeriod, wage WageConfiguration) []Entry {
	pieces := SplitAtMidnight(s)
	if len(pieces) == 1 {
		// Same-day shifts come from the store's overlap query; anything
		// outside the period contributes nothing.
		if !period.Overlaps(s) {
			return nil
		}
		return AllocateShift(s, wage)
	}

	var entries []Entry
	first, second := pieces[0], pieces[1]
	if !first.Start.Before(period.Start) {
		entries = append(entries, AllocateShift(first, wage)...)
	}
	// A shift ending exactly at midnight leaves an empty second piece.
	if !second.End.After(period.End) && second.Duration() > 0 {
		entries = append(entries, AllocateShift(second, wage)...)
	}
	return entries
}

// AllocateShift computes the bonus and base entries for a piece that lies
// within a single calendar date (its end may be the following midnight).
func AllocateShift(piece Shift, wage WageConfiguration) []Entry {
	day := StartOfDay(piece.Start)
	from := TimeOfDay(piece.Start.Sub(day))
	to := TimeOfDay(piece.End.Sub(day))

	entries := make([]Entry, 0, len(wage.GeneralBonuses)+len(wage.WeekdayBonuses)+1)

	for _, bonus := range wage.GeneralBonuses {
		if d := bonus.Overlap(from, to); d > 0 {
			entries = append(entries, Entry{Duration: d, RatePerHour: bonus.RatePerHour, Kind: EntryGeneral})
		}
	}

	weekday := piece.Start.Weekday()
	for _, bonus := range wage.WeekdayBonuses {
		if !bonus.AppliesOn(weekday) {
			continue
		}
		if d := bonus.Overlap(from, to); d > 0 {
			entries = append(entries, Entry{Duration: d, RatePerHour: bonus.RatePerHour, Kind: EntryWeekday})
		}
	}

	return append(entries, Entry{Duration: piece.Duration(), RatePerHour: wage.BaseRatePerHour, Kind: EntryBase})
}
