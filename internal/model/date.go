package model

import (
	"fmt"
	"strconv"
	"time"
)

// Precision is the granularity at which a date is known.
type Precision string

const (
	PrecisionCentury Precision = "century"
	PrecisionDecade  Precision = "decade"
	PrecisionYear    Precision = "year"
	PrecisionMonth   Precision = "month"
	PrecisionDay     Precision = "day"
)

// Valid reports whether p is one of the five known precisions.
func (p Precision) Valid() bool {
	switch p {
	case PrecisionCentury, PrecisionDecade, PrecisionYear, PrecisionMonth, PrecisionDay:
		return true
	}
	return false
}

// Date is a calendar value of limited precision. Year is the proleptic
// year, negative for BCE. A century-precision date carries the year of
// the century boundary nearest zero on the BCE side (5th century BCE is
// -401) and the first year of the span on the CE side (19th century is
// 1800); a decade-precision date carries the decade's first (CE) or
// last (BCE) year. Month and Day are set only at the corresponding
// precisions. Certain is false when the source marked the value as
// doubtful.
type Date struct {
	Year      int       `json:"year"`
	Month     int       `json:"month,omitempty"`
	Day       int       `json:"day,omitempty"`
	Precision Precision `json:"precision"`
	Certain   bool      `json:"certain"`
}

// CenturyDate returns a certain century-precision date.
func CenturyDate(year int) Date {
	return Date{Year: year, Precision: PrecisionCentury, Certain: true}
}

// DecadeDate returns a certain decade-precision date.
func DecadeDate(year int) Date {
	return Date{Year: year, Precision: PrecisionDecade, Certain: true}
}

// YearDate returns a certain year-precision date.
func YearDate(year int) Date {
	return Date{Year: year, Precision: PrecisionYear, Certain: true}
}

// MonthDate returns a certain month-precision date.
func MonthDate(year, month int) Date {
	return Date{Year: year, Month: month, Precision: PrecisionMonth, Certain: true}
}

// DayDate returns a certain day-precision date.
func DayDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day, Precision: PrecisionDay, Certain: true}
}

// Uncertain returns a copy of the date marked as uncertain.
func (d Date) Uncertain() Date {
	d.Certain = false
	return d
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Precision == ""
}

// EarliestYear returns the first year the date can denote.
func (d Date) EarliestYear() int {
	switch d.Precision {
	case PrecisionCentury:
		if d.Year < 0 {
			return d.Year - 99
		}
		return d.Year
	case PrecisionDecade:
		if d.Year < 0 {
			return d.Year - 9
		}
		return d.Year
	default:
		return d.Year
	}
}

// LatestYear returns the last year the date can denote.
func (d Date) LatestYear() int {
	switch d.Precision {
	case PrecisionCentury:
		if d.Year < 0 {
			return d.Year
		}
		return d.Year + 99
	case PrecisionDecade:
		if d.Year < 0 {
			return d.Year
		}
		return d.Year + 9
	default:
		return d.Year
	}
}

// earliest returns the first calendar day the date can denote.
func (d Date) earliest() (int, int, int) {
	switch d.Precision {
	case PrecisionMonth:
		return d.Year, d.Month, 1
	case PrecisionDay:
		return d.Year, d.Month, d.Day
	default:
		return d.EarliestYear(), 1, 1
	}
}

// latest returns the last calendar day the date can denote.
func (d Date) latest() (int, int, int) {
	switch d.Precision {
	case PrecisionMonth:
		return d.Year, d.Month, DaysIn(d.Year, d.Month)
	case PrecisionDay:
		return d.Year, d.Month, d.Day
	default:
		y := d.LatestYear()
		return y, 12, 31
	}
}

// Before reports whether every day d can denote falls strictly before
// every day o can denote. A century is treated as its whole span, not
// its first year, so the 19th century is not before 1850.
func (d Date) Before(o Date) bool {
	y1, m1, day1 := d.latest()
	y2, m2, day2 := o.earliest()
	return dayLess(y1, m1, day1, y2, m2, day2)
}

// After reports whether every day d can denote falls strictly after
// every day o can denote.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// Equal reports whether two dates denote the same value at the same
// precision. Certainty is not part of a date's identity.
func (d Date) Equal(o Date) bool {
	return d.Precision == o.Precision && d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

// Display renders the date without its certainty marker.
func (d Date) Display() string {
	switch d.Precision {
	case PrecisionCentury:
		n, bce := centuryOrdinal(d.Year)
		if bce {
			return ordinal(n) + " century BCE"
		}
		return ordinal(n) + " century"
	case PrecisionDecade:
		if d.Year < 0 {
			return strconv.Itoa(-d.Year) + "s BCE"
		}
		return strconv.Itoa(d.Year) + "s"
	case PrecisionYear:
		return yearDisplay(d.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%s %s", time.Month(d.Month), yearDisplay(d.Year))
	case PrecisionDay:
		return fmt.Sprintf("%s %d, %s", time.Month(d.Month), d.Day, yearDisplay(d.Year))
	}
	return ""
}

// String renders the date with a trailing "?" when uncertain.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.Certain {
		return d.Display()
	}
	return d.Display() + "?"
}

func yearDisplay(year int) string {
	if year < 0 {
		return strconv.Itoa(-year) + " BCE"
	}
	return strconv.Itoa(year)
}

// centuryOrdinal converts a century value back to its ordinal number
// and era. 1800 is the 19th century CE; -401 is the 5th century BCE.
func centuryOrdinal(year int) (int, bool) {
	if year < 0 {
		return (-year-1)/100 + 1, true
	}
	return year/100 + 1, false
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func dayLess(y1, m1, d1, y2, m2, d2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}

// DaysIn returns the number of days in the given month, leap years
// included. Works for negative (BCE) years.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
