package patient

import (
	"time"
)

// Age-group buckets. One canonical table; every filter and report goes
// through these boundaries.
const (
	AgeGroupChild      = "CHILD"       // 0-17
	AgeGroupYoungAdult = "YOUNG_ADULT" // 18-34
	AgeGroupAdult      = "ADULT"       // 35-49
	AgeGroupMiddleAged = "MIDDLE_AGED" // 50-64
	AgeGroupSenior     = "SENIOR"      // 65+
)

type ageBucket struct {
	Name string
	Min  int
	Max  int // inclusive; -1 means unbounded
}

var ageBuckets = []ageBucket{
	{AgeGroupChild, 0, 17},
	{AgeGroupYoungAdult, 18, 34},
	{AgeGroupAdult, 35, 49},
	{AgeGroupMiddleAged, 50, 64},
	{AgeGroupSenior, 65, -1},
}

// Age computes completed years at the reference time from an ISO birth date.
// Returns -1 for an unparseable date.
func Age(dateOfBirth string, at time.Time) int {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return -1
	}
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}

// AgeGroup returns the canonical bucket name for an age, or "".
func AgeGroup(age int) string {
	if age < 0 {
		return ""
	}
	for _, b := range ageBuckets {
		if age >= b.Min && (b.Max < 0 || age <= b.Max) {
			return b.Name
		}
	}
	return ""
}

// BirthDateRange translates an age-group name into a date-of-birth window
// so the filter runs in SQL instead of post-fetch. The returned bounds are
// inclusive; a zero time means unbounded on that side.
func BirthDateRange(group string, at time.Time) (from, to time.Time, ok bool) {
	for _, b := range ageBuckets {
		if b.Name != group {
			continue
		}
		// Someone aged exactly b.Min was born at most b.Min years ago;
		// someone aged b.Max was born after (b.Max+1) years ago.
		to = at.AddDate(-b.Min, 0, 0)
		if b.Max >= 0 {
			from = at.AddDate(-(b.Max + 1), 0, 1)
		}
		return from, to, true
	}
	return time.Time{}, time.Time{}, false
}

// BMI category thresholds (kg/m^2).
const (
	BMIUnderweight = "UNDERWEIGHT" // < 18.5
	BMINormal      = "NORMAL"      // 18.5 - 24.9
	BMIOverweight  = "OVERWEIGHT"  // 25.0 - 29.9
	BMIObese       = "OBESE"       // >= 30.0
)

// BMI computes body mass index from height in cm and weight in kg.
// Returns 0 when height is not positive.
func BMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 {
		return 0
	}
	m := heightCM / 100
	return weightKG / (m * m)
}

// BMICategory maps a BMI value onto the canonical category table.
func BMICategory(bmi float64) string {
	switch {
	case bmi <= 0:
		return ""
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// Statistics summarizes the patients matching a list filter.
type Statistics struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Inactive     int            `json:"inactive"`
	ByGender     map[string]int `json:"byGender"`
	ByBloodGroup map[string]int `json:"byBloodGroup"`
	ByAgeGroup   map[string]int `json:"byAgeGroup"`
}
