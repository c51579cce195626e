package shared

import "time"

const DateLayout = "2006-01-02"

// ParseDate accepts the yyyy-MM-dd the forms post.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// DateOrdered checks startDate <= endDate on the raw form values;
// unparseable input is reported by ParseDate separately.
func DateOrdered(start, end string) bool {
	s, err1 := ParseDate(start)
	e, err2 := ParseDate(end)
	if err1 != nil || err2 != nil {
		return true
	}
	return !e.Before(s)
}
