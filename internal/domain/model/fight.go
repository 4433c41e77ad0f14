package model

// Fight holds the absolute time bounds of one pull in a report.
type Fight struct {
	ID        int
	StartTime int64
	EndTime   int64
}

// Offset converts an absolute event timestamp to a fight-relative one.
func (f Fight) Offset(timestamp int64) int64 {
	return timestamp - f.StartTime
}
