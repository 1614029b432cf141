package entity

// Issue is a candidate ticket returned by the tracker, already past the
// rule's time-in-status threshold.
type Issue struct {
	Key                 string
	Summary             string
	Assignee            string
	Status              string
	TimeInStatusMinutes float64
}
