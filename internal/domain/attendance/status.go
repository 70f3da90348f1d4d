package attendance

import "fmt"

// Status is the check-in classification of an attendance entry.
type Status uint8

const (
	StatusOnTime Status = iota + 1
	StatusLate
	StatusHalfDay
	StatusLeave
	StatusAbsent
)

var statusNames = map[Status]string{
	StatusOnTime:  "On Time",
	StatusLate:    "Late",
	StatusHalfDay: "Half-Day",
	StatusLeave:   "Leave",
	StatusAbsent:  "Absent",
}

// ParseStatus maps a wire value onto Status. Unknown values are rejected.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}
