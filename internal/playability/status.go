package playability

import "fmt"

// Status is a playability verdict. Within one evaluation a status only ever
// moves up the rank order PLAY < RISKY < DELAY < AVOID; UNKNOWN sits above
// them all and is only produced for an empty window.
type Status string

const (
	StatusPlay    Status = "PLAY"
	StatusRisky   Status = "RISKY"
	StatusDelay   Status = "DELAY"
	StatusAvoid   Status = "AVOID"
	StatusUnknown Status = "UNKNOWN"
)

var statusRank = map[Status]int{
	StatusPlay:    0,
	StatusRisky:   1,
	StatusDelay:   2,
	StatusAvoid:   3,
	StatusUnknown: 4,
}

var statusLabels = map[Status]string{
	StatusPlay:    "Play",
	StatusRisky:   "Risky",
	StatusDelay:   "Delay",
	StatusAvoid:   "Avoid",
	StatusUnknown: "Unknown",
}

// Rank returns the escalation rank. Unrecognised values rank as UNKNOWN.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return statusRank[StatusUnknown]
}

// Label is the short display text for the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusUnknown]
}

// Playable reports whether a round can go ahead. UNKNOWN is never playable.
func (s Status) Playable() bool {
	return s == StatusPlay || s == StatusRisky
}

func (s *Status) UnmarshalText(b []byte) error {
	v := Status(b)
	if _, ok := statusRank[v]; !ok {
		return fmt.Errorf("unknown status %q", string(b))
	}
	*s = v
	return nil
}

// Escalate returns whichever of current and candidate ranks higher.
func Escalate(current, candidate Status) Status {
	if candidate.Rank() > current.Rank() {
		return candidate
	}
	return current
}

// Bump raises s by exactly one rank. AVOID and UNKNOWN are fixed points.
func Bump(s Status) Status {
	switch s {
	case StatusPlay:
		return StatusRisky
	case StatusRisky:
		return StatusDelay
	case StatusDelay:
		return StatusAvoid
	default:
		return s
	}
}

// verdict accumulates a status and the reasons that produced it. Every
// mutation goes through Bump or Escalate so the status cannot decrease.
type verdict struct {
	status  Status
	reasons []string
}

func newVerdict() *verdict {
	return &verdict{status: StatusPlay, reasons: []string{}}
}

func (v *verdict) bump(reason string) {
	v.status = Bump(v.status)
	v.reasons = append(v.reasons, reason)
}

func (v *verdict) floor(s Status, reason string) {
	v.status = Escalate(v.status, s)
	v.reasons = append(v.reasons, reason)
}

func (v *verdict) note(reason string) {
	v.reasons = append(v.reasons, reason)
}
