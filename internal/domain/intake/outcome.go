package intake

// Status is the terminal state of one message.
type Status int

// Message terminal states. Every state ends with the offset committed.
const (
	// StatusSuccess means the winner was provisioned and the win recorded.
	StatusSuccess Status = iota
	// StatusSkipped means the message was unparseable or not meant for us.
	StatusSkipped
	// StatusFailed means processing a matching event failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of handling one message.
type Outcome struct {
	Status      Status
	ChallengeID int64
	// MemberID is the resolved winner, when resolution got that far.
	MemberID string
	// Err explains a skipped or failed message.
	Err error
}

// Success reports whether the message was fully processed.
func (o Outcome) Success() bool { return o.Status == StatusSuccess }
