// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ChallengeCompletionEvent is one decoded stream message announcing that a
// challenge phase changed state.
type ChallengeCompletionEvent struct {
	Topic      string    `json:"topic"`
	Originator string    `json:"originator"`
	Timestamp  time.Time `json:"timestamp"`
	MimeType   string    `json:"mime-type"`
	Payload    Payload   `json:"payload"`
}

// Payload carries the challenge phase details.
type Payload struct {
	Date          time.Time `json:"date"`
	ProjectID     int64     `json:"projectId"`
	PhaseID       int64     `json:"phaseId"`
	PhaseTypeName string    `json:"phaseTypeName"`
	State         string    `json:"state"`
	Operator      string    `json:"operator"`
	ProjectStatus string    `json:"projectStatus"`
}

// Submission is one challenge entry.
type Submission struct {
	ID       string `json:"id"`
	MemberID string `json:"memberId"`
}

// UnmarshalJSON accepts memberId as a JSON number or string.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		MemberID json.RawMessage `json:"memberId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := scalarString(raw.ID)
	if err != nil {
		return fmt.Errorf("submission id: %w", err)
	}
	member, err := scalarString(raw.MemberID)
	if err != nil {
		return fmt.Errorf("submission memberId: %w", err)
	}
	s.ID, s.MemberID = id, member
	return nil
}

// Review links a submission, a review type and a score.
type Review struct {
	ID           string  `json:"id"`
	SubmissionID string  `json:"submissionId"`
	TypeID       string  `json:"typeId"`
	Score        float64 `json:"score"`
}

// scalarString renders a JSON string or number as a Go string.
func scalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}
