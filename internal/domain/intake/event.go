package intake

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
)

// Filter holds the expected values of a completion event.
type Filter struct {
	PhaseTypeName string
	State         string
	ProjectStatus string
}

// Parse decodes a raw message body and checks that every field is present.
func Parse(raw []byte) (model.ChallengeCompletionEvent, error) {
	var ev model.ChallengeCompletionEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return model.ChallengeCompletionEvent{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := validate(&ev); err != nil {
		return model.ChallengeCompletionEvent{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ev, nil
}

func validate(ev *model.ChallengeCompletionEvent) error {
	p := ev.Payload
	var missing []string
	for name, empty := range map[string]bool{
		"topic":                 strings.TrimSpace(ev.Topic) == "",
		"originator":            strings.TrimSpace(ev.Originator) == "",
		"timestamp":             ev.Timestamp.IsZero(),
		"mime-type":             strings.TrimSpace(ev.MimeType) == "",
		"payload.date":          p.Date.IsZero(),
		"payload.phaseTypeName": strings.TrimSpace(p.PhaseTypeName) == "",
		"payload.state":         strings.TrimSpace(p.State) == "",
		"payload.operator":      strings.TrimSpace(p.Operator) == "",
		"payload.projectStatus": strings.TrimSpace(p.ProjectStatus) == "",
	} {
		if empty {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required fields %s", strings.Join(missing, ", "))
	}
	if p.ProjectID <= 0 {
		return fmt.Errorf("payload.projectId must be a positive integer, got %d", p.ProjectID)
	}
	if p.PhaseID <= 0 {
		return fmt.Errorf("payload.phaseId must be a positive integer, got %d", p.PhaseID)
	}
	return nil
}

// Matches reports, as an error wrapping ErrMismatch, the first field of ev
// that differs from the stream topic or the configured filter.
func Matches(ev model.ChallengeCompletionEvent, topic string, f Filter) error {
	switch {
	case ev.Topic != topic:
		return fmt.Errorf("%w: message topic %q differs from stream topic %q", ErrMismatch, ev.Topic, topic)
	case ev.Payload.PhaseTypeName != f.PhaseTypeName:
		return fmt.Errorf("%w: phaseTypeName %q, expected %q", ErrMismatch, ev.Payload.PhaseTypeName, f.PhaseTypeName)
	case ev.Payload.State != f.State:
		return fmt.Errorf("%w: state %q, expected %q", ErrMismatch, ev.Payload.State, f.State)
	case ev.Payload.ProjectStatus != f.ProjectStatus:
		return fmt.Errorf("%w: projectStatus %q, expected %q", ErrMismatch, ev.Payload.ProjectStatus, f.ProjectStatus)
	}
	return nil
}
