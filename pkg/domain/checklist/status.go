package checklist

import (
	"encoding/json"
	"fmt"
)

// Status represents the lifecycle state of a checklist item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusMissing  Status = "missing"
	StatusError    Status = "error"
)

// validTransitions defines the allowed status transitions. Nothing ever
// moves back to pending, and only verification (never re-planning) can
// demote complete: the planner never updates status at all, so completed
// work cannot be un-done by editing the plan. Missing and the
// complete->error demotion are set solely by the validate-fix loop, on
// verification failure and attempt exhaustion respectively.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusComplete, StatusError, StatusMissing},
	StatusError:    {StatusComplete, StatusMissing},
	StatusMissing:  {StatusComplete, StatusError},
	StatusComplete: {StatusError, StatusMissing},
}

// AllStatuses returns all valid item statuses.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusComplete, StatusMissing, StatusError}
}

// IsValid returns true if the status is one of the defined values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusMissing, StatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo returns true if moving from the current status to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// DisplayName returns a human-readable name for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusComplete:
		return "Complete"
	case StatusMissing:
		return "Missing"
	case StatusError:
		return "Error"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid checklist status: %s", s)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as pending so hand-edited ledgers stay loadable.
	if str == "" {
		*s = StatusPending
		return nil
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid checklist status: %s", str)
	}

	*s = status
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same empty-string tolerance.
func (s *Status) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}

	if str == "" {
		*s = StatusPending
		return nil
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid checklist status: %s", str)
	}

	*s = status
	return nil
}
