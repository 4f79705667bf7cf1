package models

import "fmt"

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusForwarded ApplicationStatus = "forwarded"
	StatusReplied   ApplicationStatus = "replied"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
)

var applicationStatuses = []ApplicationStatus{
	StatusPending, StatusReviewed, StatusForwarded, StatusReplied, StatusApproved, StatusRejected,
}

// ApplicationStatuses lists every stored status in lifecycle order.
func ApplicationStatuses() []ApplicationStatus {
	return append([]ApplicationStatus(nil), applicationStatuses...)
}

func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	for _, status := range applicationStatuses {
		if string(status) == raw {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", raw)
}

// ApplicationAction names the officer operation driving a status change.
type ApplicationAction string

const (
	ActionSetStatus ApplicationAction = "set_status"
	ActionReply     ApplicationAction = "reply"
	ActionForward   ApplicationAction = "forward"
)

type transitionRule struct {
	from map[ApplicationStatus]bool // nil means any state
	to   map[ApplicationStatus]bool
}

func statusSet(statuses ...ApplicationStatus) map[ApplicationStatus]bool {
	set := make(map[ApplicationStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

var applicationTransitions = map[ApplicationAction]transitionRule{
	ActionSetStatus: {
		to: statusSet(StatusReviewed, StatusForwarded, StatusReplied, StatusApproved, StatusRejected),
	},
	ActionReply: {
		to: statusSet(StatusReplied),
	},
	ActionForward: {
		from: statusSet(StatusPending),
		to:   statusSet(StatusForwarded),
	},
}

func CanTransition(action ApplicationAction, from, to ApplicationStatus) bool {
	rule, ok := applicationTransitions[action]
	if !ok {
		return false
	}
	if rule.from != nil && !rule.from[from] {
		return false
	}
	return rule.to[to]
}
