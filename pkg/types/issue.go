package types

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an issue.
type Status string

// Issue statuses. An issue starts Open and moves through these states
// according to the transition table; Archived is terminal.
const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusArchived   Status = "Archived"
)

// Statuses lists all recognized statuses in lifecycle order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusArchived}

// validStatuses is the set of recognized status values.
var validStatuses = map[Status]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusResolved:   true,
	StatusArchived:   true,
}

// statusTransitions maps each status to the set of statuses reachable in a
// single update. Setting the current status again is always legal; Archived
// is reachable only from Resolved and has no outgoing transitions.
var statusTransitions = map[Status]map[Status]bool{
	StatusOpen:       {StatusOpen: true, StatusInProgress: true, StatusResolved: true},
	StatusInProgress: {StatusOpen: true, StatusInProgress: true, StatusResolved: true},
	StatusResolved:   {StatusResolved: true, StatusArchived: true},
	StatusArchived:   {},
}

// Valid reports whether s is a recognized status value.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// Current reports whether an issue with this status counts against the
// current-issue cap. Archived issues are excluded.
func (s Status) Current() bool {
	return s.Valid() && s != StatusArchived
}

// CanTransitionTo reports whether a single update may move an issue from
// s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return statusTransitions[s][next]
}

// ParseStatus converts user-supplied text into a Status. Matching is
// case-insensitive and ignores spaces, hyphens, and underscores, so
// "in progress", "in-progress", and "InProgress" all parse. Returns
// ErrUnknownStatus for unrecognized input.
func ParseStatus(s string) (Status, error) {
	normalize := func(v string) string {
		v = strings.ToLower(v)
		for _, cut := range []string{" ", "-", "_"} {
			v = strings.ReplaceAll(v, cut, "")
		}
		return v
	}
	want := normalize(s)
	for _, status := range Statuses {
		if normalize(string(status)) == want {
			return status, nil
		}
	}
	return "", ErrUnknownStatus
}

// Issue is the sole persisted entity: a short-lived piece of tracked work.
// The ID is assigned by the store on creation and immutable; CreatedAt is
// set once while UpdatedAt moves on every successful mutation. Resolution
// is non-empty exactly when the issue is Resolved, or Archived via
// Resolved.
type Issue struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	Status      Status    `json:"status"`
	Resolution  string    `json:"resolution,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Current reports whether the issue counts against the current-issue cap.
func (i *Issue) Current() bool {
	return i.Status.Current()
}

// Draft holds the caller-supplied fields for a new issue. Status, timestamps,
// and the ID are assigned by the repository.
type Draft struct {
	Title       string
	Description string
	Tags        []string
}

// Patch describes a partial update to an existing issue. Nil pointer fields
// are left unchanged; a nil Tags slice leaves tags unchanged, an empty
// non-nil slice clears them.
type Patch struct {
	Title       *string
	Description *string
	Tags        []string
	Status      *Status
	Resolution  *string
}

// TagSeparator is the character used to persist tags as a single delimited
// string. Tags therefore may not contain it.
const TagSeparator = ","

// JoinTags encodes a tag sequence as the single delimited string persisted
// in the store.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// SplitTags decodes the persisted tag string back into the ordered tag
// sequence. Whitespace around each tag is trimmed and empty entries are
// dropped, so strings written by earlier versions that joined on ", "
// decode identically.
func SplitTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(joined, TagSeparator) {
		if tag := strings.TrimSpace(raw); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
