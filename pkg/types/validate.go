package types

import (
	"strings"
	"unicode/utf8"
)

// Field bounds enforced on every create and update.
const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
	MaxTags           = 5

	// MaxCurrentIssues caps how many non-Archived issues may exist at once.
	// Evaluated on create only.
	MaxCurrentIssues = 7
)

// ValidateTitle checks the trimmed title length bounds.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return NewValidationError("title must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLen {
		return NewValidationError("title exceeds %d characters", TitleMaxLen)
	}
	return nil
}

// ValidateDescription checks the trimmed description length bounds.
func ValidateDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return NewValidationError("description must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > DescriptionMaxLen {
		return NewValidationError("description exceeds %d characters", DescriptionMaxLen)
	}
	return nil
}

// ValidateTags checks the tag count bound and that no tag contains the
// persistence separator or is blank.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return NewValidationError("at most %d tags allowed, got %d", MaxTags, len(tags))
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return NewValidationError("tags must not be blank")
		}
		if strings.Contains(tag, TagSeparator) {
			return NewValidationError("tag %q must not contain %q", tag, TagSeparator)
		}
	}
	return nil
}

// ValidateDraft checks all field bounds on a new issue's caller-supplied
// fields. The capacity rule is checked separately by the repository, which
// knows the current count.
func ValidateDraft(d Draft) error {
	if err := ValidateTitle(d.Title); err != nil {
		return err
	}
	if err := ValidateDescription(d.Description); err != nil {
		return err
	}
	return ValidateTags(d.Tags)
}

// ValidateIssue checks the field bounds and the resolution rule on a fully
// populated issue, typically the result of applying a patch. It does not
// check transition legality; see ValidateTransition.
func ValidateIssue(i *Issue) error {
	if err := ValidateTitle(i.Title); err != nil {
		return err
	}
	if err := ValidateDescription(i.Description); err != nil {
		return err
	}
	if err := ValidateTags(i.Tags); err != nil {
		return err
	}
	if !i.Status.Valid() {
		return NewValidationError("unknown status %q", string(i.Status))
	}
	if i.Status == StatusResolved && strings.TrimSpace(i.Resolution) == "" {
		return NewValidationError("resolving an issue requires a resolution")
	}
	return nil
}

// ValidateTransition checks status-change legality against the transition
// table. Returns ErrInvalidTransition when the move is not allowed.
func ValidateTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	return nil
}

// ValidateCapacity enforces the current-issue cap before an insert of
// additional new issues. current is the count of non-Archived issues
// already stored.
func ValidateCapacity(current, additional int) error {
	if current+additional > MaxCurrentIssues {
		return NewValidationError("at most %d current issues allowed (%d exist)", MaxCurrentIssues, current)
	}
	return nil
}
