package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		to    Status
		legal bool
	}{
		{name: "open to in progress", from: StatusOpen, to: StatusInProgress, legal: true},
		{name: "open to resolved", from: StatusOpen, to: StatusResolved, legal: true},
		{name: "open to open is idempotent", from: StatusOpen, to: StatusOpen, legal: true},
		{name: "open cannot archive", from: StatusOpen, to: StatusArchived, legal: false},
		{name: "in progress back to open", from: StatusInProgress, to: StatusOpen, legal: true},
		{name: "in progress to resolved", from: StatusInProgress, to: StatusResolved, legal: true},
		{name: "in progress cannot archive", from: StatusInProgress, to: StatusArchived, legal: false},
		{name: "resolved to archived", from: StatusResolved, to: StatusArchived, legal: true},
		{name: "resolved cannot reopen", from: StatusResolved, to: StatusOpen, legal: false},
		{name: "archived is terminal", from: StatusArchived, to: StatusResolved, legal: false},
		{name: "archived cannot rearchive", from: StatusArchived, to: StatusArchived, legal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.legal, tt.from.CanTransitionTo(tt.to))
			err := ValidateTransition(tt.from, tt.to)
			if tt.legal {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestStatusCurrent(t *testing.T) {
	assert.True(t, StatusOpen.Current())
	assert.True(t, StatusInProgress.Current())
	assert.True(t, StatusResolved.Current())
	assert.False(t, StatusArchived.Current())
	assert.False(t, Status("bogus").Current())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{in: "Open", want: StatusOpen},
		{in: "open", want: StatusOpen},
		{in: "In Progress", want: StatusInProgress},
		{in: "in-progress", want: StatusInProgress},
		{in: "inprogress", want: StatusInProgress},
		{in: "IN_PROGRESS", want: StatusInProgress},
		{in: "resolved", want: StatusResolved},
		{in: "Archived", want: StatusArchived},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("closed")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTagCodec(t *testing.T) {
	tests := []struct {
		name   string
		tags   []string
		joined string
	}{
		{name: "empty", tags: nil, joined: ""},
		{name: "single", tags: []string{"auth"}, joined: "auth"},
		{name: "ordered", tags: []string{"auth", "bug", "sso"}, joined: "auth,bug,sso"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.joined, JoinTags(tt.tags))
			assert.Equal(t, tt.tags, SplitTags(tt.joined))
		})
	}
}

func TestSplitTagsLegacyFormats(t *testing.T) {
	// Earlier versions of the store joined with ", " and could leave
	// empty entries behind; decoding normalizes both.
	assert.Equal(t, []string{"auth", "bug"}, SplitTags("auth, bug"))
	assert.Equal(t, []string{"auth"}, SplitTags("auth,,  "))
	assert.Nil(t, SplitTags("   "))
}
