package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDraft(t *testing.T) {
	valid := Draft{
		Title:       "Fix login bug",
		Description: "Users cannot log in with SSO",
		Tags:        []string{"auth", "bug"},
	}

	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr string // empty means valid
	}{
		{
			name:   "valid draft passes",
			mutate: func(d *Draft) {},
		},
		{
			name:    "empty title",
			mutate:  func(d *Draft) { d.Title = "   " },
			wantErr: "title must not be empty",
		},
		{
			name:    "title over limit",
			mutate:  func(d *Draft) { d.Title = strings.Repeat("x", TitleMaxLen+1) },
			wantErr: "title exceeds",
		},
		{
			name:   "title at limit",
			mutate: func(d *Draft) { d.Title = strings.Repeat("x", TitleMaxLen) },
		},
		{
			name:    "empty description",
			mutate:  func(d *Draft) { d.Description = "" },
			wantErr: "description must not be empty",
		},
		{
			name:    "description over limit",
			mutate:  func(d *Draft) { d.Description = strings.Repeat("x", DescriptionMaxLen+1) },
			wantErr: "description exceeds",
		},
		{
			name:    "too many tags",
			mutate:  func(d *Draft) { d.Tags = []string{"a", "b", "c", "d", "e", "f"} },
			wantErr: "at most 5 tags",
		},
		{
			name:   "exactly five tags",
			mutate: func(d *Draft) { d.Tags = []string{"a", "b", "c", "d", "e"} },
		},
		{
			name:    "tag with separator",
			mutate:  func(d *Draft) { d.Tags = []string{"auth,bug"} },
			wantErr: "must not contain",
		},
		{
			name:    "blank tag",
			mutate:  func(d *Draft) { d.Tags = []string{"  "} },
			wantErr: "tags must not be blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			d.Tags = append([]string(nil), valid.Tags...)
			tt.mutate(&d)

			err := ValidateDraft(d)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsValidationError(err), "expected ValidationError, got %v", err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateIssueResolutionRule(t *testing.T) {
	issue := &Issue{
		Title:       "Fix login bug",
		Description: "Users cannot log in with SSO",
		Status:      StatusResolved,
	}

	err := ValidateIssue(issue)
	assert.True(t, IsValidationError(err))
	assert.ErrorContains(t, err, "requires a resolution")

	issue.Resolution = "Patched SSO callback"
	assert.NoError(t, ValidateIssue(issue))

	// Non-resolved statuses do not require a resolution.
	issue.Status = StatusInProgress
	issue.Resolution = ""
	assert.NoError(t, ValidateIssue(issue))

	issue.Status = Status("Closed")
	err = ValidateIssue(issue)
	assert.True(t, IsValidationError(err))
	assert.ErrorContains(t, err, "unknown status")
}

func TestValidateCapacity(t *testing.T) {
	assert.NoError(t, ValidateCapacity(0, 1))
	assert.NoError(t, ValidateCapacity(MaxCurrentIssues-1, 1))
	assert.NoError(t, ValidateCapacity(0, MaxCurrentIssues))

	err := ValidateCapacity(MaxCurrentIssues, 1)
	assert.True(t, IsValidationError(err))

	// A batch that would cross the cap is rejected as a whole.
	err = ValidateCapacity(5, 3)
	assert.True(t, IsValidationError(err))
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrDataDirEmpty)

	cfg := Config{DataDir: "/tmp/snags"}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "/tmp/snags/snags.db", cfg.DatabasePath())
	assert.Equal(t, "/tmp/snags/backups", cfg.ResolvedBackupDir())

	cfg.BackupDir = "/var/backups/snags"
	assert.Equal(t, "/var/backups/snags", cfg.ResolvedBackupDir())
}
