package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleaningRequestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to in_progress", CleaningPending, CleaningInProgress, true},
		{"pending to rejected", CleaningPending, CleaningRejected, true},
		{"pending to done skips work", CleaningPending, CleaningDone, false},
		{"in_progress to done", CleaningInProgress, CleaningDone, true},
		{"in_progress to rejected", CleaningInProgress, CleaningRejected, true},
		{"in_progress back to pending", CleaningInProgress, CleaningPending, false},
		{"done is terminal", CleaningDone, CleaningInProgress, false},
		{"done cannot be rejected", CleaningDone, CleaningRejected, false},
		{"rejected is terminal", CleaningRejected, CleaningInProgress, false},
		{"rejected cannot be done", CleaningRejected, CleaningDone, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cr := CleaningRequest{Status: tc.from}
			assert.Equal(t, tc.want, cr.CanTransition(tc.to))
		})
	}
}

func TestCleaningRequestOpen(t *testing.T) {
	assert.True(t, (&CleaningRequest{Status: CleaningPending}).Open())
	assert.True(t, (&CleaningRequest{Status: CleaningInProgress}).Open())
	assert.False(t, (&CleaningRequest{Status: CleaningDone}).Open())
	assert.False(t, (&CleaningRequest{Status: CleaningRejected}).Open())
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleWarden, RoleCleaner, RoleStudent} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole("janitor"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("ADMIN"), "roles are lower case")
}

func TestAnnouncementExpired(t *testing.T) {
	now := time.Now()

	var never Announcement
	assert.False(t, never.Expired(now), "no expiry means evergreen")

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Announcement{ExpiresAt: &past}).Expired(now))
	assert.False(t, (&Announcement{ExpiresAt: &future}).Expired(now))
}
