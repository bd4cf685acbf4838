package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedTransitionsFromPending(t *testing.T) {
	for _, role := range []Role{RoleBuyer, RoleSeller} {
		next := AllowedTransitions(DealStatusPending, role)
		assert.ElementsMatch(t,
			[]DealStatus{DealStatusInProgress, DealStatusCancelled}, next,
			"role %s must not change the table", role)
	}
}

func TestAllowedTransitionsFromInProgress(t *testing.T) {
	next := AllowedTransitions(DealStatusInProgress, RoleSeller)
	assert.Equal(t, []DealStatus{DealStatusCompleted}, next)
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, status := range []DealStatus{DealStatusCompleted, DealStatusCancelled} {
		for _, role := range []Role{RoleBuyer, RoleSeller} {
			assert.Empty(t, AllowedTransitions(status, role))
		}
		assert.True(t, status.Terminal())
	}
	assert.False(t, DealStatusPending.Terminal())
	assert.False(t, DealStatusInProgress.Terminal())
}

func TestCanTransitionFullTable(t *testing.T) {
	all := []DealStatus{DealStatusPending, DealStatusInProgress, DealStatusCompleted, DealStatusCancelled}
	allowed := map[[2]DealStatus]bool{
		{DealStatusPending, DealStatusInProgress}:   true,
		{DealStatusPending, DealStatusCancelled}:    true,
		{DealStatusInProgress, DealStatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			expected := allowed[[2]DealStatus{from, to}]
			assert.Equal(t, expected, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("Archived", DealStatusPending))
	assert.False(t, CanTransition(DealStatusPending, "Archived"))
}

func TestParseStatus(t *testing.T) {
	cases := map[string]DealStatus{
		"pending":     DealStatusPending,
		"In Progress": DealStatusInProgress,
		"in-progress": DealStatusInProgress,
		"IN_PROGRESS": DealStatusInProgress,
		"completed":   DealStatusCompleted,
		" Cancelled ": DealStatusCancelled,
	}
	for raw, expected := range cases {
		status, err := ParseStatus(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, expected, status)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestDealValidate(t *testing.T) {
	deal := Deal{Title: "Office chairs", Price: 250, Status: DealStatusPending}
	require.NoError(t, deal.Validate())

	deal.Price = -1
	assert.Error(t, deal.Validate())

	deal.Price = 0
	deal.Title = "  "
	assert.Error(t, deal.Validate())

	deal.Title = "Office chairs"
	deal.Status = "Archived"
	assert.Error(t, deal.Validate())
}
