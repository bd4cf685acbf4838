package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DealStatus enumerates lifecycle states for deals.
type DealStatus string

const (
	DealStatusPending    DealStatus = "Pending"
	DealStatusInProgress DealStatus = "In Progress"
	DealStatusCompleted  DealStatus = "Completed"
	DealStatusCancelled  DealStatus = "Cancelled"
)

// statusTransitions is the authoritative client-side transition table.
// Completed and Cancelled are terminal.
var statusTransitions = map[DealStatus][]DealStatus{
	DealStatusPending:    {DealStatusInProgress, DealStatusCancelled},
	DealStatusInProgress: {DealStatusCompleted},
	DealStatusCompleted:  {},
	DealStatusCancelled:  {},
}

// AllowedTransitions returns the statuses a deal may move to from current.
// The viewer role gates which actions a view renders, not which transitions
// exist; the table is role-independent and the backend stays authoritative.
func AllowedTransitions(current DealStatus, viewer Role) []DealStatus {
	_ = viewer
	next, ok := statusTransitions[current]
	if !ok {
		return nil
	}
	out := make([]DealStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether moving from current to target is legal.
func CanTransition(current, target DealStatus) bool {
	for _, next := range statusTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// Valid reports membership in the status enum.
func (s DealStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether the status has no outgoing transitions.
func (s DealStatus) Terminal() bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

// ParseStatus normalizes user-supplied status text ("in-progress",
// "IN_PROGRESS", "In Progress") into a DealStatus.
func ParseStatus(raw string) (DealStatus, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer("-", " ", "_", " ").Replace(cleaned)
	for status := range statusTransitions {
		if strings.ToLower(string(status)) == cleaned {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown deal status %q", raw)
}

// Deal is a negotiable listing. The canonical copy lives in the backend;
// instances held here are transient read copies for display.
type Deal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Seller      string     `json:"seller"`
	Status      DealStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Validate checks the invariants a deal must hold before submission.
func (d *Deal) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("title is required")
	}
	if d.Price < 0 {
		return errors.New("price must be non-negative")
	}
	if d.Status != "" && !d.Status.Valid() {
		return fmt.Errorf("invalid deal status %q", d.Status)
	}
	return nil
}
