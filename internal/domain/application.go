package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Statuses lists every status an application can hold, in display order.
var Statuses = []Status{StatusPending, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseStatus folds case, so "Pending" and "pending" are the same status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return status, nil
}

type Application struct {
	ID        string
	OwnerID   string
	Company   string
	Role      string
	URL       *string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewApplication is the caller-supplied input for creating an application.
// An empty Status means StatusPending.
type NewApplication struct {
	Company string
	Role    string
	URL     string
	Status  Status
}

// ApplicationUpdate is the caller-supplied input for updating an
// application's fields. A blank URL is stored as null.
type ApplicationUpdate struct {
	Company string
	Role    string
	URL     string
}

type ApplicationRepository interface {
	Create(ctx context.Context, in NewApplication) (Application, error)
	ListAll(ctx context.Context) ([]Application, error)
	ListByStatus(ctx context.Context, status Status) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateFields(ctx context.Context, id string, in ApplicationUpdate) error
	Delete(ctx context.Context, id string) error
}
