package spondaccount

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Credentials is the single stored Spond login. The password is kept sealed.
type Credentials struct {
	Email          string
	SealedPassword string
	UpdatedAt      time.Time
}

func (c Credentials) Validate() error {
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if c.SealedPassword == "" {
		return fmt.Errorf("sealed password is required")
	}
	return nil
}

// Repository stores at most one Credentials row.
type Repository interface {
	Get(ctx context.Context) (Credentials, bool, error)
	Save(ctx context.Context, c Credentials) error
	Delete(ctx context.Context) error
}
