package team

import (
	"fmt"
	"strings"
	"time"
)

// Team is a squad owned by the club, e.g. "U12 Girls".
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
