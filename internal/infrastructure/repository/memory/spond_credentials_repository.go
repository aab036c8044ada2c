package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/clubsync/internal/domain/spondaccount"
)

type SpondCredentialsRepository struct {
	mu    sync.RWMutex
	creds *spondaccount.Credentials
}

func NewSpondCredentialsRepository() *SpondCredentialsRepository {
	return &SpondCredentialsRepository{}
}

func (r *SpondCredentialsRepository) Get(_ context.Context) (spondaccount.Credentials, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.creds == nil {
		return spondaccount.Credentials{}, false, nil
	}
	return *r.creds, true, nil
}

func (r *SpondCredentialsRepository) Save(_ context.Context, c spondaccount.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creds = &c
	return nil
}

func (r *SpondCredentialsRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creds = nil
	return nil
}
