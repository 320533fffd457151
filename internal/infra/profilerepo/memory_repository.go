package profilerepo

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/lumee/internal/domain/profile"
)

// MemoryRepository serves profiles from process memory for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

// NewMemoryRepository constructs a repository holding seed.
func NewMemoryRepository(seed ...profile.Profile) *MemoryRepository {
	r := &MemoryRepository{profiles: make(map[string]profile.Profile, len(seed))}
	for _, p := range seed {
		r.Put(p)
	}
	return r
}

func (r *MemoryRepository) Get(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	return p, ok, nil
}

// Put stores or replaces a profile.
func (r *MemoryRepository) Put(p profile.Profile) {
	r.mu.Lock()
	r.profiles[p.UserID] = p
	r.mu.Unlock()
}

type seedFile struct {
	Profiles []profile.Profile `yaml:"profiles"`
}

// LoadSeed reads profiles from a YAML file of the form "profiles: [...]".
func LoadSeed(path string) ([]profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode profile seed: %w", err)
	}
	for i, p := range seed.Profiles {
		if p.UserID == "" {
			return nil, fmt.Errorf("profile seed entry %d has no userId", i)
		}
	}
	return seed.Profiles, nil
}

var _ profile.Repository = (*MemoryRepository)(nil)
