package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/i474232898/weather-forecast/internal/weather"
)

// Bundle is everything needed to forecast one city.
type Bundle struct {
	City          string    `json:"city"`
	TrainedAt     time.Time `json:"trainedAt"`
	Scaler        *Scaler   `json:"scaler"`
	Encoder       *Encoder  `json:"encoder"`
	Temperature   *Forest   `json:"temperature"`
	Humidity      *Forest   `json:"humidity"`
	Precipitation *Forest   `json:"precipitation"`
	Metrics       Metrics   `json:"metrics"`
}

// Repository stores at most one bundle per city. Put replaces any existing
// bundle for the same city.
type Repository interface {
	// Get returns weather.ErrArtifactMissing when no bundle exists for city.
	Get(ctx context.Context, city string) (*Bundle, error)
	Put(ctx context.Context, b *Bundle) error
}

// MemoryRepository keeps bundles in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bundles: make(map[string]*Bundle)}
}

func (r *MemoryRepository) Get(_ context.Context, city string) (*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bundles[city]
	if !ok {
		return nil, fmt.Errorf("%w: %s", weather.ErrArtifactMissing, city)
	}
	return b, nil
}

func (r *MemoryRepository) Put(_ context.Context, b *Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles[b.City] = b
	return nil
}

// FileRepository writes one JSON document per city into a directory. File
// names are name-based UUIDs of the city so any city name is a safe path.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(city string) string {
	return filepath.Join(r.dir, uuid.NewSHA1(uuid.NameSpaceURL, []byte(city)).String()+".json")
}

func (r *FileRepository) Get(_ context.Context, city string) (*Bundle, error) {
	data, err := os.ReadFile(r.path(city))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", weather.ErrArtifactMissing, city)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode artifact for %s: %w", city, err)
	}
	return &b, nil
}

// Put writes to a temp file and renames it over the previous bundle.
func (r *FileRepository) Put(_ context.Context, b *Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(r.dir, "bundle-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(b.City)); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}
