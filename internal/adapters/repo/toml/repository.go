package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	sitesPathKey    = "sites.path"
	sitesFileMode   = 0o600
	sitesDirMode    = 0o700
	configDir       = ".stwcert"
	sitesConfigFile = "sites.toml"
	tempFilePattern = ".sites-*.toml.tmp"
)

// Repository stores the renewal manifest as a TOML file. Writes go through a
// temp file and a rename so readers never see a partial manifest.
type Repository struct {
	sitesPath string
	mu        *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SiteRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	sitesPath := cfg.GetString(sitesPathKey)
	if sitesPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		sitesPath = filepath.Join(homeDir, configDir, sitesConfigFile)
	}

	sitesPath, err := normalizeSitesPath(sitesPath)
	if err != nil {
		return nil, err
	}

	return &Repository{sitesPath: sitesPath, mu: lockForPath(sitesPath)}, nil
}

func (r *Repository) Path() string {
	return r.sitesPath
}

func (r *Repository) Save(ctx context.Context, entry domain.SiteEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(entry)
	updated := false
	for i := range file.Sites {
		if file.Sites[i].Domain == encoded.Domain {
			file.Sites[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Sites = append(file.Sites, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) Get(ctx context.Context, domainName string) (domain.SiteEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.SiteEntry{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.SiteEntry{}, err
	}

	for _, site := range file.Sites {
		if site.Domain == domainName {
			return fromSchema(site), nil
		}
	}

	return domain.SiteEntry{}, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, domainName)
}

// List returns the manifest entries sorted by domain.
func (r *Repository) List(ctx context.Context) ([]domain.SiteEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SiteEntry, 0, len(file.Sites))
	for _, site := range file.Sites {
		entries = append(entries, fromSchema(site))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Domain < entries[j].Domain })

	return entries, nil
}

func (r *Repository) Delete(ctx context.Context, domainName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Sites[:0]
	for _, site := range file.Sites {
		if site.Domain != domainName {
			kept = append(kept, site)
		}
	}
	if len(kept) == len(file.Sites) {
		return fmt.Errorf("%w: %s", domain.ErrSiteNotFound, domainName)
	}
	file.Sites = kept

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.sitesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read sites file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode sites file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeSitesPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sites path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.sitesPath), sitesDirMode); err != nil {
		return fmt.Errorf("create sites directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode sites file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.sitesPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp sites file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp sites file: %w", err)
	}
	if err := tempFile.Chmod(sitesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp sites file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp sites file: %w", err)
	}

	if err := os.Rename(tempName, r.sitesPath); err != nil {
		return fmt.Errorf("replace sites file: %w", err)
	}
	cleanup = false

	return nil
}
