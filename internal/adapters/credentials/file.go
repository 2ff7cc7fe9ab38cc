package credentials

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
	"github.com/spf13/viper"
)

const DefaultFile = "stw.json"

var ErrIncompleteCredentials = errors.New("credentials file must set username and password")

// FileProvider reads the panel login from a small config file. JSON is the
// usual format; any extension viper understands works.
type FileProvider struct {
	path string
}

var _ ports.CredentialsProvider = (*FileProvider)(nil)

func NewFileProvider(path string) *FileProvider {
	if strings.TrimSpace(path) == "" {
		path = DefaultFile
	}
	return &FileProvider{path: path}
}

func (p *FileProvider) Path() string {
	return p.path
}

func (p *FileProvider) Credentials(ctx context.Context) (domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credentials{}, err
	}

	v := viper.New()
	v.SetConfigFile(p.path)
	if ext := strings.TrimPrefix(filepath.Ext(p.path), "."); ext == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return domain.Credentials{}, fmt.Errorf("read credentials file %s: %w", p.path, err)
	}

	creds := domain.Credentials{
		Username: strings.TrimSpace(v.GetString("username")),
		Password: v.GetString("password"),
	}
	if creds.Username == "" || creds.Password == "" {
		return domain.Credentials{}, fmt.Errorf("%s: %w", p.path, ErrIncompleteCredentials)
	}

	return creds, nil
}
