package application

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/logging"
	"github.com/bnema/stwcert/internal/ports"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultLoginURL       = "https://hcp.stwcp.net/"
	DefaultModuleLinkText = "SSL certificates"
)

var ErrAuthentication = errors.New("panel login rejected")

type PanelConfig struct {
	LoginURL       string
	ModuleLinkText string
}

type session struct {
	authenticated bool
	baseURL       string
	landing       ports.Document
}

type moduleContext struct {
	loaded   bool
	url      string
	document ports.Document
}

// Panel holds the automation context for one process: the authenticated
// session, the certificate module, and the per-domain site cache. It is safe
// for concurrent use; login and module load run at most once at a time.
type Panel struct {
	browser     ports.Browser
	credentials ports.CredentialsProvider
	clock       ports.Clock
	logger      *slog.Logger
	cfg         PanelConfig

	mu      sync.RWMutex
	session session
	module  moduleContext
	sites   map[string]domain.SiteInfo

	initFlight singleflight.Group
	siteFlight singleflight.Group
}

func NewPanel(cfg PanelConfig, browser ports.Browser, credentials ports.CredentialsProvider, clock ports.Clock, logger *slog.Logger) *Panel {
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if cfg.ModuleLinkText == "" {
		cfg.ModuleLinkText = DefaultModuleLinkText
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Panel{
		browser:     browser,
		credentials: credentials,
		clock:       clock,
		logger:      logger,
		cfg:         cfg,
		sites:       map[string]domain.SiteInfo{},
	}
}

func (p *Panel) currentSession() session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

func (p *Panel) currentModule() moduleContext {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.module
}

// normalizeBaseURL drops trailing slashes so that joinURL never produces "//".
func normalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// joinURL appends a panel-relative reference to base. Absolute references are
// returned unchanged.
func joinURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if parsed, err := url.Parse(ref); err == nil && parsed.IsAbs() {
		return ref
	}
	return normalizeBaseURL(base) + "/" + strings.TrimLeft(ref, "/")
}

// resolveReference resolves a form action against the URL of the page that
// contains the form, as a browser would.
func resolveReference(pageURL, ref string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	target, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse form action %q: %w", ref, err)
	}
	return target.String(), nil
}
