package application

import (
	"context"
	"fmt"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
)

const (
	loginFormSelector = "form#aspnetForm"
	usernameSelector  = "#username"
	passwordSelector  = "#password"
)

// EnsureSession logs in once per Panel. Later calls are no-ops; concurrent
// callers wait for the login in flight. A failed login is not remembered.
func (p *Panel) EnsureSession(ctx context.Context) error {
	if p.currentSession().authenticated {
		return nil
	}

	_, err, _ := p.initFlight.Do("session", func() (any, error) {
		if p.currentSession().authenticated {
			return nil, nil
		}

		established, err := p.login(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.session = established
		p.mu.Unlock()
		return nil, nil
	})

	return err
}

func (p *Panel) login(ctx context.Context) (session, error) {
	p.logger.Info("loading login page", "url", p.cfg.LoginURL)
	loginPage, err := p.fetch(ctx, "load login page", p.cfg.LoginURL)
	if err != nil {
		return session{}, err
	}

	creds, err := p.credentials.Credentials(ctx)
	if err != nil {
		return session{}, fmt.Errorf("load panel credentials: %w", err)
	}

	form, ok := loginPage.Document.Form(loginFormSelector)
	if !ok {
		return session{}, &domain.StructureError{Page: "login page", Element: loginFormSelector}
	}
	if !form.Set(usernameSelector, creds.Username) {
		return session{}, &domain.StructureError{Page: "login page", Element: usernameSelector}
	}
	if !form.Set(passwordSelector, creds.Password) {
		return session{}, &domain.StructureError{Page: "login page", Element: passwordSelector}
	}

	loginAction, err := resolveReference(loginPage.URL, form.Action())
	if err != nil {
		return session{}, &domain.StructureError{Page: "login page", Element: "form action"}
	}

	p.logger.Info("logging in", "username", creds.Username)
	redirectPage, err := p.submit(ctx, "submit login form", form, loginAction)
	if err != nil {
		return session{}, err
	}
	if _, stillLogin := redirectPage.Document.Text(loginFormSelector + " " + passwordSelector); stillLogin {
		return session{}, fmt.Errorf("%w for user %q", ErrAuthentication, creds.Username)
	}

	redirectForm, ok := redirectPage.Document.Form("form")
	if !ok {
		return session{}, &domain.StructureError{Page: "login redirect page", Element: "form"}
	}
	if redirectForm.Action() == "" {
		return session{}, &domain.StructureError{Page: "login redirect page", Element: "form action"}
	}
	landingURL, err := resolveReference(redirectPage.URL, redirectForm.Action())
	if err != nil {
		return session{}, &domain.StructureError{Page: "login redirect page", Element: "form action"}
	}

	landing, err := p.submit(ctx, "load landing page", redirectForm, landingURL)
	if err != nil {
		return session{}, err
	}

	baseURL := normalizeBaseURL(landingURL)
	p.logger.Debug("session established", "base_url", baseURL)

	return session{
		authenticated: true,
		baseURL:       baseURL,
		landing:       landing.Document,
	}, nil
}

// EnsureModuleLoaded opens the certificate module once per Panel, logging in
// first when needed.
func (p *Panel) EnsureModuleLoaded(ctx context.Context) error {
	if p.currentModule().loaded {
		return nil
	}
	if err := p.EnsureSession(ctx); err != nil {
		return err
	}

	_, err, _ := p.initFlight.Do("module", func() (any, error) {
		if p.currentModule().loaded {
			return nil, nil
		}

		loaded, err := p.loadModule(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.module = loaded
		p.mu.Unlock()
		return nil, nil
	})

	return err
}

func (p *Panel) loadModule(ctx context.Context) (moduleContext, error) {
	current := p.currentSession()

	href, ok := current.landing.LinkHref(p.cfg.ModuleLinkText)
	if !ok {
		return moduleContext{}, &domain.StructureError{Page: "landing page", Element: fmt.Sprintf("link %q", p.cfg.ModuleLinkText)}
	}

	moduleURL := joinURL(current.baseURL, href)
	p.logger.Info("loading certificate module", "url", moduleURL)
	page, err := p.fetch(ctx, "load certificate module", moduleURL)
	if err != nil {
		return moduleContext{}, err
	}

	return moduleContext{
		loaded:   true,
		url:      normalizeBaseURL(moduleURL),
		document: page.Document,
	}, nil
}

func (p *Panel) fetch(ctx context.Context, op, rawURL string) (*ports.Page, error) {
	page, err := p.browser.Get(ctx, rawURL)
	return checkPage(op, rawURL, page, err)
}

func (p *Panel) submit(ctx context.Context, op string, form ports.Form, actionURL string) (*ports.Page, error) {
	page, err := p.browser.Submit(ctx, form, actionURL)
	return checkPage(op, actionURL, page, err)
}

func checkPage(op, rawURL string, page *ports.Page, err error) (*ports.Page, error) {
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: rawURL, Err: err}
	}
	if !page.OK() {
		return nil, &domain.TransportError{Op: op, URL: rawURL, StatusCode: page.StatusCode}
	}
	return page, nil
}
