package domain

// SiteInfo is the panel's internal identifier pair for a customer site.
type SiteInfo struct {
	Domain string
	Label  string
	GUID   string
}

type Credentials struct {
	Username string
	Password string
}

// SiteEntry is one domain in the renewal manifest.
type SiteEntry struct {
	Domain   string
	CertFile string
	KeyFile  string
	// PFXFile replaces CertFile/KeyFile when set.
	PFXFile string
}

func (e SiteEntry) UsesPFX() bool {
	return e.PFXFile != ""
}

// PasswordSecretKey is the secret store key holding the panel password of username.
func PasswordSecretKey(username string) string {
	return "stwcert/" + username + "/password"
}
