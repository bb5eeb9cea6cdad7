package config

// Environment variables consulted when a scrape request does not name the target.
const (
	EnvAddress  = "ONTAP_IP"
	EnvUsername = "ONTAP_USER"
	EnvPassword = "ONTAP_PASS"
)

// Last-resort values, kept for compatibility with existing deployments.
const (
	FallbackAddress  = "default_ip"
	FallbackUsername = "admin"
	FallbackPassword = "password"
)

// Target is the fully resolved upstream for one collection pass.
type Target struct {
	Scheme   string
	Address  string
	Username string
	Password string
}

// URL joins the target base with an absolute API path such as /api/storage/volumes.
func (t Target) URL(path string) string {
	return t.Scheme + "://" + t.Address + path
}

// Overrides carries the values a single scrape request supplied. Empty fields
// fall through to the next source.
type Overrides struct {
	Address  string
	Username string
	Password string
}

// Resolve returns the first non-empty value.
func Resolve(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveTarget applies the lookup chain request -> environment -> config file ->
// fallback to each parameter independently. getenv is os.Getenv in production.
func (c *Config) ResolveTarget(o Overrides, getenv func(string) string) Target {
	return Target{
		Scheme:   c.Target.Scheme,
		Address:  Resolve(o.Address, getenv(EnvAddress), c.Target.Address, FallbackAddress),
		Username: Resolve(o.Username, getenv(EnvUsername), c.Target.Username, FallbackUsername),
		Password: Resolve(o.Password, getenv(EnvPassword), c.Target.Password(), FallbackPassword),
	}
}
