package authapi

// Config controls the auth form endpoints.
type Config struct {
	// Strategy names the strategy used for form logins.
	Strategy     string
	LoginPath    string
	LogoutPath   string
	RegisterPath string
	HomePath     string
	// LandingPath is where a new account is sent after registration.
	LandingPath  string
	TrustProxy   bool
	MaxBodyBytes int64
}

func DefaultConfig() Config {
	return Config{
		Strategy:     "local",
		LoginPath:    "/login",
		LogoutPath:   "/logout",
		RegisterPath: "/register",
		HomePath:     "/",
		LandingPath:  "/flights",
		MaxBodyBytes: 64 << 10,
	}
}

// normalized fills zero fields from DefaultConfig.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Strategy == "" {
		c.Strategy = def.Strategy
	}
	if c.LoginPath == "" {
		c.LoginPath = def.LoginPath
	}
	if c.LogoutPath == "" {
		c.LogoutPath = def.LogoutPath
	}
	if c.RegisterPath == "" {
		c.RegisterPath = def.RegisterPath
	}
	if c.HomePath == "" {
		c.HomePath = def.HomePath
	}
	if c.LandingPath == "" {
		c.LandingPath = def.LandingPath
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	return c
}
