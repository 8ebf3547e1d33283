package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Realtime contains the settings of the /ws/real-time focus service.
// All values come from BB_* environment variables.
type Realtime struct {
	JWTSecret    string `env:"JWT_SECRET_KEY"`
	JWTAlgorithm string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	Issuer       string `env:"ISSUER" envDefault:"KSEB_04"`

	AccessCookie  string `env:"ACCESS" envDefault:"access"`
	RefreshCookie string `env:"REFRESH" envDefault:"refresh"`
	AccessType    string `env:"ACCESS_TYPE" envDefault:"queen"`
	RefreshType   string `env:"REFRESH_TYPE" envDefault:"nevercry"`

	AccessTTLSeconds  int `env:"ACCESS_TOKEN_EXPIRE_SEC" envDefault:"900"`
	RefreshTTLSeconds int `env:"REFRESH_TOKEN_EXPIRE_SEC" envDefault:"1209600"`

	DBPath      string `env:"DB_PATH" envDefault:"brainbuddy.db"`
	RedisAddr   string `env:"REDIS_ADDR"`
	BlackListID int    `env:"BLACK_LIST_ID" envDefault:"0"`

	Frames       int           `env:"N_FRAMES" envDefault:"30"`
	FrameTimeout time.Duration `env:"TIME_OUT" envDefault:"30s"`
	FrameDir     string        `env:"FRAME_DIR"`
	InferenceURL string        `env:"INFERENCE_URL"`
	MaxSessions  int           `env:"MAX_SESSIONS" envDefault:"100"`
}

// EnvPrefix is prepended to every Realtime variable name.
const EnvPrefix = "BB_"

// LoadRealtime parses the realtime configuration from the environment.
func LoadRealtime() (*Realtime, error) {
	return loadRealtime(env.Options{Prefix: EnvPrefix})
}

func loadRealtime(opts env.Options) (*Realtime, error) {
	cfg := &Realtime{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Enabled reports whether the realtime endpoint should be mounted.
// Without a signing secret no token can be verified.
func (c *Realtime) Enabled() bool {
	return c != nil && c.JWTSecret != ""
}

// AccessTTL is the lifetime of issued access tokens.
func (c *Realtime) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLSeconds) * time.Second
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (c *Realtime) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLSeconds) * time.Second
}

// Validate checks the realtime configuration. A disabled configuration is
// always valid.
func (c *Realtime) Validate() []error {
	var errors []error

	if !c.Enabled() {
		return errors
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errors = append(errors, fmt.Errorf("%sJWT_ALGORITHM: %q is not one of HS256|HS384|HS512", EnvPrefix, c.JWTAlgorithm))
	}

	if c.AccessCookie == "" || c.RefreshCookie == "" {
		errors = append(errors, fmt.Errorf("%sACCESS and %sREFRESH cookie names must not be empty", EnvPrefix, EnvPrefix))
	}

	if c.AccessTTLSeconds <= 0 || c.RefreshTTLSeconds <= 0 {
		errors = append(errors, fmt.Errorf("token lifetimes must be positive"))
	}

	if c.DBPath == "" {
		errors = append(errors, fmt.Errorf("%sDB_PATH must not be empty", EnvPrefix))
	}

	if c.Frames < 1 {
		errors = append(errors, fmt.Errorf("%sN_FRAMES must be at least 1", EnvPrefix))
	}

	if c.FrameTimeout <= 0 {
		errors = append(errors, fmt.Errorf("%sTIME_OUT must be positive", EnvPrefix))
	}

	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Errorf("%sMAX_SESSIONS must be at least 1", EnvPrefix))
	}

	if c.BlackListID < 0 {
		errors = append(errors, fmt.Errorf("%sBLACK_LIST_ID must not be negative", EnvPrefix))
	}

	return errors
}
