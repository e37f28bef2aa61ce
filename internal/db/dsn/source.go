package dsn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/tenant"
)

var ErrMissingCentralURL = errors.New("central database connection string is not set")

// Source resolves connection strings. A hospital without its own string is
// served by the central database.
type Source interface {
	Central() (string, error)
	Lookup(id tenant.ID) (string, bool)
}

// EnvSource reads <prefix> for the central database and <prefix>_HOSPITAL<N>
// for hospital N from the process environment.
type EnvSource struct {
	v      *viper.Viper
	prefix string
	conf   *config.Database
}

type EnvOption func(*EnvSource)

// WithConfigFallback builds the central string from the database config when
// the environment does not carry one.
func WithConfigFallback(conf config.Database) EnvOption {
	return func(s *EnvSource) {
		s.conf = &conf
	}
}

func NewEnvSource(prefix string, opts ...EnvOption) *EnvSource {
	if prefix == "" {
		prefix = config.DefaultEnvPrefix
	}

	v := viper.New()
	v.AutomaticEnv()

	s := &EnvSource{
		v:      v,
		prefix: strings.ToUpper(prefix),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *EnvSource) Central() (string, error) {
	central := strings.TrimSpace(s.v.GetString(s.prefix))
	if central != "" {
		return central, nil
	}

	if s.conf == nil {
		return "", errs.Wrapf(ErrMissingCentralURL, "set %s", s.prefix)
	}

	central, err := FromDBConfig(*s.conf)
	if err != nil {
		return "", errs.Wrap(ErrMissingCentralURL, err)
	}

	return central, nil
}

func (s *EnvSource) Lookup(id tenant.ID) (string, bool) {
	v := strings.TrimSpace(s.v.GetString(s.Key(id)))
	return v, v != ""
}

// Key is the environment variable holding the string of hospital id.
func (s *EnvSource) Key(id tenant.ID) string {
	return fmt.Sprintf("%s_HOSPITAL%d", s.prefix, int(id))
}

// StaticSource is a fixed set of connection strings.
type StaticSource struct {
	CentralDSN string
	Hospitals  map[tenant.ID]string
}

func (s StaticSource) Central() (string, error) {
	if s.CentralDSN == "" {
		return "", ErrMissingCentralURL
	}

	return s.CentralDSN, nil
}

func (s StaticSource) Lookup(id tenant.ID) (string, bool) {
	v, ok := s.Hospitals[id]
	return v, ok && v != ""
}
