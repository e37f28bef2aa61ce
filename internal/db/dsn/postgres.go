package dsn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/errs"
)

var (
	ErrLoadingDatabaseHost     = errors.New("error loading database host")
	ErrLoadingDatabaseUser     = errors.New("error loading database user")
	ErrLoadingDatabasePassword = errors.New("error loading database password")
	ErrIncompleteDBConfig      = errors.New("database config has no host")
)

// FromDBConfig converts `config.Database` data to a DSN and returns it.
func FromDBConfig(conf config.Database) (string, error) {
	if conf.Host == (commoncfg.SourceRef{}) {
		return "", ErrIncompleteDBConfig
	}

	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return "", errs.Wrap(ErrLoadingDatabaseHost, err)
	}

	user, err := commoncfg.LoadValueFromSourceRef(conf.User)
	if err != nil {
		return "", errs.Wrap(ErrLoadingDatabaseUser, err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(conf.Secret)
	if err != nil {
		return "", errs.Wrap(ErrLoadingDatabasePassword, err)
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s",
		host, user, string(password), conf.Name, conf.Port), nil
}

// WithSearchPath returns dsn with its search_path set to schema, for both the
// URL and the keyword/value forms.
func WithSearchPath(dsn, schema string) (string, error) {
	if !isURL(dsn) {
		return fmt.Sprintf("%s search_path=%s", dsn, schema), nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Redact hides the password of a dsn so it can be logged.
func Redact(dsn string) string {
	if isURL(dsn) {
		u, err := url.Parse(dsn)
		if err != nil {
			return "<unparsable>"
		}

		return u.Redacted()
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}

	return strings.Join(fields, " ")
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
