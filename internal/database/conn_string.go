package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
)

// DefaultApplicationName identifies hackathon sessions in pg_stat_activity.
const DefaultApplicationName = "tradeentry-hackathon"

// BuildConnString builds a PostgreSQL URL from config. User and password
// are escaped as URL userinfo, so cloud passwords containing @, : or /
// survive the round trip through pgx.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	appName := cfg.ApplicationName
	if appName == "" {
		appName = DefaultApplicationName
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", appName)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}
