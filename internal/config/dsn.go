package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"
)

// applyDatabaseURL understands the DATABASE_URL forms used by hosting
// platforms: sqlite:///path, postgres://..., mysql://...
func applyDatabaseURL(cfg DatabaseRuntimeConfig, raw string) DatabaseRuntimeConfig {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		path := raw[len("sqlite://"):]
		if strings.HasPrefix(path, "/") {
			path = path[1:]
		}
		cfg.Driver = DriverSQLite
		cfg.DSN = path
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		cfg.Driver = DriverPostgres
		cfg.DSN = raw
	case strings.HasPrefix(lower, "mysql://"):
		cfg.Driver = DriverMySQL
		cfg.DSN = ""
		if u, err := neturl.Parse(raw); err == nil {
			cfg.Host = u.Hostname()
			if p, err := strconv.Atoi(u.Port()); err == nil {
				cfg.Port = p
			}
			cfg.User = u.User.Username()
			if pw, ok := u.User.Password(); ok {
				cfg.Password = pw
			}
			cfg.Name = strings.TrimPrefix(u.Path, "/")
			if q := u.Query(); len(q) > 0 {
				cfg.Params = map[string]string{}
				for k := range q {
					cfg.Params[k] = q.Get(k)
				}
			}
		}
	default:
		cfg.DSN = raw
	}
	return cfg
}

// DSNValue returns the connection string for the configured driver.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}
	switch c.Driver {
	case DriverSQLite:
		return defaultSQLitePath
	case DriverPostgres:
		return c.postgresDSN()
	default:
		return c.mysqlDSN()
	}
}

func (c DatabaseRuntimeConfig) mysqlDSN() string {
	params := neturl.Values{}
	for key, value := range c.Params {
		params.Set(key, value)
	}
	if params.Get("charset") == "" {
		params.Set("charset", c.Charset)
	}
	if params.Get("parseTime") == "" {
		params.Set("parseTime", "true")
	}
	if params.Get("loc") == "" {
		params.Set("loc", defaultDBLoc)
	}

	auth := ""
	if c.User != "" || c.Password != "" {
		auth = c.User
		if c.Password != "" {
			auth += ":" + c.Password
		}
		auth += "@"
	}
	return fmt.Sprintf("%stcp(%s)/%s?%s", auth, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Name, params.Encode())
}

func (c DatabaseRuntimeConfig) postgresDSN() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + strconv.Itoa(c.Port),
		"user=" + c.User,
		"dbname=" + c.Name,
	}
	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts = append(parts, "sslmode="+sslmode)
	for _, key := range sortedKeys(c.Params) {
		parts = append(parts, key+"="+c.Params[key])
	}
	return strings.Join(parts, " ")
}

// URLValue returns the redis connection URL, or "" when redis is not
// configured.
func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}
	host := strings.TrimSpace(c.Host)
	if host == "" {
		return ""
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	u := &neturl.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
