package config

import (
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
)

// URIValue returns the MongoDB connection string. An explicit uri/url wins;
// otherwise the URI is assembled from parts. A password omitted from YAML is
// taken from the MONGODB_PASSWORD environment variable.
func (c MongoRuntimeConfig) URIValue() string {
	if v := strings.TrimSpace(c.URI); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.URL); v != "" {
		return v
	}

	scheme := strings.ToLower(strings.TrimSpace(c.Scheme))
	if scheme != "mongodb" && scheme != "mongodb+srv" {
		scheme = defaultMongoScheme
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultMongoHost
	}
	// SRV records resolve their own ports.
	if scheme == "mongodb" {
		port := c.Port
		if port == 0 {
			port = defaultMongoPort
		}
		host = net.JoinHostPort(host, strconv.Itoa(port))
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   host,
		Path:   "/",
	}

	user := strings.TrimSpace(c.User)
	if user == "" {
		user = strings.TrimSpace(c.Username)
	}
	password := strings.TrimSpace(c.Password)
	if password == "" {
		password = strings.TrimSpace(os.Getenv(MongoPasswordEnv))
	}
	if user != "" {
		if password != "" {
			u.User = neturl.UserPassword(user, password)
		} else {
			u.User = neturl.User(user)
		}
	}

	query := neturl.Values{}
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			query.Set(k, v)
		}
	}
	if query.Get("appName") == "" {
		appName := strings.TrimSpace(c.AppName)
		if appName == "" {
			appName = defaultMongoAppName
		}
		query.Set("appName", appName)
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// DatabaseName returns the target database, honoring the db_name alias.
func (c MongoRuntimeConfig) DatabaseName() string {
	if v := strings.TrimSpace(c.Name); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.DBName); v != "" {
		return v
	}
	return defaultMongoName
}

// CollectionName returns the analysis-record collection.
func (c MongoRuntimeConfig) CollectionName() string {
	if v := strings.TrimSpace(c.Collection); v != "" {
		return v
	}
	return defaultMongoCollection
}

func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	scheme := strings.ToLower(strings.TrimSpace(c.Scheme))
	if scheme == "" {
		if c.TLS {
			scheme = "rediss"
		} else {
			scheme = "redis"
		}
	}
	if scheme != "redis" && scheme != "rediss" {
		scheme = "redis"
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
	}
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	if username != "" {
		if password != "" {
			u.User = neturl.UserPassword(username, password)
		} else {
			u.User = neturl.User(username)
		}
	} else if password != "" {
		u.User = neturl.UserPassword("", password)
	}

	if len(c.Params) > 0 {
		query := neturl.Values{}
		for key, value := range c.Params {
			k := strings.TrimSpace(key)
			v := strings.TrimSpace(value)
			if k != "" && v != "" {
				query.Set(k, v)
			}
		}
		if len(query) > 0 {
			u.RawQuery = query.Encode()
		}
	}

	return u.String()
}
