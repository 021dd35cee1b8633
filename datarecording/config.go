package datarecording

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RecorderConfig selects and configures a recording backend.
type RecorderConfig struct {
	// Type selects the backend, either "sqlite" or "clickhouse". An empty
	// Type means "sqlite".
	Type string

	// Path is the SQLite file path, without the .sqlite3 suffix.
	Path string

	// ConnStr is a ClickHouse connection URL such as
	// clickhouse://localhost:9000/db?username=default&password=secret.
	// When set, it overrides Host, Port, Database, Username, and Password.
	ConnStr string

	Host     string
	Port     int
	Database string
	Username string
	Password string

	// BatchSize is the number of entries buffered before an automatic
	// flush. Zero picks the default of 100000.
	BatchSize int
}

// NewDataRecorderWithConfig creates a DataRecorder for the configured
// backend.
func NewDataRecorderWithConfig(cfg RecorderConfig) DataRecorder {
	switch cfg.Type {
	case "", "sqlite":
		return newSQLiteRecorder(cfg.Path, cfg.BatchSize)

	case "clickhouse":
		host := cfg.Host
		port := cfg.Port
		database := cfg.Database
		username := cfg.Username
		password := cfg.Password

		if cfg.ConnStr != "" {
			params, err := parseClickHouseConnStr(cfg.ConnStr)
			if err != nil {
				panic(err)
			}

			host = params.host
			port = params.port
			database = params.database
			username = params.username
			password = params.password
		}

		return NewClickHouseRecorder(
			host, port, database, username, password, cfg.BatchSize)

	default:
		panic(fmt.Sprintf("unknown recorder type: %s", cfg.Type))
	}
}

type clickHouseParams struct {
	host     string
	port     int
	database string
	username string
	password string
}

func parseClickHouseConnStr(connStr string) (clickHouseParams, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return clickHouseParams{}, err
	}

	if u.Scheme != "clickhouse" {
		return clickHouseParams{},
			fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	params := clickHouseParams{
		host:     u.Hostname(),
		port:     9000,
		database: strings.TrimPrefix(u.Path, "/"),
	}

	if portStr := u.Port(); portStr != "" {
		params.port, err = strconv.Atoi(portStr)
		if err != nil {
			return clickHouseParams{}, fmt.Errorf("invalid port: %w", err)
		}
	}

	query := u.Query()
	params.username = query.Get("username")
	params.password = query.Get("password")

	if u.User != nil {
		params.username = u.User.Username()
		if password, ok := u.User.Password(); ok {
			params.password = password
		}
	}

	return params, nil
}
