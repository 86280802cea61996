package datastore

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/logger"
)

// Pool defaults for MySQL.
const (
	defaultMySQLMaxOpenConns = 25
	defaultLockWaitSeconds   = 10
)

// MySQLConfig holds MySQL-specific configuration.
type MySQLConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	// LockWaitSeconds bounds how long SELECT ... FOR UPDATE waits for a row
	// lock before failing with a lock wait timeout.
	LockWaitSeconds int
	MaxOpenConns    int
}

// dsn builds the driver connection string. Unknown params are sent to the
// server as session variables on connect.
func (c *MySQLConfig) dsn() string {
	lockWait := c.LockWaitSeconds
	if lockWait <= 0 {
		lockWait = defaultLockWaitSeconds
	}

	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{
		"charset":                  "utf8mb4",
		"innodb_lock_wait_timeout": strconv.Itoa(lockWait),
		"transaction_isolation":    "'READ-COMMITTED'",
	}
	return cfg.FormatDSN()
}

// MySQLManager handles the review database on MySQL.
type MySQLManager struct {
	baseManager
	location string // host:port/database for display
}

// NewMySQLManager connects to MySQL and configures the connection pool.
func NewMySQLManager(cfg *MySQLConfig, opts Options) (*MySQLManager, error) {
	db, err := gorm.Open(gormmysql.Open(cfg.dsn()), opts.gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMySQLMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	m := &MySQLManager{
		baseManager: opts.base(db),
		location:    fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Database),
	}
	m.log.Debug("mysql database opened",
		logger.String("location", m.location),
		logger.Int("max_open_conns", maxOpen))
	return m, nil
}

// Initialize creates the schema and seeds initial data.
func (m *MySQLManager) Initialize(ctx context.Context) error {
	return m.migrate(ctx)
}

// DB returns the underlying GORM database.
func (m *MySQLManager) DB() *gorm.DB {
	return m.db
}

// Path returns the database location (host:port/database).
func (m *MySQLManager) Path() string {
	return m.location
}

// Close closes the database connection.
func (m *MySQLManager) Close() error {
	return closeDB(m.db)
}
