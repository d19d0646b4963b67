package postgres

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"screw-inspection/domain/models"
	applog "screw-inspection/pkg/logger"
)

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

func NewDatabase(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "sqlite":
		dialector = sqlite.Open(config.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000")
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			config.Host, config.User, config.Password, config.DBName, config.Port, config.SSLMode)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	logLevel := logger.Warn
	if config.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, GormConfig(logger.Default.LogMode(logLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serializes writers; one connection avoids SQLITE_BUSY under load
		sqlDB.SetMaxOpenConns(1)
	}

	applog.DB("connected", "Database connection opened", map[string]interface{}{
		"driver": dialector.Name(),
	})
	return db, nil
}

// GormConfig is shared by production and test databases so timestamps are
// always stored in UTC.
func GormConfig(l logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:  l,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.InferenceEngine{},
		&models.ACModel{},
		&models.GlobalSettings{},
		&models.InspectionRecord{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %w", err)
	}
	applog.DB("auto_migrated", "Schema migrated", nil)

	return runIndexMigrations(db)
}

// runIndexMigrations creates indexes AutoMigrate cannot express. The
// partial unique index makes a second active engine a constraint violation.
func runIndexMigrations(db *gorm.DB) error {
	migrations := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_inference_engines_single_active ON inference_engines (active) WHERE active`,
		`CREATE INDEX IF NOT EXISTS idx_inspection_records_team_created ON inspection_records (team, created_at)`,
	}

	for _, sql := range migrations {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("migration failed: %s: %w", sql, err)
		}
	}
	applog.DB("indexes_migrated", "Index migrations applied", map[string]interface{}{"count": len(migrations)})
	return nil
}
