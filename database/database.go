package database

import (
	"fmt"

	"trackify/config"
	"trackify/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared gorm handle.
var DB *gorm.DB

// Init opens the MySQL connection, configures the pool and migrates the
// schema. Category defaults are not seeded here: they are per-user and
// created on demand through the categories defaults endpoint.
func Init(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	logMode := logger.Info
	if cfg.Server.Mode == "release" {
		logMode = logger.Warn
	}

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Category{},
		&models.ContactMessage{},
		&models.Notification{},
	); err != nil {
		return err
	}

	logrus.Info("database initialized")
	return nil
}

// GetDB returns the shared gorm handle.
func GetDB() *gorm.DB {
	return DB
}

// Ping reports whether the underlying connection is alive. Used by the
// health endpoint.
func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
