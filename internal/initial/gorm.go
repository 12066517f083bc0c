package initial

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"Omamori/internal/config"
	alertEntity "Omamori/internal/modules/alert/domain/entity"
	monitoringEntity "Omamori/internal/modules/monitoring/domain/entity"
	orgEntity "Omamori/internal/modules/organization/domain/entity"
	userEntity "Omamori/internal/modules/user/domain/entity"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userEntity.UserInfo{},
		&orgEntity.Organization{},
		&orgEntity.Membership{},
		&monitoringEntity.WorkSession{},
		&monitoringEntity.SafetyLog{},
		&monitoringEntity.RiskAssessment{},
		&monitoringEntity.MonitorJob{},
		&alertEntity.Alert{},
		&alertEntity.AlertOutboxEvent{},
	}
}

func openDialector(conf config.DatabaseConfig) (gorm.Dialector, error) {
	switch conf.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			conf.User, conf.Password, conf.Host, conf.Port, conf.DatabaseName)
		return mysql.Open(dsn), nil
	case "postgres", "pg":
		sslMode := conf.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			conf.Host, conf.Port, conf.User, conf.Password, conf.DatabaseName, sslMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := conf.Path
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		return sqlite.Open(path), nil
	}
	return nil, errors.New("unsupported database driver: " + conf.Driver)
}

// InitGorm opens the configured database and migrates the schema.
func InitGorm(conf config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := openDialector(conf)
	if err != nil {
		return nil, err
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if conf.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}
