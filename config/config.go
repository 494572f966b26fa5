package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/services"
)

// InitDB opens the database selected by DB_DRIVER. MySQL is the
// production target; sqlite keeps local development and CI self-contained.
func InitDB() (*gorm.DB, error) {
	driver := getEnv("DB_DRIVER", "sqlite")

	switch driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			getEnv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			getEnv("DB_NAME", "commerce_admin"),
		)
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(getEnv("DB_PATH", "commerce_admin.db")), &gorm.Config{})
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// AppPort returns the HTTP listen port.
func AppPort() string {
	return getEnv("APP_PORT", "8080")
}

// RefundPolicy reads the partial-refund policy from the environment.
func RefundPolicy() services.RefundPolicy {
	if getEnv("REFUND_POLICY", string(services.MarkPartiallyRefunded)) == string(services.MarkRefunded) {
		return services.MarkRefunded
	}
	return services.MarkPartiallyRefunded
}

// SeedData reports whether dev sample data should be loaded at startup.
func SeedData() bool {
	return getEnv("SEED_DATA", "false") == "true"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
