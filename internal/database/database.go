package database

import (
	"log"
	"os"
	"socialnet/backend/internal/models"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) {
	var err error

	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
		// Needed so a violated unique index surfaces as gorm.ErrDuplicatedKey,
		// which the relationship store maps to a pair conflict.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established.")

	// Run migrations
	err = DB.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Post{},
		&models.PostMedia{},
		&models.PostReaction{},
		&models.Comment{},
		&models.Message{},
		&models.MessageMedia{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully.")
}
