package database

import (
	"fmt"
	"log"

	"github.com/classhub/school-management-api/internal/config"
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

func Migrate() error {
	log.Println("Running database migrations...")
	err := DB.AutoMigrate(AllModels()...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

// AllModels lists every persisted model in migration-safe order
// (referenced tables before referencing tables).
func AllModels() []any {
	return []any{
		&models.User{},
		&models.School{},
		&models.SchoolMember{},
		&models.Team{},
		&models.TeamMember{},
		&models.Student{},
		&models.Subject{},
		&models.TeacherOnSubject{},
		&models.StudentOnSubject{},
		&models.Assignment{},
		&models.StudentOnAssignment{},
		&models.SkillOnAssignment{},
		&models.CommentOnAssignment{},
		&models.AttendanceTable{},
		&models.AttendanceRow{},
		&models.Attendance{},
		&models.ScoreOnSubject{},
		&models.ScoreOnStudent{},
		&models.FileOnAssignment{},
		&models.FileOnStudentAssignment{},
		&models.FileOnSubject{},
	}
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
