package handlers_test

import (
	"log"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evote-backend/cache"
	"evote-backend/database"
	"evote-backend/handlers"
	"evote-backend/middleware"
	"evote-backend/models"
	"evote-backend/repository"
	"evote-backend/routes"
	"evote-backend/service"
	"evote-backend/translate"
	"evote-backend/websocket"
)

// SetupTestEnvironment sets up the Gin router and in-memory SQLite database for testing.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	testing.Init()
	gin.SetMode(gin.TestMode)

	// Redis runs in mock mode for tests
	os.Setenv("REDIS_MOCK", "true")
	if err := cache.InitRedis(); err != nil {
		t.Fatalf("Failed to init redis mock: %v", err)
	}
	cache.ResetMock()

	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		// Silence GORM logger for tests unless needed
		Logger: logger.Default.LogMode(logger.Silent),
		// Duplicate key detection in the vote path relies on error translation
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	database.DB = db

	// Migrate the schema
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := database.DB.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	// Wire the services against the test database
	pollRepo := repository.NewPollRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	userRepo := repository.NewUserRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)

	hub := websocket.NewHub()

	handlers.InitHandler(
		service.NewAuthService(userRepo, nil),
		service.NewPollService(pollRepo, nil),
		service.NewVoteService(pollRepo, voteRepo, nil, nil, nil),
		service.NewInquiryService(inquiryRepo, userRepo),
		translate.NewClient(),
		hub,
	)

	router := routes.SetupRouter(hub)
	return router, db
}

// ClearTables removes all rows between tests.
func ClearTables(db *gorm.DB) {
	// Order matters due to foreign key constraints
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.Vote{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.PollOption{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.Poll{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.InquiryMessage{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.Inquiry{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.User{})
	cache.ResetMock()
}

// createTestUser inserts a user and returns it with a valid bearer token.
func createTestUser(t *testing.T, db *gorm.DB, email, role string) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Username:     "Test " + role,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	return user, token
}

// createTestPoll inserts an active poll with the given option labels.
func createTestPoll(t *testing.T, db *gorm.DB, title string, creatorID uint, labels ...string) *models.Poll {
	t.Helper()

	poll := &models.Poll{
		Title:     title,
		Status:    models.PollStatusActive,
		CreatedBy: creatorID,
	}
	for i, label := range labels {
		poll.Options = append(poll.Options, models.PollOption{Position: i, Label: label})
	}
	if err := db.Create(poll).Error; err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}
