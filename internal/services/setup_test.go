package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/services"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/EliseTrad/gradapptracker/internal/types"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Program{},
		&models.Document{},
		&models.ProgramDocument{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user, err := services.RegisterUser(db, services.RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "Secret123",
	})
	if err != nil {
		t.Fatalf("Failed to register %s: %v", email, err)
	}
	return user
}

func uploadTestDocument(t *testing.T, db *gorm.DB, files *storage.Store, userID, fileName string) *models.Document {
	t.Helper()
	doc, err := services.UploadDocument(db, files, userID, services.UploadInput{
		FileName:     fileName,
		Size:         5,
		DocumentType: "Transcript",
		Content:      strings.NewReader("hello"),
	})
	if err != nil {
		t.Fatalf("Failed to upload %s: %v", fileName, err)
	}
	return doc
}

func assertErrorType(t *testing.T, err error, wantCode int, wantType string) {
	t.Helper()
	var ce *types.CustomError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected *types.CustomError, got %T: %v", err, err)
	}
	if ce.Code != wantCode {
		t.Errorf("Expected code %d, got %d", wantCode, ce.Code)
	}
	if ce.Type != wantType {
		t.Errorf("Expected type %q, got %q", wantType, ce.Type)
	}
}

func str(s string) *string { return &s }
