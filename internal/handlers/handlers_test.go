package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EliseTrad/gradapptracker/internal/auth"
	"github.com/EliseTrad/gradapptracker/internal/handlers"
	"github.com/EliseTrad/gradapptracker/internal/middleware"
	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/router"
	"github.com/EliseTrad/gradapptracker/internal/storage"
)

// setupTestApp wires handlers onto a Fiber app backed by in-memory SQLite
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Program{},
		&models.Document{},
		&models.ProgramDocument{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	files, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	issuer := auth.NewIssuer("test-secret", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: router.ErrorHandler})

	authHandler := &handlers.AuthHandler{DB: db, Issuer: issuer, Files: files}
	programHandler := &handlers.ProgramHandler{DB: db}
	documentHandler := &handlers.DocumentHandler{DB: db, Files: files}
	linkHandler := &handlers.LinkHandler{DB: db}

	api := app.Group("/api")
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	requireUser := middleware.AuthUser(issuer)
	api.Delete("/account", requireUser, authHandler.DeleteAccount)
	api.Post("/programs", requireUser, programHandler.CreateProgram)
	api.Get("/programs", requireUser, programHandler.ListPrograms)
	api.Get("/programs/:id", requireUser, programHandler.GetProgram)
	api.Put("/programs/:id", requireUser, programHandler.UpdateProgram)
	api.Delete("/programs/:id", requireUser, programHandler.DeleteProgram)
	api.Post("/programs/:id/documents", requireUser, linkHandler.CreateLink)
	api.Get("/programs/:id/documents", requireUser, linkHandler.ListLinks)
	api.Put("/links/:id", requireUser, linkHandler.UpdateLink)
	api.Delete("/links/:id", requireUser, linkHandler.DeleteLink)
	api.Post("/documents", requireUser, documentHandler.UploadDocument)
	api.Get("/documents", requireUser, documentHandler.ListDocuments)
	api.Get("/documents/:id", requireUser, documentHandler.GetDocument)
	api.Delete("/documents/:id", requireUser, documentHandler.DeleteDocument)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "Secret123",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Register returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "Secret123",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Login returned %d", resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	resp.Body.Close()
	if login.Token == "" {
		t.Fatal("Expected a token")
	}
	return login.Token
}

func TestAuthMiddleware(t *testing.T) {
	app, _ := setupTestApp(t)

	// No token
	resp := doJSON(t, app, "GET", "/api/programs", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Garbage token
	resp = doJSON(t, app, "GET", "/api/programs", "not-a-token", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 for a bad token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Valid token
	token := registerAndLogin(t, app, "a@example.com")
	resp = doJSON(t, app, "GET", "/api/programs", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 with a valid token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProgramEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerAndLogin(t, app, "a@example.com")

	resp := doJSON(t, app, "POST", "/api/programs", token, map[string]any{
		"universityName": "Stanford University",
		"status":         "Applied",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Create returned %d", resp.StatusCode)
	}
	var program models.Program
	if err := json.NewDecoder(resp.Body).Decode(&program); err != nil {
		t.Fatalf("Failed to decode program: %v", err)
	}
	resp.Body.Close()

	// Filter matches case-insensitively via query parameters
	resp = doJSON(t, app, "GET", "/api/programs?universityName=stanford", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("List returned %d", resp.StatusCode)
	}
	var programs []models.Program
	if err := json.NewDecoder(resp.Body).Decode(&programs); err != nil {
		t.Fatalf("Failed to decode programs: %v", err)
	}
	resp.Body.Close()
	if len(programs) != 1 || programs[0].ID != program.ID {
		t.Errorf("Expected the created program, got %d results", len(programs))
	}

	// Malformed deadline filter is a 400
	resp = doJSON(t, app, "GET", "/api/programs?deadline=not-a-date", token, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for bad deadline filter, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Update then fetch back
	resp = doJSON(t, app, "PUT", "/api/programs/"+program.ID, token, map[string]any{
		"universityName": "Stanford University",
		"status":         "Accepted",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Update returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, "GET", "/api/programs/"+program.ID, token, nil)
	var fetched models.Program
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		t.Fatalf("Failed to decode program: %v", err)
	}
	resp.Body.Close()
	if fetched.Status != models.StatusAccepted {
		t.Errorf("Expected status Accepted, got %q", fetched.Status)
	}

	// Another user gets a 404 for the same id
	otherToken := registerAndLogin(t, app, "b@example.com")
	resp = doJSON(t, app, "GET", "/api/programs/"+program.ID, otherToken, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404 for foreign program, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, "DELETE", "/api/programs/"+program.ID, token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Delete returned %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDocumentUploadEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerAndLogin(t, app, "a@example.com")

	upload := func(fileName, content string) *http.Response {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		fmt.Fprint(part, content)
		writer.WriteField("documentType", "Transcript")
		writer.Close()

		req := httptest.NewRequest("POST", "/api/documents", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		return resp
	}

	resp := upload("transcript.pdf", "content")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Upload returned %d", resp.StatusCode)
	}
	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode document: %v", err)
	}
	resp.Body.Close()
	if doc.FileName != "transcript.pdf" {
		t.Errorf("Expected file name transcript.pdf, got %q", doc.FileName)
	}

	// Disallowed extension is rejected at the gate
	resp = upload("virus.exe", "content")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for bad extension, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing file part is a 400
	resp = doJSON(t, app, "POST", "/api/documents", token, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 without file, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLinkEndpointsConflict(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerAndLogin(t, app, "a@example.com")

	// Program
	resp := doJSON(t, app, "POST", "/api/programs", token, map[string]any{"universityName": "MIT"})
	var program models.Program
	if err := json.NewDecoder(resp.Body).Decode(&program); err != nil {
		t.Fatalf("Failed to decode program: %v", err)
	}
	resp.Body.Close()

	// Document
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "cv.pdf")
	fmt.Fprint(part, "content")
	writer.Close()
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	uploadResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	var doc models.Document
	if err := json.NewDecoder(uploadResp.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode document: %v", err)
	}
	uploadResp.Body.Close()

	// Link it
	resp = doJSON(t, app, "POST", "/api/programs/"+program.ID+"/documents", token, map[string]any{
		"documentId": doc.ID,
		"usageNotes": "official copy",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Link returned %d", resp.StatusCode)
	}
	var link models.ProgramDocument
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		t.Fatalf("Failed to decode link: %v", err)
	}
	resp.Body.Close()

	// Duplicate link is a 409
	resp = doJSON(t, app, "POST", "/api/programs/"+program.ID+"/documents", token, map[string]any{
		"documentId": doc.ID,
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("Expected 409 for duplicate link, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Deleting a linked document is a 409
	resp = doJSON(t, app, "DELETE", "/api/documents/"+doc.ID, token, nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("Expected 409 for guarded delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unlink frees the document
	resp = doJSON(t, app, "DELETE", "/api/links/"+link.ID, token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Unlink returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, "DELETE", "/api/documents/"+doc.ID, token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Delete after unlink returned %d", resp.StatusCode)
	}
	resp.Body.Close()
}
