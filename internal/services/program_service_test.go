package services_test

import (
	"testing"

	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/services"
)

func TestCreateProgramDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	program, err := services.CreateProgram(db, user.ID, services.ProgramInput{
		UniversityName: "  Stanford University  ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if program.UniversityName != "Stanford University" {
		t.Errorf("Expected trimmed name, got %q", program.UniversityName)
	}
	if program.Status != models.StatusInProgress {
		t.Errorf("Expected default status %q, got %q", models.StatusInProgress, program.Status)
	}
	if program.UserID != user.ID {
		t.Errorf("Expected owner %s, got %s", user.ID, program.UserID)
	}
}

func TestCreateProgramValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	_, err := services.CreateProgram(db, user.ID, services.ProgramInput{UniversityName: "   "})
	assertErrorType(t, err, 400, "programs.validation.university")

	_, err = services.CreateProgram(db, user.ID, services.ProgramInput{
		UniversityName: "MIT",
		Status:         "Enrolled",
	})
	assertErrorType(t, err, 400, "programs.validation.status")

	_, err = services.CreateProgram(db, user.ID, services.ProgramInput{
		UniversityName: "MIT",
		Deadline:       str("01/15/2026"),
	})
	assertErrorType(t, err, 400, "programs.validation.deadline")
}

func TestProgramOwnershipIsolation(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "a@example.com")
	stranger := createTestUser(t, db, "b@example.com")

	program, err := services.CreateProgram(db, owner.ID, services.ProgramInput{UniversityName: "MIT"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Reads mask existence: stranger sees NotFound, not Forbidden
	_, err = services.GetProgram(db, stranger.ID, program.ID)
	assertErrorType(t, err, 404, "programs.notfound")

	// Mutations reveal ownership after the existence check
	_, err = services.UpdateProgram(db, stranger.ID, program.ID, services.ProgramInput{UniversityName: "MIT"})
	assertErrorType(t, err, 403, "programs.forbidden")

	err = services.DeleteProgram(db, stranger.ID, program.ID)
	assertErrorType(t, err, 403, "programs.forbidden")

	// A missing id is NotFound for everyone, owner included
	_, err = services.UpdateProgram(db, owner.ID, "missing-id", services.ProgramInput{UniversityName: "MIT"})
	assertErrorType(t, err, 404, "programs.notfound")

	// Lists never leak across owners
	programs, err := services.ListPrograms(db, stranger.ID, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(programs) != 0 {
		t.Errorf("Expected empty list for stranger, got %d", len(programs))
	}
}

func TestListProgramsFilters(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	mk := func(in services.ProgramInput) *models.Program {
		p, err := services.CreateProgram(db, user.ID, in)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		return p
	}

	stanford := mk(services.ProgramInput{
		UniversityName: "Stanford University",
		FieldOfStudy:   str("Computer Science"),
		Status:         "Applied",
		Deadline:       str("2026-01-15"),
	})
	mk(services.ProgramInput{
		UniversityName: "MIT",
		FieldOfStudy:   str("Mathematics"),
		Status:         "Rejected",
		Deadline:       str("2026-02-01"),
	})
	noDeadline := mk(services.ProgramInput{
		UniversityName: "ETH Zurich",
	})

	// Case-insensitive substring match
	got, err := services.ListPrograms(db, user.ID, map[string]string{"universityName": "stanford"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != stanford.ID {
		t.Errorf("Expected only Stanford, got %d results", len(got))
	}

	// Filters combine with AND
	got, err = services.ListPrograms(db, user.ID, map[string]string{
		"fieldOfStudy": "science",
		"status":       "applied",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != stanford.ID {
		t.Errorf("Expected only Stanford for combined filters, got %d results", len(got))
	}

	// Deadline matches the exact calendar date; NULL deadlines never match
	got, err = services.ListPrograms(db, user.ID, map[string]string{"deadline": "2026-01-15"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != stanford.ID {
		t.Errorf("Expected only Stanford for deadline filter, got %d results", len(got))
	}

	// Unknown field names and blank values are ignored
	got, err = services.ListPrograms(db, user.ID, map[string]string{"nonsense": "x", "status": "  "})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected all 3 programs, got %d", len(got))
	}

	// A NULL text column never matches a substring filter
	got, err = services.ListPrograms(db, user.ID, map[string]string{"fieldOfStudy": "e"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, p := range got {
		if p.ID == noDeadline.ID {
			t.Error("Program with NULL fieldOfStudy must not match")
		}
	}

	// Malformed deadline is a validation error, not an empty result
	_, err = services.ListPrograms(db, user.ID, map[string]string{"deadline": "15-01-2026"})
	assertErrorType(t, err, 400, "programs.validation.deadline")
}

func TestUpdateProgram(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	program, err := services.CreateProgram(db, user.ID, services.ProgramInput{
		UniversityName: "MIT",
		Notes:          str("first choice"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := services.UpdateProgram(db, user.ID, program.ID, services.ProgramInput{
		UniversityName: "MIT",
		Status:         "Accepted",
		Deadline:       str("2026-03-01"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.StatusAccepted {
		t.Errorf("Expected status Accepted, got %q", updated.Status)
	}
	if updated.Deadline == nil {
		t.Fatal("Expected deadline set")
	}
	// Omitted optional fields clear to null on full update
	if updated.Notes != nil {
		t.Errorf("Expected notes cleared, got %q", *updated.Notes)
	}
	if updated.UserID != user.ID {
		t.Error("Owner must never change on update")
	}
}

func TestDeleteProgramRemovesLinksOnly(t *testing.T) {
	db := setupTestDB(t)
	files := newTestStore(t)
	user := createTestUser(t, db, "a@example.com")

	program, err := services.CreateProgram(db, user.ID, services.ProgramInput{UniversityName: "MIT"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	doc := uploadTestDocument(t, db, files, user.ID, "cv.pdf")
	if _, err := services.CreateLink(db, user.ID, program.ID, doc.ID, nil); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	if err := services.DeleteProgram(db, user.ID, program.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var links int64
	if err := db.Model(&models.ProgramDocument{}).Where("program_id = ?", program.ID).Count(&links).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if links != 0 {
		t.Errorf("Expected links removed with the program, got %d", links)
	}

	// The linked document survives
	if _, err := services.GetDocument(db, user.ID, doc.ID); err != nil {
		t.Errorf("Document must survive program deletion: %v", err)
	}
}
