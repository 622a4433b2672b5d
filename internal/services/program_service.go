package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"gorm.io/gorm"
)

// ProgramInput holds the mutable fields of a program
type ProgramInput struct {
	UniversityName    string  `json:"universityName"`
	FieldOfStudy      *string `json:"fieldOfStudy"`
	FocusArea         *string `json:"focusArea"`
	ApplicationPortal *string `json:"applicationPortal"`
	Website           *string `json:"website"`
	Deadline          *string `json:"deadline"` // YYYY-MM-DD
	Status            string  `json:"status"`
	Tuition           *string `json:"tuition"`
	Requirements      *string `json:"requirements"`
	Notes             *string `json:"notes"`
}

// programFilterColumns maps recognized text filter fields to their columns.
// Unknown field names are skipped silently; deadline is handled separately.
var programFilterColumns = map[string]string{
	"universityName":    "university_name",
	"fieldOfStudy":      "field_of_study",
	"focusArea":         "focus_area",
	"status":            "status",
	"applicationPortal": "application_portal",
	"website":           "website",
	"tuition":           "tuition",
	"requirements":      "requirements",
}

func parseProgramInput(in ProgramInput) (*models.Program, error) {
	university := strings.TrimSpace(in.UniversityName)
	if university == "" {
		return nil, types.Validation("University name is required", "programs.validation.university")
	}

	status := models.ProgramStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.StatusInProgress
	}
	if !status.Valid() {
		return nil, types.Validation("Unknown status value", "programs.validation.status")
	}

	var deadline *time.Time
	if in.Deadline != nil && strings.TrimSpace(*in.Deadline) != "" {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(*in.Deadline))
		if err != nil {
			return nil, types.Validation("Deadline must be a valid YYYY-MM-DD date", "programs.validation.deadline")
		}
		deadline = &d
	}

	return &models.Program{
		UniversityName:    university,
		FieldOfStudy:      in.FieldOfStudy,
		FocusArea:         in.FocusArea,
		ApplicationPortal: in.ApplicationPortal,
		Website:           in.Website,
		Deadline:          deadline,
		Status:            status,
		Tuition:           in.Tuition,
		Requirements:      in.Requirements,
		Notes:             in.Notes,
	}, nil
}

// CreateProgram creates a program owned by userID
func CreateProgram(db *gorm.DB, userID string, in ProgramInput) (*models.Program, error) {
	program, err := parseProgramInput(in)
	if err != nil {
		return nil, err
	}
	program.UserID = userID

	if err := db.Create(program).Error; err != nil {
		log.Printf("Failed to create program: %v", err)
		return nil, types.Internal("Failed to create program", "programs.create")
	}
	return program, nil
}

// GetProgram fetches one program scoped to its owner. A missing program and
// someone else's program are indistinguishable for reads.
func GetProgram(db *gorm.DB, userID, programID string) (*models.Program, error) {
	var program models.Program
	err := db.Where("id = ? AND user_id = ?", programID, userID).First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Program not found", "programs.notfound")
		}
		return nil, types.Internal("Failed to fetch program", "programs.get")
	}
	return &program, nil
}

// ListPrograms returns the caller's programs narrowed by filters. Text
// fields match by case-insensitive substring (a NULL column never matches),
// deadline matches the exact calendar date. All predicates are AND-combined
// with the mandatory ownership predicate. Blank values and unknown field
// names are ignored; a malformed deadline is a Validation error.
func ListPrograms(db *gorm.DB, userID string, filters map[string]string) ([]models.Program, error) {
	query := db.Where("user_id = ?", userID)

	for field, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if field == "deadline" {
			day, err := time.Parse("2006-01-02", value)
			if err != nil {
				return nil, types.Validation("Deadline filter must be a valid YYYY-MM-DD date", "programs.validation.deadline")
			}
			query = query.Where("deadline >= ? AND deadline < ?", day, day.AddDate(0, 0, 1))
			continue
		}

		column, ok := programFilterColumns[field]
		if !ok {
			continue
		}
		query = query.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
	}

	var programs []models.Program
	if err := query.Order("created_at DESC").Find(&programs).Error; err != nil {
		log.Printf("Failed to list programs for user %s: %v", userID, err)
		return nil, types.Internal("Failed to list programs", "programs.list")
	}
	return programs, nil
}

// UpdateProgram mutates a program after the ownership check. The check runs
// existence first, then ownership: updating a nonexistent id is NotFound
// even for a different caller, someone else's program is Forbidden.
func UpdateProgram(db *gorm.DB, userID, programID string, in ProgramInput) (*models.Program, error) {
	var program models.Program
	if err := db.Where("id = ?", programID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Program not found", "programs.notfound")
		}
		return nil, types.Internal("Failed to fetch program", "programs.get")
	}
	if program.UserID != userID {
		return nil, types.Forbidden("You do not own this program", "programs.forbidden")
	}

	parsed, err := parseProgramInput(in)
	if err != nil {
		return nil, err
	}

	// UserID is immutable; copy only the mutable fields
	program.UniversityName = parsed.UniversityName
	program.FieldOfStudy = parsed.FieldOfStudy
	program.FocusArea = parsed.FocusArea
	program.ApplicationPortal = parsed.ApplicationPortal
	program.Website = parsed.Website
	program.Deadline = parsed.Deadline
	program.Status = parsed.Status
	program.Tuition = parsed.Tuition
	program.Requirements = parsed.Requirements
	program.Notes = parsed.Notes

	if err := db.Save(&program).Error; err != nil {
		log.Printf("Failed to update program %s: %v", programID, err)
		return nil, types.Internal("Failed to update program", "programs.update")
	}
	return &program, nil
}

// DeleteProgram removes a program and its links inside one transaction.
// Linked documents are never deleted. NotFound takes priority over
// Forbidden, matching the delete-ordering contract.
func DeleteProgram(db *gorm.DB, userID, programID string) error {
	var program models.Program
	if err := db.Where("id = ?", programID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Program not found", "programs.notfound")
		}
		return types.Internal("Failed to fetch program", "programs.get")
	}
	if program.UserID != userID {
		return types.Forbidden("You do not own this program", "programs.forbidden")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("program_id = ?", programID).Delete(&models.ProgramDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&program).Error
	})
	if err != nil {
		log.Printf("Failed to delete program %s: %v", programID, err)
		return types.Internal("Failed to delete program", "programs.delete")
	}
	return nil
}
