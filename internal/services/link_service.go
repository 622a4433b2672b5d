package services

import (
	"errors"
	"log"

	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"gorm.io/gorm"
)

// CreateLink associates a document with a program. The caller must own
// both sides; a second link for the same (program, document) pair is a
// Conflict, checked up front and backed by the unique index.
func CreateLink(db *gorm.DB, userID, programID, documentID string, usageNotes *string) (*models.ProgramDocument, error) {
	var program models.Program
	if err := db.Where("id = ?", programID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Program not found", "programs.notfound")
		}
		return nil, types.Internal("Failed to fetch program", "links.create")
	}
	if program.UserID != userID {
		return nil, types.Forbidden("You do not own this program", "programs.forbidden")
	}

	var doc models.Document
	if err := db.Where("id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Document not found", "documents.notfound")
		}
		return nil, types.Internal("Failed to fetch document", "links.create")
	}
	if doc.UserID != userID {
		return nil, types.Forbidden("You do not own this document", "documents.forbidden")
	}

	var count int64
	if err := db.Model(&models.ProgramDocument{}).
		Where("program_id = ? AND document_id = ?", programID, documentID).
		Count(&count).Error; err != nil {
		return nil, types.Internal("Failed to create link", "links.create")
	}
	if count > 0 {
		return nil, types.Conflict("Document is already linked to this program", "links.conflict.duplicate")
	}

	link := &models.ProgramDocument{
		ProgramID:  programID,
		DocumentID: documentID,
		UsageNotes: usageNotes,
	}
	if err := db.Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, types.Conflict("Document is already linked to this program", "links.conflict.duplicate")
		}
		log.Printf("Failed to create link: %v", err)
		return nil, types.Internal("Failed to create link", "links.create")
	}
	return link, nil
}

// ListLinks returns a program's links with document metadata preloaded.
// The program lookup is owner-scoped, so a stranger's program reads as
// NotFound.
func ListLinks(db *gorm.DB, userID, programID string) ([]models.ProgramDocument, error) {
	var program models.Program
	if err := db.Where("id = ? AND user_id = ?", programID, userID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Program not found", "programs.notfound")
		}
		return nil, types.Internal("Failed to fetch program", "links.list")
	}

	var links []models.ProgramDocument
	if err := db.Preload("Document").Where("program_id = ?", programID).
		Order("created_at").Find(&links).Error; err != nil {
		log.Printf("Failed to list links for program %s: %v", programID, err)
		return nil, types.Internal("Failed to list links", "links.list")
	}
	return links, nil
}

// fetchOwnedLink resolves a link and checks ownership through its program:
// existence first (NotFound), then owner (Forbidden).
func fetchOwnedLink(db *gorm.DB, userID, linkID string) (*models.ProgramDocument, error) {
	var link models.ProgramDocument
	if err := db.Where("id = ?", linkID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Link not found", "links.notfound")
		}
		return nil, types.Internal("Failed to fetch link", "links.get")
	}

	var program models.Program
	if err := db.Where("id = ?", link.ProgramID).First(&program).Error; err != nil {
		return nil, types.Internal("Failed to fetch link", "links.get")
	}
	if program.UserID != userID {
		return nil, types.Forbidden("You do not own this link", "links.forbidden")
	}
	return &link, nil
}

// UpdateLink changes a link's usage notes
func UpdateLink(db *gorm.DB, userID, linkID string, usageNotes *string) (*models.ProgramDocument, error) {
	link, err := fetchOwnedLink(db, userID, linkID)
	if err != nil {
		return nil, err
	}

	link.UsageNotes = usageNotes
	if err := db.Save(link).Error; err != nil {
		log.Printf("Failed to update link %s: %v", linkID, err)
		return nil, types.Internal("Failed to update link", "links.update")
	}
	return link, nil
}

// DeleteLink removes a link (unlink). The document itself is untouched.
func DeleteLink(db *gorm.DB, userID, linkID string) error {
	link, err := fetchOwnedLink(db, userID, linkID)
	if err != nil {
		return err
	}

	if err := db.Delete(link).Error; err != nil {
		log.Printf("Failed to delete link %s: %v", linkID, err)
		return types.Internal("Failed to delete link", "links.delete")
	}
	return nil
}
