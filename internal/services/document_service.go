package services

import (
	"errors"
	"io"
	"log"

	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"gorm.io/gorm"
)

// UploadInput holds one incoming document upload
type UploadInput struct {
	FileName     string
	Size         int64
	DocumentType string
	Notes        *string
	Content      io.Reader
}

// UploadDocument validates, stages and commits a new document. The metadata
// row is written inside the transaction pointing at the final path; the
// staged file moves into place only after the transaction commits, and is
// discarded on rollback without touching the final path.
func UploadDocument(db *gorm.DB, files *storage.Store, userID string, in UploadInput) (*models.Document, error) {
	if err := storage.ValidateUpload(in.FileName, in.Size); err != nil {
		return nil, err
	}

	staged, err := files.Stage(userID, in.FileName, in.Content)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:       userID,
		FileName:     storage.SanitizeFileName(in.FileName),
		FilePath:     staged.FinalPath,
		DocumentType: in.DocumentType,
		Notes:        in.Notes,
	}

	hooks := storage.NewTxHooks()
	hooks.AfterCommit(func() error { return files.Promote(staged) })
	hooks.AfterRollback(func() { files.Discard(staged) })

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(doc).Error
	}); err != nil {
		hooks.Rollback()
		log.Printf("Failed to create document for user %s: %v", userID, err)
		return nil, types.Internal("Failed to upload document", "documents.upload")
	}

	if err := hooks.Commit(); err != nil {
		// The row committed but the file never reached its final path.
		// Remove the staged file and compensate by deleting the row so no
		// visible metadata references a missing file.
		files.Discard(staged)
		if derr := db.Where("id = ?", doc.ID).Delete(&models.Document{}).Error; derr != nil {
			log.Printf("Failed to compensate document %s after move failure: %v", doc.ID, derr)
		}
		log.Printf("Failed to move staged file for document %s: %v", doc.ID, err)
		return nil, types.Internal("Failed to store document file", "documents.storage.move")
	}

	return doc, nil
}

// GetDocument fetches one document scoped to its owner
func GetDocument(db *gorm.DB, userID, documentID string) (*models.Document, error) {
	var doc models.Document
	err := db.Where("id = ? AND user_id = ?", documentID, userID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Document not found", "documents.notfound")
		}
		return nil, types.Internal("Failed to fetch document", "documents.get")
	}
	return &doc, nil
}

// ListDocuments returns all of the caller's documents
func ListDocuments(db *gorm.DB, userID string) ([]models.Document, error) {
	var docs []models.Document
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error; err != nil {
		log.Printf("Failed to list documents for user %s: %v", userID, err)
		return nil, types.Internal("Failed to list documents", "documents.list")
	}
	return docs, nil
}

// fetchOwnedDocument applies the mutation ordering contract: existence
// first (NotFound), then ownership (Forbidden).
func fetchOwnedDocument(db *gorm.DB, userID, documentID string) (*models.Document, error) {
	var doc models.Document
	if err := db.Where("id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Document not found", "documents.notfound")
		}
		return nil, types.Internal("Failed to fetch document", "documents.get")
	}
	if doc.UserID != userID {
		return nil, types.Forbidden("You do not own this document", "documents.forbidden")
	}
	return &doc, nil
}

// ReplaceDocument updates a document. With a file attached (in.Content not
// nil) the new file goes through the same stage/commit dance as an upload
// and the superseded file is removed best-effort after the move; without a
// file only the metadata fields change.
func ReplaceDocument(db *gorm.DB, files *storage.Store, userID, documentID string, in UploadInput) (*models.Document, error) {
	doc, err := fetchOwnedDocument(db, userID, documentID)
	if err != nil {
		return nil, err
	}

	if in.Content == nil {
		if in.DocumentType != "" {
			doc.DocumentType = in.DocumentType
		}
		if in.Notes != nil {
			doc.Notes = in.Notes
		}
		if err := db.Save(doc).Error; err != nil {
			log.Printf("Failed to update document %s: %v", documentID, err)
			return nil, types.Internal("Failed to update document", "documents.update")
		}
		return doc, nil
	}

	if err := storage.ValidateUpload(in.FileName, in.Size); err != nil {
		return nil, err
	}

	staged, err := files.Stage(userID, in.FileName, in.Content)
	if err != nil {
		return nil, err
	}

	oldPath := doc.FilePath
	doc.FileName = storage.SanitizeFileName(in.FileName)
	doc.FilePath = staged.FinalPath
	if in.DocumentType != "" {
		doc.DocumentType = in.DocumentType
	}
	if in.Notes != nil {
		doc.Notes = in.Notes
	}

	hooks := storage.NewTxHooks()
	hooks.AfterCommit(func() error {
		if err := files.Promote(staged); err != nil {
			return err
		}
		// Old-file removal is best-effort: a failure leaks one file but
		// never rolls back the new file or the metadata update.
		files.RemoveBestEffort(oldPath)
		return nil
	})
	hooks.AfterRollback(func() { files.Discard(staged) })

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(doc).Error
	}); err != nil {
		hooks.Rollback()
		log.Printf("Failed to replace document %s: %v", documentID, err)
		return nil, types.Internal("Failed to replace document", "documents.replace")
	}

	if err := hooks.Commit(); err != nil {
		files.Discard(staged)
		if derr := db.Model(&models.Document{}).Where("id = ?", doc.ID).
			Updates(map[string]interface{}{"file_name": doc.FileName, "file_path": oldPath}).Error; derr != nil {
			log.Printf("Failed to compensate document %s after move failure: %v", doc.ID, derr)
		}
		log.Printf("Failed to move staged file for document %s: %v", doc.ID, err)
		return nil, types.Internal("Failed to store document file", "documents.storage.move")
	}

	return doc, nil
}

// ReplaceDocumentPath switches a document to a file that is already on
// disk. This is the non-deferred variant of the replace invariant: the new
// path is validated up front and the old file is deleted synchronously
// before the metadata switches, so the row never references a missing file.
func ReplaceDocumentPath(db *gorm.DB, files *storage.Store, userID, documentID, newPath string) (*models.Document, error) {
	doc, err := fetchOwnedDocument(db, userID, documentID)
	if err != nil {
		return nil, err
	}

	if err := storage.ValidateExistingPath(newPath); err != nil {
		return nil, err
	}

	if newPath != doc.FilePath {
		if err := files.Remove(doc.FilePath); err != nil {
			log.Printf("Failed to remove old file %s for document %s: %v", doc.FilePath, documentID, err)
			return nil, types.Internal("Failed to remove the previous file", "documents.storage.remove")
		}
	}

	doc.FilePath = newPath
	doc.FileName = storage.SanitizeFileName(newPath)
	if err := db.Save(doc).Error; err != nil {
		log.Printf("Failed to update document %s path: %v", documentID, err)
		return nil, types.Internal("Failed to update document", "documents.update")
	}
	return doc, nil
}

// DeleteDocument removes a document. The reference guard runs first: a
// document still linked to any program is a Conflict. File removal is
// synchronous and precedes the row delete; a removal failure aborts the
// whole delete and leaves the metadata intact.
func DeleteDocument(db *gorm.DB, files *storage.Store, userID, documentID string) error {
	doc, err := fetchOwnedDocument(db, userID, documentID)
	if err != nil {
		return err
	}

	var links int64
	if err := db.Model(&models.ProgramDocument{}).Where("document_id = ?", documentID).Count(&links).Error; err != nil {
		return types.Internal("Failed to check document links", "documents.delete")
	}
	if links > 0 {
		return types.Conflict("Document is linked to a program; unlink it first", "documents.conflict.referenced")
	}

	if err := files.Remove(doc.FilePath); err != nil {
		log.Printf("Failed to remove file %s for document %s: %v", doc.FilePath, documentID, err)
		return types.Internal("Failed to remove document file", "documents.storage.remove")
	}

	if err := db.Delete(doc).Error; err != nil {
		log.Printf("Failed to delete document %s: %v", documentID, err)
		return types.Internal("Failed to delete document", "documents.delete")
	}
	return nil
}
