package storage

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/EliseTrad/gradapptracker/internal/types"
	"github.com/google/uuid"
)

// MaxUploadSize is the upload ceiling in bytes (5 MiB)
const MaxUploadSize = 5 << 20

// allowedExtensions is the fixed allow-list of lower-cased file extensions
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
	"txt":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// Store manages on-disk document files under a configured upload root.
// Files live at {root}/{userID}/{uuid}_{sanitizedName}; staged uploads live
// in a per-user tmp subdirectory until the owning transaction commits.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating it if absent
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the upload root directory
func (s *Store) Root() string {
	return s.root
}

// UserDir returns the final directory for a user's files
func (s *Store) UserDir(userID string) string {
	return filepath.Join(s.root, userID)
}

// Extension returns the lower-cased extension of name without the dot
func Extension(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToLower(ext)
}

// AllowedExtension reports whether the file name's extension is permitted
func AllowedExtension(name string) bool {
	_, ok := allowedExtensions[Extension(name)]
	return ok
}

// SanitizeFileName strips path separators and reserved characters from an
// uploaded file name so it cannot escape the user's directory.
func SanitizeFileName(name string) string {
	// Drop any client-supplied directory components first
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	sanitized := strings.TrimSpace(b.String())
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}
	return sanitized
}

// ValidateUpload applies the size/extension gate to an incoming upload.
// Rejections are Validation errors and leave no trace on disk.
func ValidateUpload(fileName string, size int64) error {
	if fileName == "" || size == 0 {
		return types.Validation("No file provided", "documents.validation.file")
	}
	if size > MaxUploadSize {
		return types.Validation(
			fmt.Sprintf("File exceeds the maximum size of %d bytes", MaxUploadSize),
			"documents.validation.size")
	}
	if !AllowedExtension(fileName) {
		return types.Validation(
			fmt.Sprintf("File extension %q is not allowed", Extension(fileName)),
			"documents.validation.extension")
	}
	return nil
}

// StagedFile describes an upload written to its temporary location and the
// final path it will occupy after commit.
type StagedFile struct {
	TempPath   string
	FinalPath  string
	StoredName string
}

// Stage writes the incoming byte stream to a temporary file inside the
// user's tmp subdirectory and computes the final target path. The unique id
// prefix makes concurrent same-name uploads collision-free.
func (s *Store) Stage(userID, fileName string, src io.Reader) (*StagedFile, error) {
	storedName := fmt.Sprintf("%s_%s", uuid.NewString(), SanitizeFileName(fileName))

	tmpDir := filepath.Join(s.root, userID, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, types.Internal("Failed to stage file", "documents.storage.stage")
	}

	staged := &StagedFile{
		TempPath:   filepath.Join(tmpDir, storedName),
		FinalPath:  filepath.Join(s.root, userID, storedName),
		StoredName: storedName,
	}

	dst, err := os.Create(staged.TempPath)
	if err != nil {
		return nil, types.Internal("Failed to stage file", "documents.storage.stage")
	}

	// Cap the copy one byte past the ceiling so an under-reported stream
	// still trips the size gate.
	written, err := io.Copy(dst, io.LimitReader(src, MaxUploadSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.Discard(staged)
		return nil, types.Internal("Failed to stage file", "documents.storage.stage")
	}
	if written > MaxUploadSize {
		s.Discard(staged)
		return nil, types.Validation(
			fmt.Sprintf("File exceeds the maximum size of %d bytes", MaxUploadSize),
			"documents.validation.size")
	}
	if written == 0 {
		s.Discard(staged)
		return nil, types.Validation("No file provided", "documents.validation.file")
	}

	return staged, nil
}

// Promote moves a staged file into its final location. Parent directory
// creation is idempotent; a same-named final file is overwritten, which the
// unique id prefix makes practically impossible.
func (s *Store) Promote(staged *StagedFile) error {
	if err := os.MkdirAll(filepath.Dir(staged.FinalPath), 0o755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}
	if err := os.Rename(staged.TempPath, staged.FinalPath); err != nil {
		return fmt.Errorf("failed to move staged file: %w", err)
	}
	return nil
}

// Discard removes a staged file, never touching the final path
func (s *Store) Discard(staged *StagedFile) {
	if err := os.Remove(staged.TempPath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove staged file %s: %v", staged.TempPath, err)
	}
}

// Remove deletes a committed file. A file that is already gone is not an
// error; any other failure is.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveBestEffort deletes a superseded file after a replace commit.
// Failure is logged, never fatal: the new file and metadata stand.
func (s *Store) RemoveBestEffort(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove superseded file %s: %v", path, err)
	}
}

// RemoveUserDir removes a user's entire upload directory (account deletion)
func (s *Store) RemoveUserDir(userID string) {
	if userID == "" {
		return
	}
	if err := os.RemoveAll(s.UserDir(userID)); err != nil {
		log.Printf("Failed to remove upload directory for user %s: %v", userID, err)
	}
}

// ValidateExistingPath checks a pre-saved file for the replace-path flow:
// the path must exist, be a regular file, sit under the size ceiling and
// carry an allowed extension.
func ValidateExistingPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return types.Validation("File does not exist at the given path", "documents.validation.path")
	}
	if !info.Mode().IsRegular() {
		return types.Validation("Path is not a regular file", "documents.validation.path")
	}
	if info.Size() > MaxUploadSize {
		return types.Validation(
			fmt.Sprintf("File exceeds the maximum size of %d bytes", MaxUploadSize),
			"documents.validation.size")
	}
	if info.Size() == 0 {
		return types.Validation("File is empty", "documents.validation.file")
	}
	if !AllowedExtension(path) {
		return types.Validation(
			fmt.Sprintf("File extension %q is not allowed", Extension(path)),
			"documents.validation.extension")
	}
	return nil
}
