package validation

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quizreport/internal/config"
	apierrors "quizreport/internal/errors"
)

// Upload describes one candidate source before it is parsed
type Upload struct {
	Name string
	Size int64
}

// FileValidator checks quiz exports handed to the CLI or uploaded over HTTP
type FileValidator struct {
	logger   *slog.Logger
	maxFiles int
	maxBytes int64
}

// NewFileValidator creates a validator enforcing the report upload limits
func NewFileValidator(logger *slog.Logger, cfg config.ReportConfig) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger.With(slog.String("component", "file_validator")),
		maxFiles: cfg.MaxFiles,
		maxBytes: cfg.MaxUploadBytes,
	}
}

// ValidateName rejects names that are not xlsx workbooks or are Office lock files
func (v *FileValidator) ValidateName(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, config.OfficeLockPrefix) {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", name))
		return apierrors.ErrValidation("files", fmt.Sprintf("%s is a temporary Excel file", base))
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext != config.WorkbookExtension {
		v.logger.Warn("Rejecting non-xlsx file",
			slog.String("file", name),
			slog.String("extension", ext))
		return apierrors.ErrValidation("files", fmt.Sprintf("%s is not an .xlsx workbook", base))
	}
	return nil
}

// ValidateBatch checks an upload batch: at least one file, within the file
// count and total size limits, every file a non-empty workbook.
func (v *FileValidator) ValidateBatch(uploads []Upload) error {
	if len(uploads) == 0 {
		return apierrors.ErrNoFiles
	}
	if v.maxFiles > 0 && len(uploads) > v.maxFiles {
		return apierrors.ErrValidation("files",
			fmt.Sprintf("at most %d files can be consolidated at once, got %d", v.maxFiles, len(uploads)))
	}

	var total int64
	for _, u := range uploads {
		if err := v.ValidateName(u.Name); err != nil {
			return err
		}
		if u.Size <= 0 {
			return apierrors.ErrValidation("files", fmt.Sprintf("%s is empty", filepath.Base(u.Name)))
		}
		total += u.Size
	}

	if v.maxBytes > 0 && total > v.maxBytes {
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"Upload exceeds the maximum allowed size",
			map[string]int64{"max_bytes": v.maxBytes, "size": total})
	}

	v.logger.Debug("Upload batch validated",
		slog.Int("files", len(uploads)),
		slog.Int64("bytes", total))
	return nil
}

// ValidateSourceFile checks that path is a readable, non-empty xlsx file
func (v *FileValidator) ValidateSourceFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	return v.ValidateBatch([]Upload{{Name: path, Size: info.Size()}})
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
