package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlopezj/catedra/internal/app/models"
	"github.com/rlopezj/catedra/internal/app/models/dto"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
	"github.com/rlopezj/catedra/internal/pkg/filenames"
	"github.com/rlopezj/catedra/internal/pkg/filestorage"
)

// subjectStore is the slice of SubjectRepository the reconciler needs.
type subjectStore interface {
	GetOrCreate(ctx context.Context, name string) (*models.Subject, error)
	ListNames(ctx context.Context) ([]string, error)
}

// courseStore is the slice of CourseRepository the reconciler needs.
type courseStore interface {
	GetOrCreate(ctx context.Context, teacherID, subjectID int64, period string) (*models.Course, error)
	ListPeriods(ctx context.Context) ([]string, error)
}

// attachmentStore is the slice of AttachmentRepository the reconciler needs.
type attachmentStore interface {
	Create(ctx context.Context, attachment *models.Attachment) (int64, error)
	GetByNameAndOwner(ctx context.Context, name string, teacherID int64) (*models.Attachment, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	UpdateName(ctx context.Context, id int64, newName string) error
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, teacherID int64, search string) ([]models.AttachmentDetails, error)
}

// documentStorage is the physical side of an attachment.
type documentStorage interface {
	Save(fileHeader *multipart.FileHeader, name string) error
	Rename(oldName, newName string) error
	Delete(name string) error
	FullPath(name string) string
}

// listDateFormat is the display format the file listing frontend expects.
const listDateFormat = "02/01/2006 15:04"

// AttachmentService keeps the attachments table and the uploads
// directory consistent across upload, rename and delete, and answers
// owner-scoped retrieval.
type AttachmentService interface {
	Upload(ctx context.Context, ownerID int64, file *multipart.FileHeader, subjectName, period string) (*models.Attachment, error)
	Rename(ctx context.Context, ownerID int64, oldName, newName string) (string, error)
	Delete(ctx context.Context, ownerID int64, name string) error
	List(ctx context.Context, ownerID int64, search string) (*dto.FileListResponse, error)
	UploadData(ctx context.Context) (*dto.UploadDataResponse, error)
	Resolve(ctx context.Context, ownerID int64, name string) (string, error)
}

type attachmentServiceImpl struct {
	attachments attachmentStore
	subjects    subjectStore
	courses     courseStore
	storage     documentStorage
	logger      zerolog.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachments attachmentStore,
	subjects subjectStore,
	courses courseStore,
	storage documentStorage,
	logger zerolog.Logger,
) AttachmentService {
	return &attachmentServiceImpl{
		attachments: attachments,
		subjects:    subjects,
		courses:     courses,
		storage:     storage,
		logger:      logger,
	}
}

// Upload validates the request, resolves (or lazily creates) the subject
// and course, and performs the paired filesystem+database write. The
// physical file is written first; if the row insert then fails, the file
// is removed again so the two stores do not diverge.
func (s *attachmentServiceImpl) Upload(ctx context.Context, ownerID int64, file *multipart.FileHeader, subjectName, period string) (*models.Attachment, error) {
	subjectName = strings.TrimSpace(subjectName)
	period = strings.TrimSpace(period)

	if file == nil || file.Filename == "" {
		return nil, apperrors.NewBadRequestError("a PDF file is required")
	}
	if subjectName == "" || period == "" {
		return nil, apperrors.NewBadRequestError("subject name and period are required")
	}
	if !filenames.HasPDFExt(file.Filename) {
		return nil, apperrors.NewBadRequestError("file format not allowed, only PDF documents are accepted")
	}

	storedName := filenames.StoredName(subjectName, period, file.Filename)
	if storedName == "" || storedName == filenames.PDFExtension {
		return nil, apperrors.NewBadRequestError("the file name contains no usable characters")
	}

	subject, err := s.subjects.GetOrCreate(ctx, subjectName)
	if err != nil {
		return nil, fmt.Errorf("error resolving subject: %w", err)
	}

	course, err := s.courses.GetOrCreate(ctx, ownerID, subject.ID, period)
	if err != nil {
		return nil, fmt.Errorf("error resolving course: %w", err)
	}

	// Stored names are globally unique across all teachers.
	exists, err := s.attachments.ExistsByName(ctx, storedName)
	if err != nil {
		return nil, fmt.Errorf("error checking stored name: %w", err)
	}
	if exists {
		return nil, apperrors.NewCustomError(apperrors.ErrFileAlreadyExists,
			fmt.Sprintf("the file %q already exists, rename the file before uploading", storedName))
	}

	if err := s.storage.Save(file, storedName); err != nil {
		return nil, fmt.Errorf("error saving file: %w", err)
	}

	attachment := &models.Attachment{
		Name:       storedName,
		TeacherID:  ownerID,
		CourseID:   course.ID,
		UploadedAt: time.Now().UTC(),
	}

	id, err := s.attachments.Create(ctx, attachment)
	if err != nil {
		// The physical write succeeded but the row did not; remove the
		// file so no orphan remains.
		if rmErr := s.storage.Delete(storedName); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("name", storedName).
				Msg("Failed to remove file after attachment insert failed")
		}
		if errors.Is(err, apperrors.ErrFileAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrFileAlreadyExists,
				fmt.Sprintf("the file %q already exists, rename the file before uploading", storedName))
		}
		return nil, fmt.Errorf("error registering attachment: %w", err)
	}
	attachment.ID = id

	s.logger.Info().Int64("teacherId", ownerID).Str("name", storedName).Msg("Attachment uploaded")
	return attachment, nil
}

// Rename changes an attachment's stored name on disk and in the
// database. The physical rename happens first; a failed row update is
// compensated by renaming the file back, and a failed compensation is
// surfaced as an irrecoverable inconsistency instead of being swallowed.
func (s *attachmentServiceImpl) Rename(ctx context.Context, ownerID int64, oldName, newName string) (string, error) {
	if oldName == "" || newName == "" {
		return "", apperrors.NewBadRequestError("both the old and the new name are required")
	}

	attachment, err := s.attachments.GetByNameAndOwner(ctx, oldName, ownerID)
	if err != nil {
		return "", fmt.Errorf("error looking up attachment: %w", err)
	}
	if attachment == nil {
		return "", apperrors.ErrAttachmentNotFound
	}

	finalName := filenames.EnsurePDF(filenames.Sanitize(newName))
	if finalName == filenames.PDFExtension {
		return "", apperrors.NewBadRequestError("the new name contains no usable characters")
	}

	exists, err := s.attachments.ExistsByName(ctx, finalName)
	if err != nil {
		return "", fmt.Errorf("error checking stored name: %w", err)
	}
	if exists {
		return "", apperrors.NewCustomError(apperrors.ErrFileAlreadyExists,
			fmt.Sprintf("an attachment named %q already exists", finalName))
	}

	physicalRenamed := true
	if err := s.storage.Rename(oldName, finalName); err != nil {
		if !errors.Is(err, filestorage.ErrNotExists) {
			return "", fmt.Errorf("error renaming stored file: %w", err)
		}
		// The row is authoritative when the physical file went missing;
		// update the database and move on.
		physicalRenamed = false
		s.logger.Warn().Str("name", oldName).
			Msg("Stored file missing during rename, updating database only")
	}

	if err := s.attachments.UpdateName(ctx, attachment.ID, finalName); err != nil {
		if physicalRenamed {
			if undoErr := s.storage.Rename(finalName, oldName); undoErr != nil {
				s.logger.Error().Err(undoErr).Str("from", finalName).Str("to", oldName).
					Msg("CRITICAL: failed to undo physical rename after database update failed")
				return "", fmt.Errorf("%w: rename of %q could not be committed or undone",
					apperrors.ErrStorageInconsistent, oldName)
			}
		}
		if errors.Is(err, apperrors.ErrFileAlreadyExists) {
			return "", apperrors.NewCustomError(apperrors.ErrFileAlreadyExists,
				fmt.Sprintf("an attachment named %q already exists", finalName))
		}
		return "", fmt.Errorf("error committing rename: %w", err)
	}

	s.logger.Info().Int64("teacherId", ownerID).Str("from", oldName).Str("to", finalName).Msg("Attachment renamed")
	return finalName, nil
}

// Delete removes the attachment row first and only then the physical
// file. If the row delete fails the filesystem is never touched; a
// missing physical file during the tail cleanup is not an error.
func (s *attachmentServiceImpl) Delete(ctx context.Context, ownerID int64, name string) error {
	attachment, err := s.attachments.GetByNameAndOwner(ctx, name, ownerID)
	if err != nil {
		return fmt.Errorf("error looking up attachment: %w", err)
	}
	if attachment == nil {
		return apperrors.ErrAttachmentNotFound
	}

	if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
		return fmt.Errorf("error deleting attachment: %w", err)
	}

	if err := s.storage.Delete(name); err != nil {
		// The row is already gone; an undeletable file leaves the two
		// stores diverged, and the caller must not see a success.
		s.logger.Error().Err(err).Str("name", name).
			Msg("CRITICAL: attachment row deleted but stored file could not be removed")
		return fmt.Errorf("%w: the record of %q was deleted but its stored file remains",
			apperrors.ErrStorageInconsistent, name)
	}

	s.logger.Info().Int64("teacherId", ownerID).Str("name", name).Msg("Attachment deleted")
	return nil
}

// List returns the caller's attachments, newest first, optionally
// filtered by a case-insensitive search over name, subject and period.
func (s *attachmentServiceImpl) List(ctx context.Context, ownerID int64, search string) (*dto.FileListResponse, error) {
	details, err := s.attachments.ListByOwner(ctx, ownerID, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}

	files := make([]dto.FileEntry, 0, len(details))
	for _, d := range details {
		files = append(files, dto.FileEntry{
			ID:     d.ID,
			Name:   d.Name,
			Course: fmt.Sprintf("%s (%s)", d.SubjectName, d.Period),
			Date:   d.UploadedAt.Format(listDateFormat),
		})
	}

	return &dto.FileListResponse{Files: files}, nil
}

// UploadData returns the distinct subject names and periods feeding the
// upload form's autocomplete.
func (s *attachmentServiceImpl) UploadData(ctx context.Context) (*dto.UploadDataResponse, error) {
	subjects, err := s.subjects.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	periods, err := s.courses.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing periods: %w", err)
	}

	if subjects == nil {
		subjects = []string{}
	}
	if periods == nil {
		periods = []string{}
	}
	return &dto.UploadDataResponse{Subjects: subjects, Periods: periods}, nil
}

// Resolve returns the filesystem path of an attachment owned by the
// caller. Missing and not-owned attachments are indistinguishable.
func (s *attachmentServiceImpl) Resolve(ctx context.Context, ownerID int64, name string) (string, error) {
	attachment, err := s.attachments.GetByNameAndOwner(ctx, name, ownerID)
	if err != nil {
		return "", fmt.Errorf("error looking up attachment: %w", err)
	}
	if attachment == nil {
		return "", apperrors.ErrAttachmentNotFound
	}

	path := s.storage.FullPath(name)
	if path == "" {
		return "", apperrors.ErrAttachmentNotFound
	}
	return path, nil
}
