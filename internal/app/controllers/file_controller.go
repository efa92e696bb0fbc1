package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rlopezj/catedra/internal/app/models/dto"
	"github.com/rlopezj/catedra/internal/app/services"
	"github.com/rlopezj/catedra/internal/middleware"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
)

// FileController handles the document management endpoints. The
// mutation endpoints answer in plain text and the read endpoints in
// JSON, matching the frontend this API serves.
type FileController struct {
	attachmentService services.AttachmentService
	logger            zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(attachmentService services.AttachmentService, logger zerolog.Logger) *FileController {
	return &FileController{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

func ownerID(ctx *gin.Context) (int64, bool) {
	teacherID, ok := middleware.TeacherID(ctx)
	if !ok {
		ctx.String(http.StatusUnauthorized, "Authentication required.")
	}
	return teacherID, ok
}

// Upload receives a multipart form with the PDF and its course data.
func (c *FileController) Upload(ctx *gin.Context) {
	teacherID, ok := ownerID(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("pdfFile")
	if err != nil {
		ctx.String(http.StatusBadRequest, "The file, subject name or period is missing.")
		return
	}
	subjectName := ctx.PostForm("materia_name")
	period := ctx.PostForm("periodo")

	attachment, err := c.attachmentService.Upload(ctx.Request.Context(), teacherID, file, subjectName, period)
	if err != nil {
		c.logger.Warn().Err(err).Int64("teacherId", teacherID).Msg("Upload rejected")
		switch {
		case errors.Is(err, apperrors.ErrFileAlreadyExists):
			ctx.String(http.StatusConflict, plainMessage(err, "The file already exists. Please rename the file before uploading."))
		case errors.Is(err, apperrors.ErrBadRequest):
			ctx.String(http.StatusBadRequest, plainMessage(err, "The file, subject name or period is missing."))
		default:
			ctx.String(http.StatusInternalServerError, "An unexpected error occurred while processing the upload.")
		}
		return
	}

	c.logger.Info().Int64("teacherId", teacherID).Str("name", attachment.Name).Msg("PDF uploaded")
	ctx.String(http.StatusOK, "PDF file uploaded and registered successfully.")
}

// View serves the PDF inline for in-browser viewing.
func (c *FileController) View(ctx *gin.Context) {
	teacherID, ok := ownerID(ctx)
	if !ok {
		return
	}

	path, err := c.attachmentService.Resolve(ctx.Request.Context(), teacherID, ctx.Param("name"))
	if err != nil {
		ctx.String(http.StatusNotFound, "Not found.")
		return
	}

	ctx.Header("Content-Type", "application/pdf")
	ctx.File(path)
}

// Download serves the PDF as an attachment.
func (c *FileController) Download(ctx *gin.Context) {
	teacherID, ok := ownerID(ctx)
	if !ok {
		return
	}

	name := ctx.Param("name")
	path, err := c.attachmentService.Resolve(ctx.Request.Context(), teacherID, name)
	if err != nil {
		ctx.String(http.StatusNotFound, "Not found.")
		return
	}

	ctx.FileAttachment(path, name)
}

// Delete removes an owned attachment.
func (c *FileController) Delete(ctx *gin.Context) {
	teacherID, ok := ownerID(ctx)
	if !ok {
		return
	}

	name := ctx.Param("name")
	if err := c.attachmentService.Delete(ctx.Request.Context(), teacherID, name); err != nil {
		if errors.Is(err, apperrors.ErrAttachmentNotFound) {
			ctx.String(http.StatusNotFound, "Error: the file was not found or you do not have permission to delete it.")
			return
		}
		c.logger.Error().Err(err).Int64("teacherId", teacherID).Str("name", name).Msg("Delete failed")
		ctx.String(http.StatusInternalServerError, "Error deleting the file.")
		return
	}

	ctx.String(http.StatusOK, fmt.Sprintf("File %q deleted successfully.", name))
}

// Rename changes an owned attachment's stored name.
func (c *FileController) Rename(ctx *gin.Context) {
	teacherID, ok := ownerID(ctx)
	if !ok {
		return
	}

	var req dto.RenameFileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.String(http.StatusBadRequest, "Both the old and the new name are required.")
		return
	}

	finalName, err := c.attachmentService.Rename(ctx.Request.Context(), teacherID, req.OldName, req.NewName)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAttachmentNotFound):
			ctx.String(http.StatusNotFound, "Error: the file was not found or you do not have permission.")
		case errors.Is(err, apperrors.ErrFileAlreadyExists):
			ctx.String(http.StatusBadRequest, "A file with the new name already exists.")
		case errors.Is(err, apperrors.ErrBadRequest):
			ctx.String(http.StatusBadRequest, plainMessage(err, "Invalid rename request."))
		default:
			c.logger.Error().Err(err).Int64("teacherId", teacherID).Str("name", req.OldName).Msg("Rename failed")
			ctx.String(http.StatusInternalServerError, "Error renaming the file.")
		}
		return
	}

	ctx.String(http.StatusOK, fmt.Sprintf("File renamed to %q successfully.", finalName))
}

// List returns the caller's files, optionally filtered by ?search=.
func (c *FileController) List(ctx *gin.Context) {
	teacherID, ok := middleware.TeacherID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
		return
	}

	listing, err := c.attachmentService.List(ctx.Request.Context(), teacherID, ctx.Query("search"))
	if err != nil {
		c.logger.Error().Err(err).Int64("teacherId", teacherID).Msg("Listing failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading the file list."})
		return
	}

	ctx.JSON(http.StatusOK, listing)
}

// UploadData returns the known subject names and periods for the upload
// form's autocomplete.
func (c *FileController) UploadData(ctx *gin.Context) {
	data, err := c.attachmentService.UploadData(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Upload form data failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading subject and period data."})
		return
	}

	ctx.JSON(http.StatusOK, data)
}

// plainMessage prefers the wrapped CustomError message for the text
// endpoints.
func plainMessage(err error, fallback string) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return fallback
}
