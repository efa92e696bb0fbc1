package dto

// RenameFileRequest carries a rename operation.
type RenameFileRequest struct {
	OldName string `json:"old_name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

// FileEntry is one row of the file listing. Course combines subject and
// period ("Algebra (2024A)") and Date is preformatted for display, which
// is the shape the frontend expects.
type FileEntry struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Course string `json:"course"`
	Date   string `json:"date"`
}

// FileListResponse wraps the file listing.
type FileListResponse struct {
	Files []FileEntry `json:"files"`
}

// UploadDataResponse feeds the upload form's autocomplete. The JSON keys
// are kept in Spanish for frontend compatibility.
type UploadDataResponse struct {
	Subjects []string `json:"materias"`
	Periods  []string `json:"periodos"`
}
