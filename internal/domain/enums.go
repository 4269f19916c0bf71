package domain

// FileType enumerates the document formats the OCR pipeline accepts.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps a FileType to the MIME type sent to storage and OCR.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps sniffed MIME types back to a FileType. Uploads
// whose magic bytes fall outside this set are rejected regardless of
// extension.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// ExtractionStatus represents the outcome of an extraction run.
type ExtractionStatus string

const (
	ExtractionStatusCompleted ExtractionStatus = "completed"
	ExtractionStatusFailed    ExtractionStatus = "failed"
)
