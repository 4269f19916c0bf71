package port

import "context"

// TextExtractor abstracts the OCR collaborator: it turns a rendered document
// (PDF or image bytes) into one concatenated plain-text transcript in natural
// reading order.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
