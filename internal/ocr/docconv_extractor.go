// Package ocr adapts docconv as the text-acquisition collaborator. docconv
// shells out to tesseract for image OCR and pdftotext for PDFs, so those
// binaries must be on PATH at runtime.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"code.sajari.com/docconv"

	"contractocr/internal/domain"
	"contractocr/internal/port"
)

type docconvExtractor struct{}

// NewDocconvExtractor creates a docconv-backed port.TextExtractor.
func NewDocconvExtractor() port.TextExtractor {
	return &docconvExtractor{}
}

func (e *docconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
	if err != nil {
		log.Printf("ocr.docconvExtractor: conversion failed for %s: %v", contentType, err)
		return "", fmt.Errorf("%w: %v", domain.ErrTextExtraction, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if res.Body == "" {
		return "", domain.ErrTextExtraction
	}
	return res.Body, nil
}
