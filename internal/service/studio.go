package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
)

// sniffLen is how many leading bytes http.DetectContentType looks at.
const sniffLen = 512

// Generation is the outcome of a successful text-to-image call.
type Generation struct {
	Prompt         string
	ContentType    string
	Image          []byte
	SavedToGallery bool
}

// Status is the confirmation shown after generation.
func (g Generation) Status() string {
	if g.SavedToGallery {
		return "Image generated and saved to your gallery!"
	}
	return "Image generated successfully!"
}

// Studio runs the generate and describe flows of the home view.
type Studio struct {
	backend  model.Backend
	session  model.SessionProvider
	exporter *Exporter
	logger   *logger.Logger
	now      func() time.Time
}

func NewStudio(
	backend model.Backend,
	session model.SessionProvider,
	exporter *Exporter,
	logger *logger.Logger,
) *Studio {
	return &Studio{
		backend:  backend,
		session:  session,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate turns a prompt into an image. The user id is attached only when
// someone is logged in, which makes the backend keep the result.
func (s *Studio) Generate(ctx context.Context, prompt string) (Generation, error) {
	if strings.TrimSpace(prompt) == "" {
		return Generation{}, model.ErrEmptyPrompt
	}

	params := model.GenerateParams{Prompt: prompt}
	if session, ok := s.session.Current(); ok {
		params.UserID = session.UserID
	}

	s.logger.Debug("Studio service: generating image",
		"prompt_len", len(prompt),
		"user_id", params.UserID)

	res, err := s.backend.Generate(ctx, params)
	if err != nil {
		s.logger.Error("Studio service: generation failed",
			"error", err.Error())
		return Generation{}, fmt.Errorf("failed to generate image: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageData)
	if err != nil || len(data) == 0 {
		s.logger.Error("Studio service: generated image is not valid base64",
			"len", len(res.ImageData))
		return Generation{}, fmt.Errorf("failed to decode generated image: %w", model.ErrMalformedResponse)
	}

	gen := Generation{
		Prompt:         prompt,
		ContentType:    http.DetectContentType(data),
		Image:          data,
		SavedToGallery: res.SavedToGallery,
	}

	s.logger.Info("Studio service: image generated",
		"bytes", len(data),
		"saved_to_gallery", gen.SavedToGallery)

	return gen, nil
}

// Describe uploads a file and returns its caption.
func (s *Studio) Describe(ctx context.Context, upload *model.Upload) (string, error) {
	if upload == nil {
		return "", model.ErrNoFileSelected
	}

	params := model.DescribeParams{Upload: *upload}
	if session, ok := s.session.Current(); ok {
		params.UserID = session.UserID
	}

	s.logger.Debug("Studio service: describing image",
		"filename", upload.Filename,
		"content_type", upload.ContentType)

	res, err := s.backend.Describe(ctx, params)
	if err != nil {
		s.logger.Error("Studio service: description failed",
			"filename", upload.Filename,
			"error", err.Error())
		return "", fmt.Errorf("failed to describe image: %w", err)
	}

	switch {
	case res.Description != "":
		s.logger.Info("Studio service: image described",
			"filename", upload.Filename)
		return res.Description, nil
	case res.DocumentID != "":
		s.logger.Info("Studio service: image stored without caption",
			"filename", upload.Filename,
			"document_id", res.DocumentID)
		return fmt.Sprintf("Image uploaded (document %s).", res.DocumentID), nil
	default:
		return "", fmt.Errorf("describe response without description: %w", model.ErrMalformedResponse)
	}
}

// SaveGeneration writes a generated image to the output sink.
func (s *Studio) SaveGeneration(ctx context.Context, gen Generation) (string, error) {
	if len(gen.Image) == 0 {
		return "", fmt.Errorf("no generated image to save: %w", model.ErrNotFound)
	}

	name := fmt.Sprintf("generated/%s%s", s.now().UTC().Format("20060102-150405.000"), model.ExtensionFor(gen.ContentType))

	return s.exporter.Save(ctx, name, gen.ContentType, gen.Image)
}

// OpenUpload reads a local image file for Describe.
func OpenUpload(path string) (*model.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := http.DetectContentType(data[:min(len(data), sniffLen)])
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &model.ValidationError{Message: fmt.Sprintf("%s is not an image (%s).", filepath.Base(path), contentType)}
	}

	return &model.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}
