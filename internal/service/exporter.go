package service

import (
	"context"
	"fmt"

	"github.com/dtroode/imagestudio/internal/imaging"
	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
)

// Exporter writes images to an ImageSink, optionally with a thumbnail next
// to each one.
type Exporter struct {
	sink          model.ImageSink
	thumbnailSize uint
	logger        *logger.Logger
}

// NewExporter creates an exporter. A thumbnailSize of zero disables
// thumbnails.
func NewExporter(sink model.ImageSink, thumbnailSize uint, logger *logger.Logger) *Exporter {
	return &Exporter{
		sink:          sink,
		thumbnailSize: thumbnailSize,
		logger:        logger,
	}
}

// Save stores one image and returns its location. A thumbnail that cannot be
// produced is logged and skipped.
func (e *Exporter) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	location, err := e.sink.Save(ctx, name, contentType, data)
	if err != nil {
		e.logger.Error("Export service: failed to save image",
			"name", name,
			"error", err.Error())
		return "", fmt.Errorf("failed to save image %s: %w", name, err)
	}

	if e.thumbnailSize == 0 {
		return location, nil
	}

	thumb, err := imaging.Thumbnail(data, e.thumbnailSize)
	if err != nil {
		e.logger.Warn("Export service: skipping thumbnail",
			"name", name,
			"error", err.Error())
		return location, nil
	}

	thumbName := imaging.ThumbnailName(name)
	_, err = e.sink.Save(ctx, thumbName, imaging.ThumbnailContentType, thumb)
	if err != nil {
		e.logger.Error("Export service: failed to save thumbnail",
			"name", thumbName,
			"error", err.Error())
		return "", fmt.Errorf("failed to save thumbnail %s: %w", thumbName, err)
	}

	return location, nil
}
