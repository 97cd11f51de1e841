package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
)

// Gallery keeps the date-grouped projection of the user's images for one
// activation of the gallery view.
type Gallery struct {
	backend  model.Backend
	session  model.SessionProvider
	exporter *Exporter
	logger   *logger.Logger

	mu         sync.Mutex
	projection model.Gallery
	loaded     bool
	version    uint64
}

func NewGallery(
	backend model.Backend,
	session model.SessionProvider,
	exporter *Exporter,
	logger *logger.Logger,
) *Gallery {
	return &Gallery{
		backend:  backend,
		session:  session,
		exporter: exporter,
		logger:   logger,
	}
}

// Load fetches the user's images and replaces the projection. If Load or
// Invalidate is called again before the response arrives, the response is
// dropped and ErrStale returned, whether it succeeded or failed.
func (g *Gallery) Load(ctx context.Context) (model.Gallery, error) {
	session, ok := g.session.Current()
	if !ok {
		return model.Gallery{}, model.ErrLoginRequired
	}

	version := g.begin()

	g.logger.Debug("Gallery service: loading images",
		"user_id", session.UserID)

	images, err := g.backend.ListImages(ctx, session.UserID)
	if err != nil {
		if g.superseded(version) {
			g.logger.Debug("Gallery service: dropping stale load failure",
				"user_id", session.UserID,
				"error", err.Error())
			return model.Gallery{}, model.ErrStale
		}
		g.logger.Error("Gallery service: failed to load images",
			"user_id", session.UserID,
			"error", err.Error())
		return model.Gallery{}, fmt.Errorf("failed to load images: %w", err)
	}

	projection := model.GroupByDate(images)

	g.mu.Lock()
	defer g.mu.Unlock()

	if version != g.version {
		g.logger.Debug("Gallery service: dropping stale image list",
			"user_id", session.UserID)
		return model.Gallery{}, model.ErrStale
	}

	g.projection = projection
	g.loaded = true

	g.logger.Info("Gallery service: images loaded",
		"user_id", session.UserID,
		"images", projection.Len(),
		"dates", len(projection.Dates()))

	return projection, nil
}

// Delete removes an image on the backend and then from the projection,
// without reloading. On failure the projection is left as it was.
func (g *Gallery) Delete(ctx context.Context, id string) (model.Gallery, error) {
	session, ok := g.session.Current()
	if !ok {
		return g.Current(), model.ErrNotLoggedIn
	}

	g.logger.Debug("Gallery service: deleting image",
		"image_id", id,
		"user_id", session.UserID)

	err := g.backend.DeleteImage(ctx, id, session.UserID)
	if err != nil {
		g.logger.Error("Gallery service: failed to delete image",
			"image_id", id,
			"error", err.Error())
		return g.Current(), fmt.Errorf("failed to delete image %s: %w", id, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	projection, removed := g.projection.Without(id)
	g.projection = projection

	g.logger.Info("Gallery service: image deleted",
		"image_id", id,
		"in_projection", removed)

	return projection, nil
}

// Current returns the last loaded projection.
func (g *Gallery) Current() model.Gallery {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.projection
}

// Loaded reports whether the projection holds a completed load.
func (g *Gallery) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.loaded
}

// Invalidate drops the projection and any load still in flight.
func (g *Gallery) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.version++
	g.projection = model.Gallery{}
	g.loaded = false
}

// Export saves every image of the projection to the output sink and returns
// their locations. It stops at the first failure.
func (g *Gallery) Export(ctx context.Context) ([]string, error) {
	images := g.Current().Images()
	if len(images) == 0 {
		return nil, fmt.Errorf("nothing to export: %w", model.ErrNotFound)
	}

	locations := make([]string, 0, len(images))
	for _, img := range images {
		data, err := img.Decode()
		if err != nil {
			return locations, errors.Join(model.ErrMalformedResponse, err)
		}

		location, err := g.exporter.Save(ctx, img.ObjectName(), img.ContentType, data)
		if err != nil {
			return locations, fmt.Errorf("failed to export gallery: %w", err)
		}
		locations = append(locations, location)
	}

	g.logger.Info("Gallery service: gallery exported",
		"images", len(locations))

	return locations, nil
}

func (g *Gallery) superseded(version uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return version != g.version
}

func (g *Gallery) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.version++
	return g.version
}
