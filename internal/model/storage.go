package model

import "context"

// LocalStorage persists string entries across process restarts.
// Set and Remove are all-or-nothing: either every entry is applied or none.
type LocalStorage interface {
	// Get returns the values of the requested keys. Missing keys are omitted.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, items map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// ImageSink stores image bytes somewhere the user can open them.
type ImageSink interface {
	// Save stores data under name and returns a human readable location.
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}
