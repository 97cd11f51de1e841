package imaging

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/imagestudio/internal/testutil"
)

func TestThumbnail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		width, height int
		size          uint
		wantW, wantH  int
	}{
		{name: "landscape", width: 200, height: 100, size: 50, wantW: 50, wantH: 25},
		{name: "portrait", width: 100, height: 400, size: 100, wantW: 25, wantH: 100},
		{name: "smaller than box", width: 20, height: 10, size: 64, wantW: 20, wantH: 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := Thumbnail(testutil.PNG(tt.width, tt.height), tt.size)
			require.NoError(t, err)

			cfg, err := png.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestThumbnail_Errors(t *testing.T) {
	_, err := Thumbnail([]byte("not an image"), 32)
	assert.ErrorContains(t, err, "failed to decode image")

	_, err = Thumbnail(testutil.PNG(4, 4), 0)
	assert.Error(t, err)
}

func TestThumbnailName(t *testing.T) {
	assert.Equal(t, "2024-01-02/abc.png.thumb.png", ThumbnailName("2024-01-02/abc.png"))
}
