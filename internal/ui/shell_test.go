package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/imagestudio/internal/api/rest"
	"github.com/dtroode/imagestudio/internal/mocks"
	"github.com/dtroode/imagestudio/internal/model"
	"github.com/dtroode/imagestudio/internal/service"
	"github.com/dtroode/imagestudio/internal/storage/disk"
	"github.com/dtroode/imagestudio/internal/storage/file"
	"github.com/dtroode/imagestudio/internal/testutil"
)

type harness struct {
	shell   *Shell
	out     *bytes.Buffer
	backend *testutil.Backend
	storage *file.Store
	outDir  string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	log := testutil.MakeNoopLogger()
	backend := testutil.NewBackend(t)
	client := rest.NewClient(backend.URL(), backend.Server.Client(), log)
	storage := file.NewStore(filepath.Join(t.TempDir(), "session.json"))
	outDir := t.TempDir()

	sessions := service.NewSessionStore(client, storage, log)
	exporter := service.NewExporter(disk.NewSink(outDir), 0, log)
	studio := service.NewStudio(client, sessions, exporter, log)
	gallery := service.NewGallery(client, sessions, exporter, log)

	out := &bytes.Buffer{}
	return &harness{
		shell:   NewShell(strings.NewReader(""), out, sessions, studio, gallery, log, opts...),
		out:     out,
		backend: backend,
		storage: storage,
		outDir:  outDir,
	}
}

func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()

	h.out.Reset()
	h.shell.in = strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, h.shell.Run(context.Background()))
	return h.out.String()
}

func TestShell_RegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "register a@b.c one two")
	assert.Contains(t, out, "Passwords do not match.")
	assert.Zero(t, h.backend.TotalRequests())
}

func TestShell_LoginAndLogoutPersistSession(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	id := h.backend.AddUser("a@b.c", "pw")

	out := h.run(t, "login a@b.c pw", "whoami")
	assert.Contains(t, out, "Logged in as a@b.c.")
	assert.Contains(t, out, "[home] a@b.c")

	entries, err := h.storage.Get(context.Background(), model.SessionKeys...)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{model.StorageKeyEmail: "a@b.c", model.StorageKeyUserID: id}, entries)

	out = h.run(t, "logout")
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "not logged in")

	entries, err = h.storage.Get(context.Background(), model.SessionKeys...)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestShell_LoginRejected(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "login a@b.c wrong")
	assert.Contains(t, out, "Invalid credentials")
	_, ok := h.shell.sessions.Current()
	assert.False(t, ok)
}

func TestShell_GalleryRequiresLogin(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "gallery")
	assert.Contains(t, out, "Please Log In")
	assert.Contains(t, out, "You need to be logged in to view your gallery.")
	assert.Equal(t, model.ViewLoginRequired, h.shell.router.View())
	assert.Zero(t, h.backend.Requests("GET /images"))
}

func TestShell_GalleryGroupsByDate(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	id := h.backend.AddUser("a@b.c", "pw")
	h.backend.AddImage(id, "morning.png", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	h.backend.AddImage(id, "evening.png", time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC))
	h.backend.AddImage(id, "older.png", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	out := h.run(t, "login a@b.c pw", "gallery")

	jan2 := strings.Index(out, "Tuesday, January 2, 2024")
	jan1 := strings.Index(out, "Monday, January 1, 2024")
	require.NotEqual(t, -1, jan2)
	require.NotEqual(t, -1, jan1)
	assert.Less(t, jan2, jan1)
	assert.Contains(t, out, "morning.png")
	assert.Contains(t, out, "older.png")
}

func TestShell_EmptyGallery(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	h.backend.AddUser("a@b.c", "pw")

	out := h.run(t, "login a@b.c pw", "gallery")
	assert.Contains(t, out, "You haven't generated any images yet.")
}

func TestShell_GalleryLoadFailure(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	h.backend.AddUser("a@b.c", "pw")
	h.backend.FailNext("GET /images", 500, `{"detail":"db down"}`)

	out := h.run(t, "login a@b.c pw", "gallery")
	assert.Contains(t, out, "Failed to load images. Is the server running?")
	assert.NotContains(t, out, "db down")
	assert.NotContains(t, out, "You haven't generated any images yet.")
}

func TestShell_DeleteImage(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	owner := h.backend.AddUser("a@b.c", "pw")
	other := h.backend.AddUser("x@y.z", "pw")
	mine := h.backend.AddImage(owner, "mine.png", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	theirs := h.backend.AddImage(other, "theirs.png", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

	out := h.run(t, "login a@b.c pw", "gallery", "delete "+theirs)
	assert.Contains(t, out, "Forbidden: You do not have permission to delete this image")
	assert.Equal(t, 1, h.shell.gallery.Current().Len())

	out = h.run(t, "delete "+mine)
	assert.Contains(t, out, "Image deleted.")
	assert.Contains(t, out, "You haven't generated any images yet.")
	assert.Zero(t, h.backend.ImageCount(owner))
	assert.Equal(t, 1, h.backend.Requests("GET /images"))
}

func TestShell_DeleteWithoutSession(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "delete 000000000000000000000001")
	assert.Contains(t, out, "You must be logged in to delete images.")
	assert.Zero(t, h.backend.TotalRequests())
}

func TestShell_EmptyPrompt(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "generate", "generate    ")
	assert.Equal(t, 2, strings.Count(out, "Please enter a prompt."))
	assert.Zero(t, h.backend.TotalRequests())
}

func TestShell_GenerateAndSave(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "save", "generate a red fox", "save")
	assert.Contains(t, out, "Generate an image first.")
	assert.Contains(t, out, "Generating your image...")
	assert.Contains(t, out, "Image generated successfully!")
	assert.Contains(t, out, "Saved to "+filepath.Join(h.outDir, "generated"))
}

func TestShell_GenerateLoggedInSavesToGallery(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	id := h.backend.AddUser("a@b.c", "pw")

	out := h.run(t, "login a@b.c pw", "generate a red fox")
	assert.Contains(t, out, "Image generated and saved to your gallery!")
	assert.Equal(t, 1, h.backend.ImageCount(id))
}

func TestShell_GenerateFailure(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	h.backend.FailNext("GET /generate", 422, `{"detail":[{"msg":"field required"}]}`)

	out := h.run(t, "generate fox")
	assert.Contains(t, out, "Error: Failed to generate image.")
}

func TestShell_SelectAndDescribe(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, testutil.PNG(2, 2), 0o600))

	out := h.run(t, "describe", "select "+path, "describe")
	assert.Contains(t, out, "Please select a file first.")
	assert.Contains(t, out, "Selected cat.png (image/png")
	assert.Contains(t, out, "Analyzing your image...")
	assert.Contains(t, out, "named cat.png")
	assert.Equal(t, 1, h.backend.Requests("POST /load"))
}

func TestShell_DescribeFailure(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	h.backend.FailNext("POST /load", 500, `{}`)

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, testutil.PNG(2, 2), 0o600))

	out := h.run(t, "select "+path, "describe")
	assert.Contains(t, out, "Error: Failed to get description.")
}

func TestShell_Export(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())
	id := h.backend.AddUser("a@b.c", "pw")
	img := h.backend.AddImage(id, "one.png", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

	out := h.run(t, "export", "login a@b.c pw", "gallery", "export")
	assert.Contains(t, out, "Open the gallery first.")
	assert.Contains(t, out, "Exported 1 images.")
	assert.FileExists(t, filepath.Join(h.outDir, "2024-01-02", img+".png"))
}

func TestShell_UnknownAndHelp(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "", "frobnicate", "help", "login onlyemail")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "Usage: login <email> <password>")
}

func TestShell_QuitStopsReading(t *testing.T) {
	h := newHarness(t, WithSynchronousCalls())

	out := h.run(t, "quit", "generate never")
	assert.NotContains(t, out, "Generating")
	assert.Zero(t, h.backend.TotalRequests())
}

func TestShell_WaitsForOutstandingCallsAtEOF(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "generate a red fox")
	assert.Contains(t, out, "Image generated successfully!")
	assert.Zero(t, h.shell.inflight)
}

// blockingStudio holds Generate until release is closed.
type blockingStudio struct {
	release chan struct{}
}

func (b *blockingStudio) Generate(ctx context.Context, prompt string) (service.Generation, error) {
	<-b.release
	return service.Generation{Prompt: prompt, Image: []byte{1}, ContentType: "image/png"}, nil
}

func (b *blockingStudio) Describe(context.Context, *model.Upload) (string, error) {
	return "", nil
}

func (b *blockingStudio) SaveGeneration(context.Context, service.Generation) (string, error) {
	return "", nil
}

func newBlockingShell(t *testing.T) (*Shell, *bytes.Buffer, *blockingStudio) {
	t.Helper()

	log := testutil.MakeNoopLogger()
	backend := testutil.NewBackend(t)
	client := rest.NewClient(backend.URL(), backend.Server.Client(), log)
	sessions := service.NewSessionStore(client, file.NewStore(filepath.Join(t.TempDir(), "s.json")), log)
	studio := &blockingStudio{release: make(chan struct{})}
	gallery := service.NewGallery(client, sessions, nil, log)

	out := &bytes.Buffer{}
	return NewShell(strings.NewReader(""), out, sessions, studio, gallery, log), out, studio
}

func TestShell_BusyWhileGenerating(t *testing.T) {
	s, out, studio := newBlockingShell(t)
	ctx := context.Background()

	s.Execute(ctx, "generate first")
	s.Execute(ctx, "generate second")
	assert.Contains(t, out.String(), "Please wait, the previous request is still running.")
	assert.Equal(t, 1, s.inflight)

	close(studio.release)
	apply := <-s.results
	s.inflight--
	apply()

	assert.Contains(t, out.String(), "Image generated successfully!")
	assert.False(t, s.home.generating)
}

func TestShell_DropsStaleGeneration(t *testing.T) {
	s, out, studio := newBlockingShell(t)
	ctx := context.Background()

	s.Execute(ctx, "generate fox")
	s.Execute(ctx, "gallery")
	assert.Equal(t, model.ViewLoginRequired, s.router.View())

	close(studio.release)
	apply := <-s.results
	s.inflight--
	apply()

	assert.NotContains(t, out.String(), "Image generated successfully!")
	assert.Nil(t, s.home.generation)
}

func applyNext(s *Shell) {
	apply := <-s.results
	s.inflight--
	apply()
}

func TestShell_SupersededFailedLoadIsDropped(t *testing.T) {
	log := testutil.MakeNoopLogger()
	ctx := context.Background()

	authBackend := testutil.NewBackend(t)
	authBackend.AddUser("a@b.c", "pw")
	client := rest.NewClient(authBackend.URL(), authBackend.Server.Client(), log)
	sessions := service.NewSessionStore(client, file.NewStore(filepath.Join(t.TempDir(), "s.json")), log)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})

	images := mocks.NewBackend(t)
	images.On("ListImages", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(firstStarted)
			<-releaseFirst
		}).
		Return(nil, &model.ConnectivityError{Op: "list images", Err: os.ErrDeadlineExceeded}).Once()
	images.On("ListImages", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-releaseSecond }).
		Return([]model.ImageRecord{{ID: "img1", Filename: "a.png", ContentType: "image/png", UploadedAt: "2024-01-02T10:00:00Z"}}, nil).Once()

	gallery := service.NewGallery(images, sessions, nil, log)
	out := &bytes.Buffer{}
	s := NewShell(strings.NewReader(""), out, sessions, &blockingStudio{}, gallery, log)

	s.Execute(ctx, "login a@b.c pw")
	applyNext(s)

	s.Execute(ctx, "gallery")
	<-firstStarted
	s.Execute(ctx, "gallery")

	close(releaseFirst)
	applyNext(s)
	assert.True(t, s.galleryState.loading)
	assert.Empty(t, s.galleryState.err)

	close(releaseSecond)
	applyNext(s)
	assert.False(t, s.galleryState.loading)
	assert.Empty(t, s.galleryState.err)
	assert.NotContains(t, out.String(), "Failed to load images")
	assert.Contains(t, out.String(), "Tuesday, January 2, 2024")
	assert.Contains(t, out.String(), "a.png")
}

func TestShell_RunAfterQuitIgnoresAbandonedCalls(t *testing.T) {
	s, out, studio := newBlockingShell(t)

	s.in = strings.NewReader("generate fox\nquit\n")
	require.NoError(t, s.Run(context.Background()))
	close(studio.release)

	out.Reset()
	s.in = strings.NewReader("whoami\n")
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "not logged in")
	assert.NotContains(t, out.String(), "Image generated")
	assert.Zero(t, s.inflight)
}
