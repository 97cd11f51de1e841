// Package ui implements the interactive terminal front end.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
	"github.com/dtroode/imagestudio/internal/service"
)

// Studio is the home view's generate and describe backend.
type Studio interface {
	Generate(ctx context.Context, prompt string) (service.Generation, error)
	Describe(ctx context.Context, upload *model.Upload) (string, error)
	SaveGeneration(ctx context.Context, gen service.Generation) (string, error)
}

// GalleryProjection is the gallery view's backend.
type GalleryProjection interface {
	Load(ctx context.Context) (model.Gallery, error)
	Delete(ctx context.Context, id string) (model.Gallery, error)
	Current() model.Gallery
	Invalidate()
	Export(ctx context.Context) ([]string, error)
}

var (
	generateFallback = model.Fallback{Rejected: "Failed to generate image.", Unreachable: "Failed to generate image."}
	describeFallback = model.Fallback{Rejected: "Failed to get description.", Unreachable: "Failed to get description."}
	deleteFallback   = model.Fallback{Rejected: "Failed to delete image", Unreachable: "Failed to delete image"}
)

// listFailureMessage is shown for every failed gallery load; the backend's
// detail is not surfaced for listing.
const listFailureMessage = "Failed to load images. Is the server running?"

type homeState struct {
	generating       bool
	generationStatus string
	generation       *service.Generation
	saving           bool

	upload      *model.Upload
	describing  bool
	description string
}

type galleryState struct {
	loading   bool
	err       string
	deleting  map[string]bool
	exporting bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithSynchronousCalls runs every backend call on the calling goroutine.
// Output order then follows input order exactly.
func WithSynchronousCalls() Option {
	return func(s *Shell) {
		s.synchronous = true
	}
}

// Shell reads commands line by line and renders views as text. All UI state
// is owned by the goroutine running Run; backend calls run on worker
// goroutines and hand their results back over a channel.
type Shell struct {
	in  io.Reader
	out io.Writer

	sessions model.SessionManager
	studio   Studio
	gallery  GalleryProjection
	router   *Router
	logger   *logger.Logger

	auth         AuthForm
	home         homeState
	galleryState galleryState

	results     chan func()
	done        chan struct{}
	inflight    int
	synchronous bool
}

func NewShell(
	in io.Reader,
	out io.Writer,
	sessions model.SessionManager,
	studio Studio,
	gallery GalleryProjection,
	logger *logger.Logger,
	opts ...Option,
) *Shell {
	s := &Shell{
		in:       in,
		out:      out,
		sessions: sessions,
		studio:   studio,
		gallery:  gallery,
		router:   NewRouter(sessions),
		logger:   logger,
		results:  make(chan func()),
		galleryState: galleryState{
			deleting: make(map[string]bool),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run processes input until quit, end of input or context cancellation. At
// end of input it waits for outstanding calls to finish.
func (s *Shell) Run(ctx context.Context) error {
	// Workers left over from an earlier Run hold that Run's channels and
	// give up once its done channel is closed.
	s.results = make(chan func())
	s.done = make(chan struct{})
	s.inflight = 0
	defer close(s.done)

	lines := make(chan string)
	done := s.done
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Error("Shell: failed to read input",
				"error", err.Error())
		}
	}()

	s.render()

	for {
		if lines == nil && s.inflight == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if s.Execute(ctx, line) {
				return nil
			}
		case apply := <-s.results:
			s.inflight--
			apply()
		}
	}
}

// Execute runs one command line. It reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	cmd, args := parse(line)
	if cmd == "" {
		return false
	}

	s.logger.Debug("Shell: command",
		"command", cmd,
		"args", len(args))

	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "home":
		s.navigate(model.ViewHome)
		s.render()
	case "gallery":
		s.openGallery(ctx)
	case "login":
		if len(args) != 2 {
			s.usage("login <email> <password>")
			return false
		}
		s.submitAuth(ctx, AuthModeLogin, args[0], args[1], "")
	case "register":
		if len(args) != 3 {
			s.usage("register <email> <password> <confirm>")
			return false
		}
		s.submitAuth(ctx, AuthModeRegister, args[0], args[1], args[2])
	case "logout":
		s.logout(ctx)
	case "whoami":
		session, ok := s.sessions.Current()
		renderNavbar(s.out, s.router.View(), session, ok)
	case "generate":
		s.generate(ctx, strings.Join(args, " "))
	case "save":
		s.save(ctx)
	case "select":
		if len(args) != 1 {
			s.usage("select <path>")
			return false
		}
		s.selectFile(args[0])
	case "describe":
		s.describe(ctx)
	case "delete":
		if len(args) != 1 {
			s.usage("delete <id>")
			return false
		}
		s.deleteImage(ctx, args[0])
	case "export":
		s.export(ctx)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help for the list of commands.\n", cmd)
	}

	return false
}

// spawn runs work off the loop and applies its result on the loop.
func (s *Shell) spawn(ctx context.Context, work func(ctx context.Context) func()) {
	if s.synchronous {
		work(ctx)()
		return
	}

	s.inflight++
	results, done := s.results, s.done
	go func() {
		apply := work(ctx)
		select {
		case results <- apply:
		case <-done:
		case <-ctx.Done():
		}
	}()
}

// navigate switches views. Leaving the gallery drops its projection and
// leaving home forgets the home view's state.
func (s *Shell) navigate(view model.View) model.View {
	previous := s.router.View()
	shown := s.router.Navigate(view)

	if previous == model.ViewGallery {
		s.gallery.Invalidate()
		s.galleryState = galleryState{deleting: make(map[string]bool)}
	}
	if previous == model.ViewHome && shown != model.ViewHome {
		s.home = homeState{}
	}

	return shown
}

func (s *Shell) render() {
	session, ok := s.sessions.Current()
	renderNavbar(s.out, s.router.View(), session, ok)

	switch s.router.View() {
	case model.ViewHome:
		renderHome(s.out, &s.home)
	case model.ViewGallery:
		renderGallery(s.out, s.gallery.Current(), &s.galleryState)
	case model.ViewLoginRequired:
		renderLoginRequired(s.out)
	}
}

func (s *Shell) submitAuth(ctx context.Context, mode AuthMode, email, password, confirm string) {
	if s.auth.Busy {
		fmt.Fprintln(s.out, model.UserMessage(model.ErrBusy, authFallback))
		return
	}

	s.auth = AuthForm{
		Mode:            mode,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	}
	if err := s.auth.Begin(); err != nil {
		fmt.Fprintln(s.out, s.auth.Message)
		return
	}

	fmt.Fprintln(s.out, s.auth.ButtonLabel())

	s.spawn(ctx, func(ctx context.Context) func() {
		var (
			session model.Session
			err     error
		)
		if mode == AuthModeRegister {
			session, err = s.sessions.Register(ctx, email, password, confirm)
		} else {
			session, err = s.sessions.Login(ctx, email, password)
		}

		return func() {
			s.auth.Finish(err)
			if err != nil {
				fmt.Fprintln(s.out, s.auth.Message)
				return
			}
			fmt.Fprintf(s.out, "Logged in as %s.\n", session.Email)
		}
	})
}

func (s *Shell) logout(ctx context.Context) {
	if err := s.sessions.Logout(ctx); err != nil {
		fmt.Fprintf(s.out, "Logged out, but the saved session could not be removed: %v\n", err)
	} else {
		fmt.Fprintln(s.out, "Logged out.")
	}

	s.gallery.Invalidate()
	s.navigate(model.ViewHome)
	s.render()
}

func (s *Shell) openGallery(ctx context.Context) {
	if s.navigate(model.ViewGallery) != model.ViewGallery {
		s.render()
		return
	}

	s.gallery.Invalidate()
	s.galleryState = galleryState{loading: true, deleting: make(map[string]bool)}
	s.render()

	epoch := s.router.Epoch()
	s.spawn(ctx, func(ctx context.Context) func() {
		projection, err := s.gallery.Load(ctx)

		return func() {
			if s.router.Stale(epoch) || errors.Is(err, model.ErrStale) {
				s.logger.Debug("Shell: dropping stale gallery load")
				return
			}

			s.galleryState.loading = false
			s.galleryState.err = ""
			if err != nil {
				s.galleryState.err = listFailureMessage
			}
			renderGallery(s.out, projection, &s.galleryState)
		}
	})
}

func (s *Shell) requireHome() bool {
	if s.router.View() == model.ViewHome {
		return true
	}
	fmt.Fprintln(s.out, "This works on the home view. Type home first.")
	return false
}

func (s *Shell) generate(ctx context.Context, prompt string) {
	if !s.requireHome() {
		return
	}
	if s.home.generating {
		fmt.Fprintln(s.out, model.UserMessage(model.ErrBusy, generateFallback))
		return
	}
	if strings.TrimSpace(prompt) == "" {
		s.home.generationStatus = model.ErrEmptyPrompt.Message
		fmt.Fprintln(s.out, s.home.generationStatus)
		return
	}

	s.home.generating = true
	s.home.generation = nil
	s.home.generationStatus = generatingText
	fmt.Fprintln(s.out, generatingText)

	epoch := s.router.Epoch()
	s.spawn(ctx, func(ctx context.Context) func() {
		gen, err := s.studio.Generate(ctx, prompt)

		return func() {
			if s.router.Stale(epoch) {
				s.logger.Debug("Shell: dropping stale generation")
				return
			}

			s.home.generating = false
			if err != nil {
				s.home.generationStatus = "Error: " + model.UserMessage(err, generateFallback)
			} else {
				s.home.generation = &gen
				s.home.generationStatus = gen.Status()
			}
			fmt.Fprintln(s.out, s.home.generationStatus)
		}
	})
}

func (s *Shell) save(ctx context.Context) {
	if !s.requireHome() {
		return
	}
	if s.home.generation == nil {
		fmt.Fprintln(s.out, "Generate an image first.")
		return
	}
	if s.home.saving {
		fmt.Fprintln(s.out, model.UserMessage(model.ErrBusy, model.Fallback{}))
		return
	}

	s.home.saving = true
	gen := *s.home.generation

	s.spawn(ctx, func(ctx context.Context) func() {
		location, err := s.studio.SaveGeneration(ctx, gen)

		return func() {
			s.home.saving = false
			if err != nil {
				fmt.Fprintf(s.out, "Failed to save image: %v\n", err)
				return
			}
			fmt.Fprintf(s.out, "Saved to %s\n", location)
		}
	})
}

func (s *Shell) selectFile(path string) {
	if !s.requireHome() {
		return
	}

	upload, err := service.OpenUpload(path)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintln(s.out, validationErr.Message)
		} else {
			fmt.Fprintf(s.out, "Could not open %s: %v\n", path, err)
		}
		return
	}

	s.home.upload = upload
	s.home.description = ""
	fmt.Fprintf(s.out, "Selected %s (%s, %d bytes).\n", upload.Filename, upload.ContentType, len(upload.Data))
}

func (s *Shell) describe(ctx context.Context) {
	if !s.requireHome() {
		return
	}
	if s.home.describing {
		fmt.Fprintln(s.out, model.UserMessage(model.ErrBusy, describeFallback))
		return
	}
	if s.home.upload == nil {
		s.home.description = model.ErrNoFileSelected.Message
		fmt.Fprintln(s.out, s.home.description)
		return
	}

	s.home.describing = true
	s.home.description = analyzingText
	fmt.Fprintln(s.out, analyzingText)

	upload := s.home.upload
	epoch := s.router.Epoch()
	s.spawn(ctx, func(ctx context.Context) func() {
		text, err := s.studio.Describe(ctx, upload)

		return func() {
			if s.router.Stale(epoch) {
				s.logger.Debug("Shell: dropping stale description")
				return
			}

			s.home.describing = false
			if err != nil {
				s.home.description = "Error: " + model.UserMessage(err, describeFallback)
			} else {
				s.home.description = text
			}
			fmt.Fprintln(s.out, s.home.description)
		}
	})
}

func (s *Shell) deleteImage(ctx context.Context, id string) {
	if _, ok := s.sessions.Current(); !ok {
		fmt.Fprintln(s.out, model.ErrNotLoggedIn.Message)
		return
	}
	if s.router.View() != model.ViewGallery {
		fmt.Fprintln(s.out, "Open the gallery first. Type gallery.")
		return
	}
	if s.galleryState.deleting[id] {
		fmt.Fprintln(s.out, model.UserMessage(model.ErrBusy, deleteFallback))
		return
	}

	s.galleryState.deleting[id] = true

	epoch := s.router.Epoch()
	s.spawn(ctx, func(ctx context.Context) func() {
		projection, err := s.gallery.Delete(ctx, id)

		return func() {
			if s.router.Stale(epoch) {
				s.logger.Debug("Shell: dropping stale delete result",
					"image_id", id)
				return
			}

			delete(s.galleryState.deleting, id)
			if err != nil {
				s.galleryState.err = model.UserMessage(err, deleteFallback)
				fmt.Fprintln(s.out, s.galleryState.err)
				return
			}

			s.galleryState.err = ""
			fmt.Fprintln(s.out, "Image deleted.")
			renderGallery(s.out, projection, &s.galleryState)
		}
	})
}

func (s *Shell) export(ctx context.Context) {
	if s.router.View() != model.ViewGallery {
		fmt.Fprintln(s.out, "Open the gallery first. Type gallery.")
		return
	}
	if s.galleryState.exporting {
		fmt.Fprintln(s.out, model.UserMessage(model.ErrBusy, model.Fallback{}))
		return
	}

	s.galleryState.exporting = true

	epoch := s.router.Epoch()
	s.spawn(ctx, func(ctx context.Context) func() {
		locations, err := s.gallery.Export(ctx)

		return func() {
			if s.router.Stale(epoch) {
				return
			}

			s.galleryState.exporting = false
			switch {
			case errors.Is(err, model.ErrNotFound):
				fmt.Fprintln(s.out, "Nothing to export.")
			case err != nil:
				fmt.Fprintf(s.out, "Export stopped after %d images: %v\n", len(locations), err)
			default:
				fmt.Fprintf(s.out, "Exported %d images.\n", len(locations))
				for _, location := range locations {
					fmt.Fprintf(s.out, "  %s\n", location)
				}
			}
		}
	})
}

func (s *Shell) usage(text string) {
	fmt.Fprintf(s.out, "Usage: %s\n", text)
}

func parse(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
