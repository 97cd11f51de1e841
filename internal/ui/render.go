package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtroode/imagestudio/internal/model"
)

const (
	emptyGalleryText  = "You haven't generated any images yet."
	loginRequiredHead = "Please Log In"
	loadingText       = "Loading your images..."
	generatingText    = "Generating your image..."
	analyzingText     = "Analyzing your image..."
)

func renderNavbar(w io.Writer, view model.View, session model.Session, loggedIn bool) {
	user := "not logged in"
	if loggedIn {
		user = session.Email
	}
	fmt.Fprintf(w, "== AI Image Studio [%s] %s ==\n", view, user)
}

func renderHome(w io.Writer, home *homeState) {
	fmt.Fprintln(w, "Create stunning visuals from text or get detailed descriptions of your images.")

	if home.generationStatus != "" {
		fmt.Fprintf(w, "Generate: %s\n", home.generationStatus)
	}
	if home.upload != nil {
		fmt.Fprintf(w, "Selected: %s (%s, %d bytes)\n", home.upload.Filename, home.upload.ContentType, len(home.upload.Data))
	}
	if home.description != "" {
		fmt.Fprintf(w, "Describe: %s\n", home.description)
	}
}

func renderGallery(w io.Writer, gallery model.Gallery, state *galleryState) {
	fmt.Fprintln(w, "My Gallery")

	switch {
	case state.loading:
		fmt.Fprintln(w, loadingText)
		return
	case state.err != "":
		fmt.Fprintln(w, state.err)
	}

	if gallery.Empty() {
		if state.err == "" {
			fmt.Fprintln(w, emptyGalleryText)
		}
		return
	}

	for _, group := range gallery.Groups() {
		fmt.Fprintf(w, "\n%s\n%s\n", model.FormatDateHeading(group.Date), strings.Repeat("-", len(model.FormatDateHeading(group.Date))))
		for _, img := range group.Images {
			fmt.Fprintf(w, "  %s  %s\n", img.ID, img.Filename)
		}
	}
}

func renderLoginRequired(w io.Writer) {
	fmt.Fprintln(w, loginRequiredHead)
	fmt.Fprintln(w, model.ErrLoginRequired.Message)
}

const helpText = `Commands:
  home                              show the home view
  gallery                           show your gallery
  login <email> <password>          log in
  register <email> <password> <confirm>
                                    create an account
  logout                            log out
  whoami                            show the logged in user
  generate <prompt...>              generate an image from text
  save                              save the last generated image
  select <path>                     choose an image to describe
  describe                          describe the selected image
  delete <id>                       delete an image from your gallery
  export                            save every gallery image
  quit                              leave`
