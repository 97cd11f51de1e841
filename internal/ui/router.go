package ui

import "github.com/dtroode/imagestudio/internal/model"

// Router tracks the active view. It is owned by the shell's event loop and
// is not safe for concurrent use.
type Router struct {
	session model.SessionProvider
	view    model.View
	epoch   uint64
}

// NewRouter starts on the home view.
func NewRouter(session model.SessionProvider) *Router {
	return &Router{
		session: session,
		view:    model.ViewHome,
	}
}

// View returns the active view.
func (r *Router) View() model.View {
	return r.view
}

// Epoch identifies the current activation of the active view.
func (r *Router) Epoch() uint64 {
	return r.epoch
}

// Navigate switches to the requested view and returns the one actually
// shown. The gallery is only reachable with a valid session. Staying on the
// same view keeps the current epoch.
func (r *Router) Navigate(view model.View) model.View {
	if view == model.ViewGallery {
		if _, ok := r.session.Current(); !ok {
			view = model.ViewLoginRequired
		}
	}

	if view != r.view {
		r.view = view
		r.epoch++
	}

	return r.view
}

// Reset returns to the home view.
func (r *Router) Reset() {
	r.Navigate(model.ViewHome)
}

// Stale reports whether a result issued at epoch belongs to a view
// activation that has since ended.
func (r *Router) Stale(epoch uint64) bool {
	return epoch != r.epoch
}
