package model

// View names one of the mutually exclusive screens.
type View int

const (
	// ViewHome is the generation and description screen.
	ViewHome View = iota
	// ViewGallery is the per-user gallery.
	ViewGallery
	// ViewLoginRequired replaces the gallery when nobody is logged in.
	ViewLoginRequired
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewGallery:
		return "gallery"
	case ViewLoginRequired:
		return "login-required"
	default:
		return "unknown"
	}
}
