package model

import "context"

// Backend is the image service reached over HTTP.
type Backend interface {
	Register(ctx context.Context, creds Credentials) (AuthResult, error)
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Generate(ctx context.Context, params GenerateParams) (GenerateResult, error)
	Describe(ctx context.Context, params DescribeParams) (DescribeResult, error)
	ListImages(ctx context.Context, userID string) ([]ImageRecord, error)
	DeleteImage(ctx context.Context, imageID, userID string) error
}

// Credentials is the body of the register and login calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the success body of the register and login calls.
type AuthResult struct {
	Email   string `json:"email"`
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
}

// GenerateParams describes a text-to-image request. UserID is optional.
type GenerateParams struct {
	Prompt string
	UserID string
}

// GenerateResult is the success body of the generate call.
type GenerateResult struct {
	ImageData      string `json:"image_data"`
	SavedToGallery bool   `json:"saved_to_gallery"`
}

// DescribeParams describes an upload for captioning. UserID is optional.
type DescribeParams struct {
	Upload Upload
	UserID string
}

// DescribeResult is the success body of the describe call. Older backends
// store the upload and answer with DocumentID instead of a caption.
type DescribeResult struct {
	Description string `json:"description"`
	DocumentID  string `json:"document_id"`
}
