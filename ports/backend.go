package ports

import (
	"context"

	"prithvipulse/domain/core"
	"prithvipulse/models"
)

// BackendResponse is a 2xx answer from the AI backend
type BackendResponse struct {
	StatusCode int
	Body       []byte
}

// BackendClient performs single-attempt calls against the AI backend.
//
// Errors are *errors.AppError values coded TRANSPORT_ERROR, PROTOCOL_ERROR
// (with the HTTP status), or TIMEOUT. A non-2xx status is always an error.
type BackendClient interface {
	// PostJSON sends payload as a JSON body
	PostJSON(ctx context.Context, requestID core.RequestID, path string, payload any) (*BackendResponse, error)

	// PostFile sends the upload as multipart form data under field
	PostFile(ctx context.Context, requestID core.RequestID, path, field string, upload models.ImageUpload) (*BackendResponse, error)

	// Get issues a bodiless GET
	Get(ctx context.Context, requestID core.RequestID, path string) (*BackendResponse, error)

	// BaseURL is the resolved backend root, used in user-facing guidance
	BaseURL() string
}
