package testutil

import (
	"net/http"

	"proofregistry/pkg/domain"
	"proofregistry/pkg/requestcontext"
)

// WithCaller sets the calling principal on the request context, as the auth
// middleware would for a valid bearer token.
func WithCaller(req *http.Request, caller domain.Principal) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithRequestID sets a fixed request id on the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
