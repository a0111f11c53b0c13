package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the service
//	@Description	Creates the first account with the FOUNDER role. Only available when a bootstrap
//	@Description	token is configured, and only while no account exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string									true	"Bootstrap token"
//	@Param			request				body		authsdk.BootstrapRequest				true	"Founder credentials"
//	@Success		201					{object}	authsdk.Envelope[authsdk.UserResponse]	"Founder created"
//	@Failure		400					{object}	httpx.ErrorBody							"VALIDATION_ERROR"
//	@Failure		401					{object}	httpx.ErrorBody							"BOOTSTRAP_UNAUTHORIZED"
//	@Failure		404					{object}	httpx.ErrorBody							"BOOTSTRAP_DISABLED"
//	@Failure		409					{object}	httpx.ErrorBody							"ALREADY_BOOTSTRAPPED"
//	@Router			/auth/bootstrap [post]
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Info("Starting to bootstrap")

	if h.BootstrapService.Token == "" {
		authsdk.ErrBootstrapDisabled.WriteError(w)
		return
	}

	token := r.Header.Get(authsdk.BootstrapTokenHeader)
	if token == "" {
		authsdk.ErrBootstrapUnauthorized.WriteError(w)
		return
	}

	var req authsdk.BootstrapRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.BootstrapService.Bootstrap(r.Context(), token, req.Email, req.Password, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusCreated, "bootstrapped", toUserResponse(user))
}
