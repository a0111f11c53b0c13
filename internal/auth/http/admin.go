package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// AdminModeHeader tells admin consoles to render the response read-only.
const AdminModeHeader = "x-admin-mode"

// AdminHandler exposes AdminService. The service checks permissions on
// every call; the router only keeps non-admins away from the routes.
type AdminHandler struct {
	Admin *service.AdminService
}

// HandleListSessions godoc
//
//	@Summary		List a user's sessions
//	@Description	Sessions and recent activity of any user. When the activity log cannot be read the
//	@Description	view is still returned, flagged degraded, with the x-admin-mode: degraded header.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.Envelope[authsdk.AdminSessionsView]
//	@Failure		403	{object}	httpx.ErrorBody	"FORBIDDEN"
//	@Failure		404	{object}	httpx.ErrorBody	"USER_NOT_FOUND"
//	@Router			/admin/users/{id}/sessions [get]
func (h *AdminHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)

	view, err := h.Admin.ListUserSessions(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if view.Degraded {
		w.Header().Set(AdminModeHeader, "degraded")
	}
	httpx.WriteOK(w, http.StatusOK, "", toAdminView(view))
}

// HandleRevokeSession godoc
//
//	@Summary		Revoke a user's session
//	@Description	Revoking one of the caller's own sessions requires confirmSelf=true.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			sid		path		string						true	"Session ID"
//	@Param			request	body		authsdk.AdminRevokeRequest	false	"Self-revoke confirmation"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN, SELF_REVOKE_CONFIRMATION_REQUIRED"
//	@Failure		404		{object}	httpx.ErrorBody	"SESSION_NOT_FOUND"
//	@Router			/admin/users/{id}/sessions/{sid}/revoke [post]
func (h *AdminHandler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AdminRevokeRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	err := h.Admin.RevokeUserSession(r.Context(), actorFrom(r), r.PathValue("id"), r.PathValue("sid"), req.ConfirmSelf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "session revoked", nil)
}

// HandleRevokeAll godoc
//
//	@Summary		Revoke all of a user's sessions
//	@Description	Revoking one's own sessions requires confirmSelf=true.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.AdminRevokeRequest	false	"Self-revoke confirmation"
//	@Success		200		{object}	authsdk.Envelope[authsdk.RevokeResult]
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN, SELF_REVOKE_CONFIRMATION_REQUIRED"
//	@Router			/admin/users/{id}/sessions/revoke-all [post]
func (h *AdminHandler) HandleRevokeAll(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AdminRevokeRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	n, err := h.Admin.RevokeAllUserSessions(r.Context(), actorFrom(r), r.PathValue("id"), req.ConfirmSelf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "sessions revoked", authsdk.RevokeResult{Revoked: n})
}

// HandleSetStatus godoc
//
//	@Summary		Set account status
//	@Description	Disabling an account revokes its sessions.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		authsdk.StatusRequest	true	"pending_verification, active or disabled"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.ErrorBody	"VALIDATION_ERROR"
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN"
//	@Router			/admin/users/{id}/status [put]
func (h *AdminHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req authsdk.StatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Admin.SetUserStatus(r.Context(), actorFrom(r), r.PathValue("id"), domain.Status(req.Status)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "status updated", nil)
}

// HandleSetRole godoc
//
//	@Summary		Set role
//	@Description	SUSPENDED and BANNED revoke the user's sessions.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User ID"
//	@Param			request	body		authsdk.RoleRequest	true	"Role"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.ErrorBody	"VALIDATION_ERROR"
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN"
//	@Router			/admin/users/{id}/role [put]
func (h *AdminHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RoleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Admin.SetUserRole(r.Context(), actorFrom(r), r.PathValue("id"), domain.Role(req.Role)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "role updated", nil)
}

// HandleSetPermissions godoc
//
//	@Summary		Override permissions
//	@Description	Replaces the role grant with an explicit list. A null list restores the role grant.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.PermissionsRequest	true	"Permissions"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.ErrorBody	"VALIDATION_ERROR"
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN"
//	@Router			/admin/users/{id}/permissions [put]
func (h *AdminHandler) HandleSetPermissions(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PermissionsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Admin.SetUserPermissions(r.Context(), actorFrom(r), r.PathValue("id"), req.Permissions); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "permissions updated", nil)
}

// HandleSetFlag godoc
//
//	@Summary		Set a feature flag
//	@Description	Compare-and-set: the write only lands if the flag still holds expected. On a
//	@Description	conflict the error body carries the current value.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			flag	path		string						true	"Flag name"
//	@Param			request	body		authsdk.FeatureFlagRequest	true	"Expected and new value"
//	@Success		200		{object}	authsdk.Envelope[authsdk.FeatureFlagResponse]
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN"
//	@Failure		409		{object}	authsdk.APIError	"FEATURE_FLAG_CONFLICT"
//	@Router			/admin/users/{id}/flags/{flag} [patch]
func (h *AdminHandler) HandleSetFlag(w http.ResponseWriter, r *http.Request) {
	var req authsdk.FeatureFlagRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	flag := r.PathValue("flag")
	value, err := h.Admin.SetFeatureFlag(r.Context(), actorFrom(r), r.PathValue("id"), flag, *req.Expected, *req.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "flag updated", authsdk.FeatureFlagResponse{Flag: flag, Value: value})
}

// HandleDeleteUser godoc
//
//	@Summary		Soft-delete a user
//	@Description	Marks the account deleted and revokes its sessions. The row is kept for audit.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.DeleteUserRequest	false	"Reason"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.ErrorBody	"FORBIDDEN"
//	@Failure		404		{object}	httpx.ErrorBody	"USER_NOT_FOUND"
//	@Router			/admin/users/{id} [delete]
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req authsdk.DeleteUserRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	if err := h.Admin.SoftDeleteUser(r.Context(), actorFrom(r), r.PathValue("id"), req.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "user deleted", nil)
}
