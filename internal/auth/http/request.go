package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeRequest reads a JSON body into dst and runs its validate tags. On
// failure it writes a VALIDATION_ERROR and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		authsdk.ErrValidation.WithMessage("invalid JSON body").WriteError(w)
		return false
	}
	return validateRequest(w, dst)
}

// decodeOptional is decodeRequest for endpoints whose body may be empty. An
// empty body is spotted by the decoder hitting EOF, so chunked requests with
// no content count as empty too.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := httpx.DecodeJSON(w, r, dst)
	if err != nil && !errors.Is(err, io.EOF) {
		authsdk.ErrValidation.WithMessage("invalid JSON body").WriteError(w)
		return false
	}
	return validateRequest(w, dst)
}

func validateRequest(w http.ResponseWriter, dst any) bool {
	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", lowerFirst(fe.Field()), fe.Tag()))
		}
		authsdk.ErrValidation.WithMessage("invalid fields: " + strings.Join(fields, ", ")).WriteError(w)
		return false
	}

	authsdk.ErrValidation.WriteError(w)
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// deviceFrom describes the client a request came from.
func deviceFrom(r *http.Request) domain.DeviceInfo {
	return domain.DeviceInfo{
		UserAgent: r.UserAgent(),
		IP:        httpx.ClientIP(r),
	}
}

// actorFrom builds the admin actor from the identity AuthnMiddleware
// resolved. Permissions arrive sorted from ResolvePermissions.
func actorFrom(r *http.Request) service.Actor {
	ctx := r.Context()
	return service.Actor{
		UserID:      httpx.UserIDFromContext(ctx),
		SessionID:   httpx.SessionIDFromContext(ctx),
		Permissions: domain.PermissionSet(httpx.PermissionsFromContext(ctx)),
		Device:      deviceFrom(r),
	}
}
