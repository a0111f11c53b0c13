package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// chunked builds a request whose length is unknown up front, the way a
// client streaming its body sends it.
func chunked(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/users/u1/sessions/s1/revoke", io.MultiReader(strings.NewReader(body)))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	return req
}

func TestDecodeOptional(t *testing.T) {
	t.Run("empty chunked body", func(t *testing.T) {
		var req authsdk.AdminRevokeRequest
		rec := httptest.NewRecorder()
		require.True(t, decodeOptional(rec, chunked(""), &req))
		require.False(t, req.ConfirmSelf)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty body with zero length", func(t *testing.T) {
		var req authsdk.AdminRevokeRequest
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		require.True(t, decodeOptional(httptest.NewRecorder(), r, &req))
	})

	t.Run("chunked body with content", func(t *testing.T) {
		var req authsdk.AdminRevokeRequest
		require.True(t, decodeOptional(httptest.NewRecorder(), chunked(`{"confirmSelf":true}`), &req))
		require.True(t, req.ConfirmSelf)
	})

	t.Run("malformed body", func(t *testing.T) {
		var req authsdk.AdminRevokeRequest
		rec := httptest.NewRecorder()
		require.False(t, decodeOptional(rec, chunked(`{"confirmSelf":`), &req))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), authsdk.CodeValidation)
	})
}
