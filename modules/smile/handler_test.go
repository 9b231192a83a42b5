package smile

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smile-design-server/modules/common/config"
)

func newTestRouter(cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	NewHandler(cfg).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func Test_HandlePrompt(t *testing.T) {
	router := newTestRouter(nil)

	t.Run("should return the document for a JSON body", func(t *testing.T) {
		body := `{"arch":"upper","teeth_count":8,"brighten":"natural","widen_upper_teeth":true,
			"reduce_gummy_smile":"true","gummy_smile_severity":"moderate","tooth_preservation_mode":"complete"}`
		req := httptest.NewRequest(http.MethodPost, "/api/smile/prompt", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
		var resp PromptResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "abc-123", resp.RequestID)
		assert.Equal(t, endToEndDocument, resp.Prompt)
		assert.Equal(t, "upper", resp.Arch)
		assert.Equal(t, "8", resp.TeethCount)
		assert.Equal(t, "complete", resp.PreservationMode)
		assert.Equal(t, 3, resp.DirectiveCount)
		assert.Len(t, resp.Directives, 4)
	})

	t.Run("should accept multipart form fields", func(t *testing.T) {
		buf, contentType := multipartBody(t, map[string]string{
			"arch":                            "lower",
			"teeth_count":                     "full",
			"correct_crowding_with_alignment": "mild",
			"improve_shape_of_incisal_edges":  "true",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/smile/prompt", buf)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp PromptResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "lower", resp.Arch)
		assert.Equal(t, FullArch, resp.TeethCount)
		assert.Equal(t, 1, resp.DirectiveCount)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("should accept urlencoded form fields", func(t *testing.T) {
		form := url.Values{"arch": {"both"}, "brighten": {"subtle"}}
		req := httptest.NewRequest(http.MethodPost, "/api/smile/prompt", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp PromptResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "both", resp.Arch)
		assert.Contains(t, resp.Prompt, "both upper and lower arches")
	})

	t.Run("should reject invalid options with every error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/smile/prompt",
			strings.NewReader(`{"arch":"sideways","brighten":"ultra"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp PromptResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeInvalidOptions, resp.ErrorCode)
		assert.Len(t, resp.Errors, 2)
		assert.Empty(t, resp.Prompt)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/smile/prompt", strings.NewReader(`{"arch":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp PromptResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ErrCodeInvalidRequest, resp.ErrorCode)
	})

	t.Run("should reject objects and arrays under known keys", func(t *testing.T) {
		for _, body := range []string{`{"arch":{"x":1}}`, `{"brighten":["ultra"]}`, `{"teeth_count":[99]}`} {
			for _, path := range []string{"/api/smile/prompt", "/api/smile/validate"} {
				req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()

				router.ServeHTTP(rec, req)

				require.Equal(t, http.StatusBadRequest, rec.Code, path+" "+body)
				var resp PromptResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, ErrCodeInvalidRequest, resp.ErrorCode, path+" "+body)
			}
		}
	})

	t.Run("should reject bodies above the configured limit", func(t *testing.T) {
		small := newTestRouter(&config.Config{MaxRequestBytes: 16})
		req := httptest.NewRequest(http.MethodPost, "/api/smile/prompt",
			strings.NewReader(`{"arch":"upper","brighten":"natural"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		small.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should not route GET requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/smile/prompt", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func Test_HandleValidate(t *testing.T) {
	router := newTestRouter(nil)

	t.Run("should report validation errors with status 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/smile/validate",
			strings.NewReader(`{"widen_upper_teeth":"yes"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ValidateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.IsValid)
		assert.Equal(t, []string{"Invalid widen_upper_teeth value. Must be: true or false"}, resp.Errors)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("should accept the legacy alias", func(t *testing.T) {
		form := url.Values{"improve_shape_of_incisal_edges": {"true"}}
		req := httptest.NewRequest(http.MethodPost, "/api/smile/validate", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `true`, string(mustField(t, rec.Body.Bytes(), "isValid")))
		assert.JSONEq(t, `[]`, string(mustField(t, rec.Body.Bytes(), "errors")))
	})

	t.Run("should answer preflight requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/smile/validate", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func mustField(t *testing.T, body []byte, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	raw, ok := fields[name]
	require.True(t, ok, name)
	return raw
}
