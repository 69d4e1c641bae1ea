package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	require.NotEmpty(t, raw, "HX-Trigger header not set")
	var triggers map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &triggers))
	return triggers
}

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "test", w.Body.String())
	require.Empty(t, w.Header().Get("HX-Trigger"))
}

func TestHTMXResponseBuilder_RecordTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerRecordChanged("invoice", "updated", "inv-1").
		TriggerFormReset().
		TriggerSuccessNotification("Fatura atualizada.").
		Refresh().
		Write(w)

	triggers := decodeTriggers(t, w)
	require.JSONEq(t, `{"id":"inv-1"}`, string(triggers["invoice:updated"]))
	require.Contains(t, triggers, "form:reset")
	require.JSONEq(t, `{"type":"success","message":"Fatura atualizada.","duration":3000}`,
		string(triggers["show-notification"]))
	require.Equal(t, "true", w.Header().Get("HX-Refresh"))
}

func TestHTMXResponseBuilder_WarningNotification(t *testing.T) {
	t.Run("joins messages", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHTMXResponse().
			TriggerWarningNotification([]string{"Não foi possível carregar faturas.", "Não foi possível carregar clientes."}).
			Write(w)

		triggers := decodeTriggers(t, w)
		var n struct {
			Type     string `json:"type"`
			Message  string `json:"message"`
			Duration int    `json:"duration"`
		}
		require.NoError(t, json.Unmarshal(triggers["show-notification"], &n))
		require.Equal(t, "warning", n.Type)
		require.Equal(t, "Não foi possível carregar faturas. Não foi possível carregar clientes.", n.Message)
		require.Equal(t, 6000, n.Duration)
	})

	t.Run("no warnings adds nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHTMXResponse().TriggerWarningNotification(nil).Write(w)
		require.Empty(t, w.Header().Get("HX-Trigger"))
	})
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		build  func(string) *HTMXResponseBuilder
		status int
	}{
		{"bad request", BadRequestError, http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError, http.StatusUnprocessableEntity},
		{"not found", NotFoundError, http.StatusNotFound},
		{"conflict", ConflictError, http.StatusConflict},
		{"internal", InternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build(`valor <inválido>`).Write(w)

			require.Equal(t, tt.status, w.Code)
			require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			require.Contains(t, w.Body.String(), "valor &lt;inválido&gt;")
			require.NotContains(t, w.Body.String(), "<inválido>")

			triggers := decodeTriggers(t, w)
			require.Contains(t, string(triggers["show-notification"]), `"type":"error"`)
		})
	}
}

func TestRedirectHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Status(http.StatusUnauthorized).Redirect("/login").Write(w)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "/login", w.Header().Get("HX-Redirect"))
}
