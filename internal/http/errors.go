package http

import (
	"errors"
	"net/http"

	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/ports"
)

var errBodyTooLarge = errors.New("request body too large")

// fieldLabels translates validation field names for user-facing messages.
var fieldLabels = map[string]string{
	"name":           "nome",
	"email":          "e-mail",
	"client_id":      "cliente",
	"process_id":     "processo",
	"service_id":     "serviço",
	"number":         "número do processo",
	"type":           "tipo",
	"court":          "vara/tribunal",
	"subject":        "assunto",
	"status":         "status",
	"value":          "valor",
	"amount":         "valor",
	"issue_date":     "data de emissão",
	"due_date":       "data de vencimento",
	"next_task_date": "data da próxima tarefa",
	"full_name":      "nome completo",
	"avatar_url":     "URL do avatar",
	"theme":          "tema",
}

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// classifyError maps an error to a status code and a pt-BR message.
// Validation is checked first: some validation errors wrap store sentinels.
func classifyError(err error) (int, apiError) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		label := fieldLabels[ve.Field]
		if label == "" {
			label = ve.Field
		}
		return http.StatusUnprocessableEntity, apiError{Error: "Dados inválidos: " + label, Field: ve.Field}
	case errors.Is(err, core.ErrInvalidTransition):
		return http.StatusConflict, apiError{Error: "Mudança de status não permitida."}
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, apiError{Error: "Registro não encontrado."}
	case errors.Is(err, ports.ErrForeignKey):
		return http.StatusConflict, apiError{Error: "Operação bloqueada por registros relacionados."}
	case errors.Is(err, ports.ErrDuplicate):
		return http.StatusConflict, apiError{Error: "Registro duplicado."}
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, apiError{Error: "Requisição muito grande."}
	}
	return http.StatusInternalServerError, apiError{Error: "Erro interno. Tente novamente."}
}

// writeError answers an API call. htmx requests get an HTML fragment and a
// show-notification trigger; everything else gets JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classifyError(err)

	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP)
	if status >= http.StatusInternalServerError {
		fields := applog.NewFields().WithUser(currentUser(r))
		fields[applog.FieldPath] = r.URL.Path
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, methodOp(r.Method), fields)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.FieldError, err, applog.FieldStatusCode, status)
	}

	if isHTMX(r) {
		ErrorResponse(status, body.Error).Write(w)
		return
	}
	writeJSON(w, status, body)
}

// methodOp names the record operation an API method performs.
func methodOp(method string) string {
	switch method {
	case http.MethodPost:
		return applog.OpCreate
	case http.MethodPut, http.MethodPatch:
		return applog.OpUpdate
	case http.MethodDelete:
		return applog.OpDelete
	}
	return applog.OpRead
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		BadRequestError("Formato da requisição inválido.").Write(w)
		return
	}
	writeJSON(w, http.StatusBadRequest, apiError{Error: "Formato da requisição inválido."})
}
