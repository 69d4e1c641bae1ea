package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

// parseBody decodes the request body or answers 400/413 itself.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			s.writeError(w, r, err)
		} else {
			s.badRequest(w, r)
		}
		return nil, false
	}
	return p, true
}

// writeRecord answers a successful write. htmx callers get a notification
// and a page refresh; API callers get the record, or 204 when rec is nil.
func (s *Server) writeRecord(w http.ResponseWriter, r *http.Request, status int, entity, op, id string, rec any, msg string) {
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerRecordChanged(entity, op, id).
			TriggerSuccessNotification(msg).
			TriggerFormReset().
			Refresh().
			Write(w)
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, rec)
}

// Clients

func (s *Server) apiListClients(w http.ResponseWriter, r *http.Request) {
	v := s.practice.ClientsPage(r.Context(), currentUser(r), clientFilter(r.URL.Query()))
	writeJSON(w, http.StatusOK, map[string]any{
		"clients":  v.Clients,
		"metrics":  metricsMap(v.Metrics),
		"warnings": v.Warnings,
	})
}

func (s *Server) apiGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.practice.GetClient(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	c, err := s.practice.CreateClient(r.Context(), currentUser(r), clientFromBody(p))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusCreated, ports.EntityClient, ports.RecordCreated, c.ID, c, "Cliente cadastrado.")
}

func (s *Server) apiUpdateClient(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	c := clientFromBody(p)
	c.ID = chi.URLParam(r, "id")
	c, err := s.practice.UpdateClient(r.Context(), currentUser(r), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityClient, ports.RecordUpdated, c.ID, c, "Cliente atualizado.")
}

func (s *Server) apiDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.practice.DeleteClient(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusNoContent, ports.EntityClient, ports.RecordDeleted, id, nil, "Cliente excluído.")
}

// Processes

func (s *Server) apiListProcesses(w http.ResponseWriter, r *http.Request) {
	v := s.practice.ProcessesPage(r.Context(), currentUser(r), processFilter(r.URL.Query()))
	writeJSON(w, http.StatusOK, map[string]any{
		"processes": v.Processes,
		"metrics":   metricsMap(v.Metrics),
		"warnings":  v.Warnings,
	})
}

func (s *Server) apiGetProcess(w http.ResponseWriter, r *http.Request) {
	p, err := s.practice.GetProcess(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiCreateProcess(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	p, err := processFromBody(body)
	if err == nil {
		p, err = s.practice.CreateProcess(r.Context(), currentUser(r), p)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusCreated, ports.EntityProcess, ports.RecordCreated, p.ID, p, "Processo cadastrado.")
}

func (s *Server) apiUpdateProcess(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	p, err := processFromBody(body)
	if err == nil {
		p.ID = chi.URLParam(r, "id")
		p, err = s.practice.UpdateProcess(r.Context(), currentUser(r), p)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityProcess, ports.RecordUpdated, p.ID, p, "Processo atualizado.")
}

func (s *Server) apiConcludeProcess(w http.ResponseWriter, r *http.Request) {
	p, err := s.practice.ConcludeProcess(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityProcess, ports.RecordUpdated, p.ID, p, "Processo concluído.")
}

func (s *Server) apiDeleteProcess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.practice.DeleteProcess(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusNoContent, ports.EntityProcess, ports.RecordDeleted, id, nil, "Processo excluído.")
}

// Services

func (s *Server) apiListServices(w http.ResponseWriter, r *http.Request) {
	v := s.practice.ServicesPage(r.Context(), currentUser(r), serviceFilter(r.URL.Query()))
	writeJSON(w, http.StatusOK, map[string]any{
		"services": v.Services,
		"metrics":  metricsMap(v.Metrics),
		"warnings": v.Warnings,
	})
}

func (s *Server) apiGetService(w http.ResponseWriter, r *http.Request) {
	ls, err := s.practice.GetService(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (s *Server) apiCreateService(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	ls, err := serviceFromBody(body)
	if err == nil {
		ls, err = s.practice.CreateService(r.Context(), currentUser(r), ls)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusCreated, ports.EntityService, ports.RecordCreated, ls.ID, ls, "Serviço cadastrado.")
}

func (s *Server) apiUpdateService(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	ls, err := serviceFromBody(body)
	if err == nil {
		ls.ID = chi.URLParam(r, "id")
		ls, err = s.practice.UpdateService(r.Context(), currentUser(r), ls)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityService, ports.RecordUpdated, ls.ID, ls, "Serviço atualizado.")
}

func (s *Server) apiDeleteService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.practice.DeleteService(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusNoContent, ports.EntityService, ports.RecordDeleted, id, nil, "Serviço excluído.")
}

// Invoices

func (s *Server) apiListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.practice.ListInvoices(r.Context(), currentUser(r), invoiceFilter(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (s *Server) apiGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.practice.GetInvoice(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) apiCreateInvoice(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	inv, err := invoiceFromBody(body)
	if err == nil {
		inv, err = s.practice.CreateInvoice(r.Context(), currentUser(r), inv)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusCreated, ports.EntityInvoice, ports.RecordCreated, inv.ID, inv, "Fatura criada.")
}

func (s *Server) apiUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	inv, err := invoiceFromBody(body)
	if err == nil {
		inv.ID = chi.URLParam(r, "id")
		inv, err = s.practice.UpdateInvoice(r.Context(), currentUser(r), inv)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityInvoice, ports.RecordUpdated, inv.ID, inv, "Fatura atualizada.")
}

func (s *Server) apiPayInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.practice.MarkInvoicePaid(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityInvoice, ports.RecordUpdated, inv.ID, inv, "Fatura marcada como paga.")
}

func (s *Server) apiSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	status, err := core.ParseInvoiceStatus(body.Get("status"))
	var inv core.Invoice
	if err == nil {
		inv, err = s.practice.SetInvoiceStatus(r.Context(), currentUser(r), chi.URLParam(r, "id"), status)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityInvoice, ports.RecordUpdated, inv.ID, inv, "Status da fatura atualizado.")
}

func (s *Server) apiDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.practice.DeleteInvoice(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusNoContent, ports.EntityInvoice, ports.RecordDeleted, id, nil, "Fatura excluída.")
}

// Views

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	v := s.practice.Dashboard(r.Context(), currentUser(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"today":     core.DateOf(v.Today),
		"metrics":   metricsMap(v.Metrics),
		"upcoming":  v.Upcoming,
		"calendar":  gridToJSON(v.Calendar),
		"processes": v.Processes,
		"warnings":  v.Warnings,
	})
}

func (s *Server) apiBilling(w http.ResponseWriter, r *http.Request) {
	v := s.practice.Billing(r.Context(), currentUser(r), invoiceFilter(r.URL.Query()))
	writeJSON(w, http.StatusOK, map[string]any{
		"invoices":     v.Invoices,
		"metrics":      metricsMap(v.Metrics),
		"revenue":      bucketsToJSON(v.Revenue),
		"upcoming_due": v.UpcomingDue,
		"warnings":     v.Warnings,
	})
}

func (s *Server) apiCalendar(w http.ResponseWriter, r *http.Request) {
	year, month := ParseMonthParams(r.URL.Query(), s.practice.Today())
	v := s.practice.Calendar(r.Context(), currentUser(r), year, month)

	months := make([]gridJSON, 0, len(v.Months))
	for _, g := range v.Months {
		months = append(months, gridToJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"months":   months,
		"upcoming": eventsToJSON(v.Upcoming),
		"warnings": v.Warnings,
	})
}

func (s *Server) apiUpcoming(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.practice.UpcomingTasks(r.Context(), currentUser(r), ParseLimit(r.URL.Query(), 0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Profile

func (s *Server) apiGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.practice.LoadProfile(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiSaveProfile(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	p, err := s.practice.SaveProfile(r.Context(), currentUser(r), profileFromBody(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, ports.EntityProfile, ports.RecordUpdated, p.UserID, p, "Configurações salvas.")
}
