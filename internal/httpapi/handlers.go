package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/report"
	"github.com/Veraticus/immowert/internal/schema"
	"github.com/Veraticus/immowert/internal/valuation"
)

// Messages for routes outside the pipeline.
const (
	msgBodyTooLarge     = "Anfrage ist zu groß."
	msgUnreadableBody   = "Anfrage konnte nicht gelesen werden."
	msgEntryNotFound    = "Eintrag nicht gefunden."
	msgHistoryFailed    = "Der Verlauf konnte nicht geändert werden."
	msgUnknownProcedure = "Unbekanntes Bewertungsverfahren."
	msgReportFailed     = "Der Bericht konnte nicht erstellt werden."
	msgGeocodeFailed    = "Die Adresssuche ist fehlgeschlagen."
)

// Envelope wraps every JSON response.
type Envelope struct {
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
	Success bool         `json:"success"`
}

// FieldError reports one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValuationData is the payload of a successful valuation.
type ValuationData struct {
	Results model.ValuationResult `json:"results"`
	EntryID string                `json:"entryId,omitempty"`
}

// AddressCandidate is one geocoding hit.
type AddressCandidate struct {
	DisplayName string        `json:"displayName"`
	Address     model.Address `json:"address"`
}

func (s *Server) handleLandValue(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	result, err := s.service.LookupLandValueRaw(r.Context(), body)
	if err != nil {
		s.writeError(w, err, valuation.MsgLandValueFailed)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result})
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	outcome, err := s.service.ValuateRaw(r.Context(), body)
	if err != nil {
		s.writeError(w, err, valuation.MsgValuationFailed)
		return
	}

	data := ValuationData{Results: outcome.Result}
	if outcome.Entry != nil {
		data.EntryID = outcome.Entry.ID
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: s.history.List(r.Context())})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, msgEntryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: entry})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.history.Get(r.Context(), id); err != nil {
		s.writeError(w, err, msgEntryNotFound)
		return
	}
	if err := s.history.Remove(r.Context(), id); err != nil {
		s.writeError(w, err, msgHistoryFailed)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.writeError(w, err, msgHistoryFailed)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	entry, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, msgEntryNotFound)
		return
	}

	var key model.ProcedureKey
	if name := r.URL.Query().Get("procedure"); name != "" {
		parsed, ok := model.ParseProcedureKey(name)
		if !ok {
			writeJSON(w, http.StatusBadRequest, Envelope{Error: msgUnknownProcedure})
			return
		}
		key = parsed
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, report.Request{Entry: entry, Procedure: key, Created: s.now()}); err != nil {
		s.writeError(w, err, msgReportFailed)
		return
	}

	fileName := report.FileName(entry, key, s.renderer.Extension())
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.geocoder.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err, msgGeocodeFailed)
		return
	}

	out := make([]AddressCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, AddressCandidate{DisplayName: c.DisplayName, Address: c.Address()})
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: out})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, Envelope{Error: msgBodyTooLarge})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, Envelope{Error: msgUnreadableBody})
		return nil, false
	}
	return body, true
}

// writeError classifies err, logs server-side failures and writes the envelope.
func (s *Server) writeError(w http.ResponseWriter, err error, fallback string) {
	status := valuation.Classify(err)
	if status >= http.StatusInternalServerError {
		common.LogError(s.logger, err, "request failed", common.Fields{"status": status})
	}

	env := Envelope{Error: common.UserMessage(err, fallback)}
	var errs *schema.ValidationErrors
	if errors.As(err, &errs) {
		for _, fieldErr := range errs.Errors {
			env.Details = append(env.Details, FieldError{Field: fieldErr.Field, Reason: fieldErr.Reason})
		}
	}
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
