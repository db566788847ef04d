package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"oohsheets/pkg/records"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	svc          *records.Service
	maxBodyBytes int64
	now          func() time.Time
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("Failed to encode response: %v", err)
		sendResponse(w, http.StatusInternalServerError, []byte(`{"error":"failed to encode response","code":"INTERNAL_ERROR"}`))
		return
	}
	sendResponse(w, status, body)
}

// errorStatus maps an error kind to its HTTP status and wire code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, records.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, records.ErrRouteNotFound):
		return http.StatusNotFound, "ROUTE_NOT_FOUND"
	case errors.Is(err, records.ErrInvalidID):
		return http.StatusBadRequest, "INVALID_ID"
	case errors.Is(err, records.ErrInvalidAction):
		return http.StatusBadRequest, "INVALID_ACTION"
	case errors.Is(err, records.ErrInvalidBody):
		return http.StatusBadRequest, "INVALID_BODY"
	case errors.Is(err, records.ErrSheetNotFound):
		return http.StatusInternalServerError, "SHEET_NOT_FOUND"
	case errors.Is(err, records.ErrStore):
		return http.StatusInternalServerError, "STORE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func sendError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	entry := log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"code":       code,
	})
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		entry.Debugf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	sendJSON(w, status, ErrorBody{Error: err.Error(), Code: code})
}

func sendResult(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, Result{Sucesso: true, Mensagem: msg})
}

// pathID reads the {id} URL parameter. The route pattern only admits digits,
// so the remaining failure is overflow.
func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", records.ErrInvalidID, raw)
	}
	return id, nil
}

func (h *handler) decodeFields(w http.ResponseWriter, r *http.Request) (records.Fields, error) {
	return records.DecodeFields(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, Health{Status: "OK", Timestamp: h.now().UTC()})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, recs)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, rec)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	fields, err := h.decodeFields(w, r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	if err := h.svc.Create(r.Context(), fields); err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, http.StatusCreated, msgCreated)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	fields, err := h.decodeFields(w, r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	if err := h.svc.Update(r.Context(), id, fields); err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, http.StatusOK, msgUpdated)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, http.StatusOK, msgDeleted)
}

// deleteGroup removes every record whose coluna equals valor.
func (h *handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	column := q.Get("coluna")
	if column == "" || !q.Has("valor") {
		sendError(w, r, fmt.Errorf("%w: coluna and valor query parameters are required", records.ErrInvalidBody))
		return
	}
	n, err := h.svc.DeleteWhere(r.Context(), column, q.Get("valor"))
	if err != nil {
		if n > 0 {
			log.WithField("request_id", middleware.GetReqID(r.Context())).
				Warnf("Bulk delete stopped after %d records", n)
		}
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, Result{
		Sucesso:   true,
		Mensagem:  fmt.Sprintf("%d registro(s) deletado(s)", n),
		Removidos: &n,
	})
}

func (h *handler) routeNotFound(w http.ResponseWriter, r *http.Request) {
	sendError(w, r, fmt.Errorf("%w: %s %s", records.ErrRouteNotFound, r.Method, r.URL.Path))
}
