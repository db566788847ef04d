package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"oohsheets/pkg/records"
)

// exec serves the combined endpoint used by older web-app clients: one POST
// path whose body names the operation in "acao". A body without "acao" is
// itself the record to create.
func (h *handler) exec(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		sendError(w, r, fmt.Errorf("%w: %v", records.ErrInvalidBody, err))
		return
	}
	var req execRequest
	if err := json.Unmarshal(body, &req); err != nil {
		sendError(w, r, fmt.Errorf("%w: %v", records.ErrInvalidBody, err))
		return
	}

	ctx := r.Context()
	switch action := strings.ToLower(strings.TrimSpace(req.Acao)); action {
	case "":
		h.execCreate(w, r, body)

	case "criar":
		h.execCreate(w, r, req.Dados)

	case "listar":
		recs, err := h.svc.List(ctx)
		if err != nil {
			sendError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, recs)

	case "obter":
		id, err := execID(req.ID)
		if err != nil {
			sendError(w, r, err)
			return
		}
		rec, err := h.svc.Get(ctx, id)
		if err != nil {
			sendError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, rec)

	case "atualizar":
		id, err := execID(req.ID)
		if err != nil {
			sendError(w, r, err)
			return
		}
		fields, err := records.DecodeFields(bytes.NewReader(req.Dados))
		if err != nil {
			sendError(w, r, err)
			return
		}
		if err := h.svc.Update(ctx, id, fields); err != nil {
			sendError(w, r, err)
			return
		}
		sendResult(w, http.StatusOK, msgUpdated)

	case "deletar":
		id, err := execID(req.ID)
		if err != nil {
			sendError(w, r, err)
			return
		}
		if err := h.svc.Delete(ctx, id); err != nil {
			sendError(w, r, err)
			return
		}
		sendResult(w, http.StatusOK, msgDeleted)

	default:
		sendError(w, r, fmt.Errorf("%w: %q", records.ErrInvalidAction, req.Acao))
	}
}

func (h *handler) execCreate(w http.ResponseWriter, r *http.Request, raw []byte) {
	fields, err := records.DecodeFields(bytes.NewReader(raw))
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

// execID accepts 3 or "3". Missing, negative and non-integer ids are invalid.
func execID(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: id is required", records.ErrInvalidID)
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: %s", records.ErrInvalidID, raw)
		}
	}
	id, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %s", records.ErrInvalidID, raw)
	}
	return id, nil
}
