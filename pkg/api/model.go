package api

import (
	"encoding/json"
	"time"
)

// Result is the body of every successful write.
type Result struct {
	Sucesso  bool   `json:"sucesso"`
	Mensagem string `json:"mensagem"`

	// Removidos is only set by bulk deletes.
	Removidos *int `json:"removidos,omitempty"`
}

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// execRequest is the body of the combined endpoint. Dados holds the record
// for criar and atualizar; ID may be a JSON number or a numeric string.
type execRequest struct {
	Acao  string          `json:"acao"`
	ID    json.RawMessage `json:"id"`
	Dados json.RawMessage `json:"dados"`
}

const (
	msgCreated = "Registro criado"
	msgUpdated = "Registro atualizado"
	msgDeleted = "Registro deletado"
)
