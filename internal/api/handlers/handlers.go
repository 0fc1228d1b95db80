// Package handlers общие helpers для HTTP-обработчиков
package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeJSON декодирует тело запроса в dst
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// RespondJSON пишет JSON-ответ с указанным статусом.
// payload == nil означает ответ без тела.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondBadRequest отвечает 400 с сообщением об ошибке
func RespondBadRequest(w http.ResponseWriter, msg string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

// RespondUnauthorized отвечает 401 с сообщением об ошибке
func RespondUnauthorized(w http.ResponseWriter, msg string) {
	RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: msg})
}

// RespondForbidden отвечает 403 с сообщением об ошибке
func RespondForbidden(w http.ResponseWriter, msg string) {
	RespondJSON(w, http.StatusForbidden, ErrorResponse{Error: msg})
}

// RespondNotFound отвечает 404 с сообщением об ошибке
func RespondNotFound(w http.ResponseWriter, msg string) {
	RespondJSON(w, http.StatusNotFound, ErrorResponse{Error: msg})
}

// RespondInternalError отвечает 500
func RespondInternalError(w http.ResponseWriter) {
	RespondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка сервера"})
}

// RespondServiceUnavailable отвечает 503: провайдер повторит доставку webhook-а
func RespondServiceUnavailable(w http.ResponseWriter, msg string) {
	RespondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: msg})
}
