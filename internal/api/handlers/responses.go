package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	msgInternalError = "internal server error"
)

// ErrorResponse стандартное тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeJSON декодирует тело запроса в v, запрещая неизвестные поля
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	return nil
}

// RespondJSON пишет v в тело ответа с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	// Ошибку кодирования уже не доставить клиенту: статус отправлен
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError пишет стандартное тело ошибки с указанным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondBadRequest отвечает 400 с указанным сообщением
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondNotFound отвечает 404 с указанным сообщением
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondUnauthorized отвечает 401 с указанным сообщением
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden отвечает 403 с указанным сообщением
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondInternalError отвечает 500 с обезличенным сообщением
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}
