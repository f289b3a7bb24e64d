package response

import (
	"encoding/json"
	"net/http"

	"github.com/baikalhq/groupware/pkg/apperror"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message, code string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	envelope := Envelope{
		Status:  status,
		Message: message,
		Code:    code,
		Data:    data,
	}
	json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, "", data)
}

func Error(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, false, message, code, nil)
}

// FromError maps any error onto the error taxonomy and writes it
func FromError(w http.ResponseWriter, err error) {
	appErr := apperror.FromError(err)
	Error(w, appErr.Status, appErr.Message, appErr.Code)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message, apperror.CodeBadRequest)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, apperror.CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message, apperror.CodeUnauthorized)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, apperror.CodeNotFound)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message, apperror.CodeInternalError)
}
