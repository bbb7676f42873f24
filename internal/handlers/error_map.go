package handlers

import (
	"net/http"

	"interpretation-service/internal/apperror"
	"interpretation-service/internal/logger"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation: http.StatusBadRequest,
	apperror.KindNotFound:   http.StatusNotFound,
	apperror.KindConflict:   http.StatusConflict,
}

// writeServiceError переводит ошибку сервиса в HTTP ответ. Клиентские ошибки не логируются как сбои.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	if status, ok := kindStatus[apperror.KindOf(err)]; ok {
		writeJSONResponse(w, status, ErrorResponse{
			Error:   http.StatusText(status),
			Message: err.Error(),
			Field:   apperror.FieldOf(err),
		})
		return
	}

	if log != nil {
		log.WithError(err).Error(internalMessage)
	}
	writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
}
