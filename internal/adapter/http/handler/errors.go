package handler

import "net/http"

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 422: the request parsed but its
// contents fail validation, so retrying unchanged will fail again.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

func internalErrorResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusInternalServerError, message)
}

// databaseErrorResponse is the fixed shape for a failed durable write. No
// internal detail leaks to the client.
func databaseErrorResponse(w http.ResponseWriter) {
	env := envelope{"success": false, "error": "database_error"}
	if err := writeJSON(w, http.StatusInternalServerError, env, nil); err != nil {
		w.WriteHeader(500)
	}
}
