package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Envelope status codes. Every response carries one: "00" for
// success, "06" for a domain failure.
const (
	statusCodeSuccess = "00"
	statusCodeFailure = "06"
)

type Status struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Response is the wire envelope. Result is always an array, even for
// single-object payloads.
type Response struct {
	Status Status `json:"status"`
	Result []any  `json:"result"`
}

func successResponse(description string, result ...any) Response {
	if result == nil {
		result = []any{}
	}
	return Response{
		Status: Status{Code: statusCodeSuccess, Description: description},
		Result: result,
	}
}

func failureResponse(description string) Response {
	return Response{
		Status: Status{Code: statusCodeFailure, Description: description},
		Result: []any{},
	}
}

func writeJSON(w http.ResponseWriter, httpStatus int, resp Response) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
