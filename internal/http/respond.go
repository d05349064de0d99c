package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/http/apierr"
	"github.com/awardrobe/pricetracker/pkg/validator"
)

const maxBodyBytes = 1 << 20 // 1 MB

type responder struct {
	logger    *slog.Logger
	validator validator.Validator
}

// decode reads a JSON body into dst and validates it. Unknown fields are
// rejected.
func (rs *responder) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("decode request body: %w", err))
	}

	return rs.validator.Validate(dst)
}

func (rs *responder) json(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		rs.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (rs *responder) error(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rs.logger.Log(r.Context(), logLevel, "http response error",
		slog.String("kind", apperr.Kind(err)),
		slog.Any("error", err),
	)

	rs.json(w, r, res.StatusCode, res)
}
