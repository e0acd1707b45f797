package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/services"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service sentinels onto HTTP statuses
func writeServiceError(w http.ResponseWriter, logger logrus.FieldLogger, err error, what string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, services.ErrAlreadyExists):
		writeError(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).Errorf("%s request failed", what)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// catalogStatus maps catalog failures onto HTTP statuses
func catalogStatus(err error) (int, string) {
	var (
		upstream *catalog.UpstreamError
		cfgErr   *catalog.ConfigError
		netErr   *catalog.NetworkError
	)
	switch {
	case errors.As(err, &upstream) && upstream.Status == http.StatusNotFound:
		return http.StatusNotFound, "Title not found"
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, catalog.MissingCredentialMessage
	case errors.As(err, &upstream), errors.As(err, &netErr):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

// titlePath reads {kind} and {id} from the route
func titlePath(r *http.Request) (catalog.Kind, int, bool) {
	kind, err := catalog.ParseKind(r.PathValue("kind"))
	if err != nil {
		return "", 0, false
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return kind, id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
