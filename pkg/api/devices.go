/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	bnHttp "github.com/Hunter-Bennett/Blinknet/pkg/http"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/Hunter-Bennett/Blinknet/pkg/registry"
)

const maxBodyBytes = 64 << 10

func (*APIServer) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus returns the caller's devices as the dashboard polls them.
func (s *APIServer) getStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := bnHttp.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)

		return
	}

	writeJSON(w, http.StatusOK, s.devices.SnapshotFor(owner))
}

func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := ownerAndID(w, r)
	if !ok {
		return
	}

	view, err := s.devices.Get(owner, id)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *APIServer) createDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := bnHttp.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)

		return
	}

	spec, ok := decodeSpec(w, r)
	if !ok {
		return
	}

	view, err := s.devices.Add(r.Context(), owner, spec)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, view)
}

func (s *APIServer) updateDevice(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := ownerAndID(w, r)
	if !ok {
		return
	}

	spec, ok := decodeSpec(w, r)
	if !ok {
		return
	}

	view, err := s.devices.Update(r.Context(), owner, id, spec)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *APIServer) deleteDevice(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := ownerAndID(w, r)
	if !ok {
		return
	}

	if err := s.devices.Remove(r.Context(), owner, id); err != nil {
		s.writeServiceError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ownerAndID(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	owner, ok := bnHttp.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)

		return "", 0, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid device id", http.StatusBadRequest)

		return "", 0, false
	}

	return owner, id, true
}

func decodeSpec(w http.ResponseWriter, r *http.Request) (models.DeviceSpec, bool) {
	var spec models.DeviceSpec

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&spec); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)

		return models.DeviceSpec{}, false
	}

	return spec, true
}

func (s *APIServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeError(w, "device not found", http.StatusNotFound)
	case errors.Is(err, registry.ErrInvalidDevice):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error().Err(err).Msg("Device operation failed")
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	bnHttp.WriteJSONError(w, message, statusCode)
}
