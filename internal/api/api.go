// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api implements the small JSON API namespace living next to the SPA
// under "/api/".
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Prefix is the URL path prefix claimed by the API namespace. Requests below
// it never fall back to the SPA.
const Prefix = "/api/"

// Hello is the response body of the hello endpoint.
type Hello struct {
	Message string `json:"message"`
}

// NewHandler returns the handler for all requests below Prefix. Unknown API
// paths get a 404.
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+Prefix+"hello", handleHello)
	mux.HandleFunc("GET "+Prefix+"health", handleHealth)
	notFound := func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "no such API endpoint")
	}
	mux.HandleFunc(Prefix, notFound)
	// "/api" would otherwise get redirected to Prefix.
	mux.HandleFunc(strings.TrimSuffix(Prefix, "/"), notFound)
	return mux
}

func handleHello(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, Hello{Message: "Hi from spashell!"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	type errorResponse struct {
		Error string `json:"error"`
	}
	respondWithJSON(w, code, errorResponse{Error: msg})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
