// Package httpapi exposes the api over json http endpoints.
package httpapi

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/cloudleakage/cloudleakage/api"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies before the analyzer's own input limit
// applies.
const maxBodyBytes = 64 << 20

// Server is the cloudleakage http api server.
type Server struct {
	API    api.API
	Logger *zap.Logger

	once    sync.Once
	handler http.Handler
}

func (s *Server) setupRoutes() {
	router := http.NewServeMux()
	router.HandleFunc("/terraform/api/analyze", s.handleAnalyze())
	router.HandleFunc("/integration/api/accounts", s.handleAccounts())
	router.HandleFunc("/integration/api/accounts/", s.handleAccount())
	router.HandleFunc("/integration/api/policy/generate", s.handlePolicy())
	router.HandleFunc("/ec2/api/accounts/", s.handleEC2())
	s.handler = logRequests(s.Logger)(router)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(s.setupRoutes)
	s.handler.ServeHTTP(w, r)
}

func (s *Server) respond(w http.ResponseWriter, resp response, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("Could not encode json response", zap.Error(err))
	}
}

func (s *Server) respondData(w http.ResponseWriter, data interface{}) {
	s.respond(w, response{Success: true, Data: data}, http.StatusOK)
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.Logger.Debug("Request failed", zap.Error(err))
	if aerr, ok := err.(*api.Error); ok {
		s.respond(w, response{Error: aerr.Message}, statusOf(aerr.Code))
		return
	}
	s.respond(w, response{Error: "internal error"}, http.StatusInternalServerError)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.respond(w, response{Error: "method not allowed"}, http.StatusMethodNotAllowed)
}

func (s *Server) notFound(w http.ResponseWriter) {
	s.respond(w, response{Error: "not found"}, http.StatusNotFound)
}

func statusOf(code api.ErrorCode) int {
	switch code {
	case api.ValidationError, api.Unprocessable:
		return http.StatusBadRequest
	case api.NotFound:
		return http.StatusNotFound
	case api.TooLarge:
		return http.StatusRequestEntityTooLarge
	case api.Unavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) handleAnalyze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		src, err := stateDocument(r)
		if err != nil {
			s.Logger.Debug("Could not read state document", zap.Error(err))
			if strings.Contains(err.Error(), "request body too large") {
				s.respond(w, response{Error: "state document too large"}, http.StatusRequestEntityTooLarge)
				return
			}
			s.respond(w, response{Error: "could not read state document"}, http.StatusBadRequest)
			return
		}

		payload, err := s.API.AnalyzeState(r.Context(), src)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, payload)
	}
}

// stateDocument extracts the uploaded state document from the tfstate_file
// form field, or from the raw request body for non multipart requests.
func stateDocument(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("tfstate_file")
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ioutil.ReadAll(f)
	}
	defer func() { _ = r.Body.Close() }()
	return ioutil.ReadAll(r.Body)
}

func (s *Server) handleAccounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accounts, err := s.API.Accounts(r.Context())
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.respondData(w, accounts)

		case http.MethodPost:
			if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				s.respond(w, response{Error: "invalid content type"}, http.StatusUnsupportedMediaType)
				return
			}
			var req api.CreateAccountRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.Logger.Debug("Could not decode body", zap.Error(err))
				s.respond(w, response{Error: "could not decode body"}, http.StatusBadRequest)
				return
			}
			_ = r.Body.Close()

			acc, err := s.API.CreateAccount(r.Context(), &req)
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.respondData(w, acc)

		default:
			s.methodNotAllowed(w)
		}
	}
}

func (s *Server) handleAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/integration/api/accounts/")
		parts := strings.Split(rest, "/")
		switch {
		case len(parts) == 1 && parts[0] != "":
			if r.Method != http.MethodDelete {
				s.methodNotAllowed(w)
				return
			}
			if err := s.API.DeleteAccount(r.Context(), parts[0]); err != nil {
				s.respondError(w, err)
				return
			}
			s.respondData(w, nil)

		case len(parts) == 2 && parts[1] == "sync":
			if r.Method != http.MethodPost {
				s.methodNotAllowed(w)
				return
			}
			res, err := s.API.SyncAccount(r.Context(), parts[0])
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.respondData(w, res)

		default:
			s.notFound(w)
		}
	}
}

func (s *Server) handlePolicy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		doc, err := s.API.Policy(r.Context())
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, doc)
	}
}

func (s *Server) handleEC2() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/ec2/api/accounts/")
		parts := strings.Split(rest, "/")

		if len(parts) == 4 && parts[1] == "instances" && parts[3] == "utilization" {
			s.serveUtilization(w, r, parts[0], parts[2])
			return
		}
		if len(parts) != 2 {
			s.notFound(w)
			return
		}

		accountID := parts[0]
		var data interface{}
		var err error
		switch parts[1] {
		case "instances":
			data, err = s.API.Instances(r.Context(), accountID)
		case "stopped-duration":
			data, err = s.API.StoppedReport(r.Context(), accountID)
		case "recommendations":
			data, err = s.API.Recommendations(r.Context(), accountID)
		case "costs":
			data, err = s.API.Costs(r.Context(), accountID)
		default:
			s.notFound(w)
			return
		}
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, data)
	}
}

func (s *Server) serveUtilization(w http.ResponseWriter, r *http.Request, accountID, instanceID string) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respond(w, response{Error: "days must be a positive number"}, http.StatusBadRequest)
			return
		}
		days = n
	}
	u, err := s.API.Utilization(r.Context(), accountID, instanceID, days)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondData(w, u)
}
