package mfa

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/treeatlas/authkit/pkg/clientip"
	"github.com/treeatlas/authkit/pkg/logger"
	mfasvc "github.com/treeatlas/authkit/svc/mfa"
)

// Service exposes the MFA lifecycle as a JSON API. Authentication is the
// caller's concern: mount behind middleware that stores the account ID via
// mfasvc.SetActorToContext.
type Service struct {
	svc *mfasvc.Service
	log *slog.Logger
}

// Option configures the HTTP service.
type Option func(*Service)

// WithLogger sets the structured logger for request failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the HTTP service over an MFA orchestrator.
func NewService(svc *mfasvc.Service, opts ...Option) *Service {
	if svc == nil {
		panic("mfa: service cannot be nil")
	}
	s := &Service{
		svc: svc,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the module router:
//
//	POST /setup    initiate enrollment, returns seed, QR, backup codes
//	POST /verify   submit a TOTP or backup code, enables MFA on success
//	POST /disable  turn MFA off, requires the account password
//	GET  /state    current MFA state and remaining backup codes
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/setup", s.setup)
	r.Post("/verify", s.verify)
	r.Post("/disable", s.disable)
	r.Get("/state", s.state)
	return r
}

type setupResponse struct {
	Seed          string   `json:"seed"`
	ProvisionURI  string   `json:"provision_uri"`
	QRCodeDataURL string   `json:"qr_code_data_url"`
	BackupCodes   []string `json:"backup_codes"`
}

func (s *Service) setup(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Setup(r.Context(), mfasvc.GetActorFromContext(r.Context()), requestMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, setupResponse{
		Seed:          result.Seed,
		ProvisionURI:  result.ProvisionURI,
		QRCodeDataURL: result.QRCodeDataURL,
		BackupCodes:   result.BackupCodes,
	})
}

type verifyRequest struct {
	Code string `json:"code"`
}

type verifyResponse struct {
	Method         string `json:"method"`
	MFAEnabled     bool   `json:"mfa_enabled"`
	CodesRemaining *int   `json:"codes_remaining,omitempty"`
}

func (s *Service) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadRequest)
		return
	}

	result, err := s.svc.VerifyAndEnable(r.Context(), mfasvc.GetActorFromContext(r.Context()), req.Code, requestMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, verifyResponse{
		Method:         string(result.Method),
		MFAEnabled:     result.MFAEnabled,
		CodesRemaining: result.CodesRemaining,
	})
}

type disableRequest struct {
	Password string `json:"password"`
}

func (s *Service) disable(w http.ResponseWriter, r *http.Request) {
	var req disableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadRequest)
		return
	}

	if err := s.svc.Disable(r.Context(), mfasvc.GetActorFromContext(r.Context()), req.Password, requestMeta(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"disabled": true})
}

type stateResponse struct {
	State                string `json:"state"`
	BackupCodesRemaining int    `json:"backup_codes_remaining"`
}

func (s *Service) state(w http.ResponseWriter, r *http.Request) {
	actorID := mfasvc.GetActorFromContext(r.Context())
	if actorID == uuid.Nil {
		s.writeError(w, r, mfasvc.ErrUnauthorized)
		return
	}

	state, err := s.svc.State(r.Context(), actorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	remaining, err := s.svc.RemainingBackupCodes(r.Context(), actorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stateResponse{State: string(state), BackupCodesRemaining: remaining})
}

var errBadRequest = errors.New("malformed request body")

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mfasvc.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, mfasvc.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, mfasvc.ErrInvalidPassword):
		status = http.StatusForbidden
	case errors.Is(err, mfasvc.ErrAlreadyEnabled),
		errors.Is(err, mfasvc.ErrNotEnabled),
		errors.Is(err, mfasvc.ErrNotConfigured),
		errors.Is(err, mfasvc.ErrInvalidCode),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, mfasvc.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "MFA request failed",
			logger.Error(err),
			logger.Component("mfa-http"),
			slog.String("path", r.URL.Path),
		)
		// Internal detail stays out of responses.
		s.writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func requestMeta(r *http.Request) mfasvc.RequestMeta {
	return mfasvc.RequestMeta{
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	}
}
