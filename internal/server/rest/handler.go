package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/verikeep/internal/logging"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
	"github.com/dmitrijs2005/verikeep/internal/server/services"
)

// AccountService is the part of services.AccountService the API needs.
type AccountService interface {
	Authenticator
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	VerifyCode(ctx context.Context, in services.VerifyInput) (*services.AuthResult, error)
	ResendCode(ctx context.Context, email string) (*services.ResendResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	UpdateName(ctx context.Context, accountID, name string) (*models.AccountView, error)
	ChangePassword(ctx context.Context, accountID string, in services.ChangePasswordInput) error
	DeleteAccount(ctx context.Context, accountID string) error
	Dashboard(ctx context.Context, a *models.Account) (*services.Dashboard, error)
}

type Handler struct {
	accounts AccountService
	logger   logging.Logger
	now      func() time.Time
}

func NewHandler(s AccountService, l logging.Logger) *Handler {
	return &Handler{
		accounts: s,
		logger:   l.With("module", "rest"),
		now:      time.Now,
	}
}

type registerResponse struct {
	envelope
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
}

type authResponse struct {
	envelope
	Token   string             `json:"token"`
	Account models.AccountView `json:"account"`
}

type accountResponse struct {
	envelope
	Account models.AccountView `json:"account"`
}

type dashboardResponse struct {
	envelope
	services.Dashboard
}

type healthResponse struct {
	envelope
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type indexResponse struct {
	envelope
	Endpoints map[string]map[string]string `json:"endpoints"`
}

var endpoints = map[string]map[string]string{
	"auth": {
		"register":     "POST /api/auth/register",
		"verify-email": "POST /api/auth/verify-email",
		"resend-code":  "POST /api/auth/resend-code",
		"login":        "POST /api/auth/login",
	},
	"protected": {
		"dashboard":       "GET /api/dashboard",
		"me":              "GET /api/users/me",
		"profile":         "PUT /api/users/profile",
		"change-password": "PUT /api/users/change-password",
		"delete":          "DELETE /api/users/me",
	},
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{envelope: ok("verikeep API"), Endpoints: endpoints})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		envelope:  ok(""),
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	status, msg := http.StatusCreated, "registration successful, verification code sent"
	if !res.Created {
		status, msg = http.StatusOK, "verification code sent"
	}
	writeJSON(w, status, registerResponse{envelope: ok(msg), Email: res.Email, EmailSent: res.EmailSent})
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var in services.VerifyInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.accounts.VerifyCode(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{envelope: ok("email verified"), Token: res.Token, Account: res.Account})
}

func (h *Handler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.accounts.ResendCode(r.Context(), in.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{envelope: ok("verification code sent"), Email: res.Email, EmailSent: res.EmailSent})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{envelope: ok("login successful"), Token: res.Token, Account: res.Account})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a := h.account(r)

	d, err := h.accounts.Dashboard(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{envelope: ok(""), Dashboard: *d})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, accountResponse{envelope: ok(""), Account: h.account(r).View()})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if !h.decode(w, r, &in) {
		return
	}

	view, err := h.accounts.UpdateName(r.Context(), h.account(r).ID, in.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{envelope: ok("profile updated"), Account: *view})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in services.ChangePasswordInput
	if !h.decode(w, r, &in) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), h.account(r).ID, in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("password changed"))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAccount(r.Context(), h.account(r).ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("account deleted"))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		h.logger.Debug(r.Context(), "bad request body", "path", r.URL.Path, "error", err)
		msg := "invalid request body"
		if err == errEmptyBody {
			msg = errEmptyBody.Error()
		}
		writeMessage(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// account returns the caller; only valid behind AuthGate.
func (h *Handler) account(r *http.Request) *models.Account {
	a, _ := AccountFromContext(r.Context())
	return a
}
