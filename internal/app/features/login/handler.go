// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: the ObjectID of the account (or household, for residents)
//   - LoginID / loginID / login_id: what the user typed: an email, or a phone number

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/app/system/authutil"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/app/system/ratelimit"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	Users      *userstore.Store
	Households *householdstore.Store
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	limiter *ratelimit.LoginLimiter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Limiter:    limiter,
		Users:      userstore.New(db),
		Households: householdstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginResponse struct {
	User auth.SessionUser `json:"user"`
}

const badCredentials = "Invalid email or password."

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login body", err, err.Error())
		return
	}

	kind := authutil.Kind(req.Email, req.Phone)
	loginID := normalize.Email(req.Email)
	if kind == authutil.LoginPhone {
		loginID = normalize.Phone(req.Phone)
	}
	if kind == authutil.LoginUnknown || loginID == "" {
		jsonio.Error(w, http.StatusBadRequest, "Please enter your email and password, or your phone number.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, loginID); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, loginID)
			jsonio.Error(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	var (
		user *auth.SessionUser
		ok   bool
	)
	if kind == authutil.LoginPhone {
		user, ok = h.householdLogin(ctx, w, r, loginID)
	} else {
		user, ok = h.passwordLogin(ctx, w, r, loginID, req.Password)
	}
	if !ok {
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID, user.Role); err != nil {
		h.ErrLog.LogServerError(w, r, "save session", err, "A server error occurred.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetAccount(loginID)
	}

	h.Log.Info("user signed in",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role))
	jsonio.Write(w, http.StatusOK, loginResponse{User: *user})
}

// passwordLogin checks an admin or collector account. On failure it has
// already written the response.
func (h *Handler) passwordLogin(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (*auth.SessionUser, bool) {
	if password == "" {
		jsonio.Error(w, http.StatusBadRequest, "Please enter your password.")
		return nil, false
	}

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		jsonio.Error(w, http.StatusUnauthorized, badCredentials)
		return nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.")
		return nil, false
	}

	if !authutil.CheckPassword(u.PasswordHash, password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		jsonio.Error(w, http.StatusUnauthorized, badCredentials)
		return nil, false
	}
	if normalize.Status(u.Status) == models.AccountDisabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, email)
		jsonio.Error(w, http.StatusForbidden, "Your account is disabled. Please contact an administrator.")
		return nil, false
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Role, email)
	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.Email,
		Role:    u.Role,
	}, true
}

// householdLogin signs a resident in by the phone registered on their
// household. Residents have no password.
func (h *Handler) householdLogin(ctx context.Context, w http.ResponseWriter, r *http.Request, phone string) (*auth.SessionUser, bool) {
	hh, err := h.Households.GetByPhone(ctx, phone)
	switch {
	case errors.Is(err, householdstore.ErrNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, phone)
		jsonio.Error(w, http.StatusUnauthorized, "No household is registered with that phone number.")
		return nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find household", err, "A server error occurred.")
		return nil, false
	}

	h.AuditLog.LoginSuccess(ctx, r, hh.ID, models.RoleHousehold, phone)
	return &auth.SessionUser{
		ID:      hh.ID.Hex(),
		Name:    hh.ResidentName,
		LoginID: hh.Phone,
		Role:    models.RoleHousehold,
	}, true
}
