package handlers

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/auth"
	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/models"
)

// OTPStore is the password-reset flow's keyed TTL store.
type OTPStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (string, error)
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// AuthHandler handles account registration, login and password reset.
type AuthHandler struct {
	authService *auth.Service
	accounts    db.AccountCollection
	vendors     db.VendorCollection
	drivers     db.DriverCollection
	otpStore    OTPStore
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(authService *auth.Service, accounts db.AccountCollection, vendors db.VendorCollection, drivers db.DriverCollection, otpStore OTPStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		accounts:    accounts,
		vendors:     vendors,
		drivers:     drivers,
		otpStore:    otpStore,
	}
}

// Register handles account registration. The role tag decides which profile
// document is created alongside the account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if !models.IsValidRole(req.Role) {
		writeError(w, fmt.Errorf("%w: invalid role", models.ErrValidation))
		return
	}
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: name is required", models.ErrValidation))
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		writeError(w, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		writeError(w, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	profileID, err := h.createProfile(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	account := models.Account{
		Role:          req.Role,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		ExpoPushToken: req.ExpoPushToken,
		ProfileID:     profileID,
	}
	accountID, err := h.accounts.InsertAccount(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	account.ID = accountID

	token, err := h.authService.GenerateToken(&account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.LoginResponse{
		Token:     token,
		AccountID: accountID.Hex(),
		ProfileID: profileID.Hex(),
		Role:      account.Role,
		Account:   account,
	})
}

// Login handles account login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, fmt.Errorf("%w: email and password are required", models.ErrValidation))
		return
	}

	account, err := h.accounts.FindAccountByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !h.authService.CheckPassword(req.Password, account.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		AccountID: account.ID.Hex(),
		ProfileID: account.ProfileID.Hex(),
		Role:      account.Role,
		Account:   *account,
	})
}

// ForgotPassword issues a short-lived OTP for the account's email. The
// response is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" {
		writeError(w, fmt.Errorf("%w: email is required", models.ErrValidation))
		return
	}

	if _, err := h.accounts.FindAccountByEmail(r.Context(), req.Email); err == nil {
		// The code goes out through the mail channel, never in the response.
		if _, err := h.otpStore.Issue(r.Context(), req.Email); err != nil {
			writeError(w, err)
			return
		}
		log.WithField("email", req.Email).Info("Password reset OTP issued")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "If the account exists, a reset code has been sent"})
}

// VerifyOTP exchanges a valid OTP for a single-use reset-session token.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.Code == "" {
		writeError(w, fmt.Errorf("%w: email and code are required", models.ErrValidation))
		return
	}

	token, err := h.otpStore.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		http.Error(w, "Invalid or expired code", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reset_token": token})
}

// ResetPassword consumes a reset-session token and stores the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"reset_token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ResetToken == "" {
		writeError(w, fmt.Errorf("%w: reset_token is required", models.ErrValidation))
		return
	}
	if err := h.authService.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
		return
	}

	email, err := h.otpStore.ConsumeResetToken(r.Context(), req.ResetToken)
	if err != nil {
		http.Error(w, "Invalid or expired reset token", http.StatusUnauthorized)
		return
	}

	account, err := h.accounts.FindAccountByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	passwordHash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.UpdateAccountPassword(r.Context(), account.ID.Hex(), passwordHash); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandler) createProfile(ctx context.Context, req models.RegisterRequest) (primitive.ObjectID, error) {
	switch req.Role {
	case models.RoleVendor:
		return h.vendors.InsertVendor(ctx, models.Vendor{
			Name:          req.Name,
			Email:         req.Email,
			Phone:         req.Phone,
			ExpoPushToken: req.ExpoPushToken,
		})
	case models.RoleDriver:
		return h.drivers.InsertDriver(ctx, models.Driver{
			Name:          req.Name,
			Email:         req.Email,
			Phone:         req.Phone,
			LicenseNo:     req.LicenseNo,
			ExpoPushToken: req.ExpoPushToken,
		})
	default:
		// Customers have no profile document beyond the account itself.
		return primitive.NewObjectID(), nil
	}
}
