package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/service"
)

const tokenIssuer = "stockpos"

var errInvalidToken = errors.New("could not validate credentials")

// AuthManager issues and verifies HS256 access tokens.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
}

type accessClaims struct {
	jwtlib.RegisteredClaims
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

func NewAuthManager(secret string, tokenTTL time.Duration) *AuthManager {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthManager{secret: []byte(secret), tokenTTL: tokenTTL}
}

func (a *AuthManager) Issue(user domain.User) (domain.LoginResponse, error) {
	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(user, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		User:        user,
	}, nil
}

// ParseToken returns the user id carried in the subject claim.
func (a *AuthManager) ParseToken(tokenStr string) (int64, error) {
	claims := &accessClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidToken
	}
	return id, nil
}

func (a *AuthManager) sign(user domain.User, expiresAt time.Time) (string, error) {
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
		},
		Username: user.Username,
		Admin:    user.IsAdmin,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// requireAuth reloads the token's user on every request so deactivation and
// role changes apply immediately.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		userID, err := a.auth.ParseToken(strings.TrimSpace(authorization[len("Bearer "):]))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		user, err := a.service.CurrentUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		actor := domain.Actor{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}
		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := a.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := a.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp, err := a.auth.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := service.ActorFromContext(r.Context())
	user, err := a.service.CurrentUser(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleLogout only acknowledges; tokens expire on their own.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Successfully logged out")
}

func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	users, err := a.service.ListUsers(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	user, err := a.service.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := a.service.CreateUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.UserUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := a.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "User deleted successfully")
}
