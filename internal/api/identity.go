// ABOUTME: Identity endpoints: logins, who-am-I, user creation and deletion
// ABOUTME: Logins use bcrypt with a dummy-hash compare for constant timing

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/registrar/internal/auth"
	"github.com/campushq/registrar/internal/store"
)

// dummyHash keeps login timing constant when the account does not exist
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// InstitutionView is the wire shape of an institution identity
type InstitutionView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserView is the wire shape of a user identity
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func institutionView(inst *store.Institution) InstitutionView {
	return InstitutionView{ID: inst.ID, Name: inst.Name, Email: inst.Email, CreatedAt: inst.CreatedAt}
}

func userView(u *store.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// InstitutionLoginResponse carries the institution identity and its bearer credential
type InstitutionLoginResponse struct {
	Institution InstitutionView `json:"institution"`
	Token       string          `json:"token"`
}

// UserLoginResponse carries the user identity and its credential. The same
// credential is also set as the session cookie.
type UserLoginResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

func (s *Server) handleInstitutionLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	inst, err := s.store.GetInstitutionByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			s.respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.logger.Error("failed to load institution", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(inst.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.verifier.Generate(inst.ID, auth.KindInstitution, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.logger.Info("institution logged in", "institution_id", inst.ID)
	s.respond(w, http.StatusOK, InstitutionLoginResponse{
		Institution: institutionView(inst),
		Token:       token,
	}, "login successful")
}

func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			s.respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.logger.Error("failed to load user", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.verifier.Generate(u.ID, auth.KindUser, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.UserTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	s.respond(w, http.StatusOK, UserLoginResponse{
		User:  userView(u),
		Token: token,
	}, "login successful")
}

func (s *Server) handleInstitutionMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	inst, err := s.store.GetInstitution(r.Context(), authCtx.SubjectID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "institution not found")
		return
	}

	s.respond(w, http.StatusOK, institutionView(inst), "")
}

func (s *Server) handleUserMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	u, err := s.store.GetUser(r.Context(), authCtx.SubjectID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "user not found")
		return
	}

	s.respond(w, http.StatusOK, userView(u), "")
}

// CreateUserRequest is the identity-creation payload
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "name, email, and password required")
		return
	}
	role := store.UserRole(req.Role)
	if !role.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if len(req.Password) < 8 {
		s.respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	u := &store.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.respondError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error("failed to create user", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	s.respond(w, http.StatusCreated, userView(u), "user created")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := store.UserRole(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	users, err := s.store.ListUsers(r.Context(), role)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	s.respond(w, http.StatusOK, views, "")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to delete user", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.logger.Info("user deleted", "user_id", id)
	s.respond(w, http.StatusOK, nil, "user deleted")
}
