package controller

import (
	"net/http"

	appUser "github.com/booklend/booklend/internal/application/user"
	"github.com/booklend/booklend/internal/auth"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/user"
	"github.com/booklend/booklend/internal/middleware"
)

// UserController handles registration and authentication.
type UserController struct {
	registerUC *appUser.RegisterUserUseCase
	authUC     *appUser.AuthenticateUserUseCase
	updateUC   *appUser.UpdateProfileUseCase
	tokens     *auth.TokenService
	userRepo   user.Repository
}

// NewUserController creates a new UserController.
func NewUserController(
	registerUC *appUser.RegisterUserUseCase,
	authUC *appUser.AuthenticateUserUseCase,
	updateUC *appUser.UpdateProfileUseCase,
	tokens *auth.TokenService,
	userRepo user.Repository,
) *UserController {
	return &UserController{
		registerUC: registerUC,
		authUC:     authUC,
		updateUC:   updateUC,
		tokens:     tokens,
		userRepo:   userRepo,
	}
}

// Register handles POST /api/v1/users
func (h *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.registerUC.Execute(r.Context(), appUser.RegisterUserRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FromUser(u))
}

// Login handles POST /api/v1/auth/token
func (h *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.authUC.Execute(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *UserController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.tokens.Refresh(req.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Verify handles POST /api/v1/auth/verify
func (h *UserController) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Either half of a pair counts as valid.
	if _, err := h.tokens.Verify(req.Token, auth.KindAccess); err != nil {
		if _, err := h.tokens.Verify(req.Token, auth.KindRefresh); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// Me handles GET /api/v1/users/me
func (h *UserController) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	u, err := h.userRepo.GetByID(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromUser(u))
}

// UpdateMe handles PUT and PATCH /api/v1/users/me
func (h *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	var req UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.updateUC.Execute(r.Context(), p.UserID, appUser.UpdateProfileRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromUser(u))
}
