// Package handler implements the request pipeline for every action:
// wire-shape validation, authorization against the caller's role, domain
// validation, the gateway call, and envelope rendering. Identity resolution
// runs in middleware before these handlers; the resolved snapshot travels in
// the per-request context.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/internal/middleware"
	"github.com/mkdirlove/song-server/internal/repository"
	"github.com/mkdirlove/song-server/pkg/crypto"
	"github.com/mkdirlove/song-server/pkg/errors"
	"github.com/mkdirlove/song-server/pkg/httputil"
	"github.com/mkdirlove/song-server/pkg/jwt"
	"github.com/mkdirlove/song-server/pkg/logger"
)

// UserHandler serves the user actions.
type UserHandler struct {
	users    repository.UserRepository
	tokens   *jwt.Manager
	hasher   *crypto.PasswordHasher
	pageSize int
	log      logger.Logger
}

// NewUserHandler creates the user handler.
func NewUserHandler(users repository.UserRepository, tokens *jwt.Manager,
	hasher *crypto.PasswordHasher, pageSize int, log logger.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		pageSize: pageSize,
		log:      log,
	}
}

type addUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type removeUserRequest struct {
	Username string `json:"username" binding:"required"`
}

type listUsersRequest struct {
	PageNumber int  `form:"page_number,default=1"`
	AdminsOnly bool `form:"admins_only,default=false"`
}

// Login authenticates the credentials carried in the username/password
// headers and issues an identity token. Unknown usernames and wrong
// passwords are indistinguishable at this boundary.
func (h *UserHandler) Login(c *gin.Context) {
	username := c.GetHeader("username")
	password := c.GetHeader("password")
	if username == "" || password == "" {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}
	if len(username) > domain.MaxUsernameLen || len(password) > domain.MaxPasswordLen {
		httputil.Fail(c, errors.ErrSignInFailure)
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		h.log.Error("login lookup failed",
			logger.String("request_id", httputil.GetRequestID(c)),
			logger.Err(err),
		)
		httputil.Fail(c, errors.ErrSignInFailure)
		return
	}
	if user == nil {
		httputil.Fail(c, errors.ErrSignInFailure)
		return
	}

	match, err := h.hasher.Verify(password, user.Password)
	if err != nil || !match {
		httputil.Fail(c, errors.ErrSignInFailure)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username, int(user.Role))
	if err != nil {
		httputil.Fail(c, errors.ErrDBOperationFailure.WithError(err))
		return
	}

	httputil.OK(c, http.StatusCreated, "successful login", gin.H{"access_key": token})
}

// AddUser creates a user with the default role. Admin callers only.
func (h *UserHandler) AddUser(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.Fail(c, errors.ErrUserParseError)
		return
	}

	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	if !caller.Role.CanAddUsers() {
		httputil.Fail(c, errors.ErrPrivilegeError)
		return
	}

	if !domain.ValidPassword(req.Password) {
		httputil.Fail(c, errors.ErrInvalidUserDetails)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		httputil.Fail(c, errors.ErrDBOperationFailure.WithError(err))
		return
	}

	user := domain.NewUser(req.Username, req.Password, hash, domain.RoleRegularUser)
	if !user.Validate() {
		httputil.Fail(c, errors.ErrInvalidUserDetails)
		return
	}

	if err := h.users.Insert(c.Request.Context(), user); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusCreated, "New user added", nil)
}

// RemoveUser deletes a user by exact username. Admin callers only.
func (h *UserHandler) RemoveUser(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.Fail(c, errors.ErrUserParseError)
		return
	}

	var req removeUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	if !caller.Role.CanAddUsers() {
		httputil.Fail(c, errors.ErrPrivilegeError)
		return
	}

	if err := h.users.Remove(c.Request.Context(), req.Username); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusOK, "User removed", nil)
}

// GetUsers lists users ordered by username. Admin callers only.
func (h *UserHandler) GetUsers(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.Fail(c, errors.ErrUserParseError)
		return
	}

	var req listUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	if !caller.Role.CanAddUsers() {
		httputil.Fail(c, errors.ErrPrivilegeError)
		return
	}

	if req.PageNumber <= 0 {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	users, err := h.users.List(c.Request.Context(), req.AdminsOnly, req.PageNumber, h.pageSize)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusOK, "success", users)
}
