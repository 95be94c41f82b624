package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mybus/internal/services"
)

// UsersHandler exposes admin-only user management. Every route is behind
// RequireAuth + RequireAdmin; responses never carry the password hash.
type UsersHandler struct {
	Users services.UserService
}

// GET /admin/users?search=&role=all&status=all
func (h UsersHandler) List(c *gin.Context) {
	users, err := h.Users.ListUsers(
		c.Query("search"),
		c.DefaultQuery("role", "all"),
		c.DefaultQuery("status", "all"),
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /admin/users/:id
func (h UsersHandler) Get(c *gin.Context) {
	user, err := h.Users.Profile(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type adminCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// POST /admin/users
func (h UsersHandler) Create(c *gin.Context) {
	var req adminCreateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := h.Users.CreateUser(services.AdminCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type adminUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

// PUT /admin/users/:id
func (h UsersHandler) Update(c *gin.Context) {
	var req adminUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := h.Users.UpdateUser(c.Param("id"), services.AdminUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /admin/users/:id
func (h UsersHandler) Delete(c *gin.Context) {
	if err := h.Users.DeleteUser(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}
