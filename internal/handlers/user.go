package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/services"
)

type UserHandler struct {
	userService         *services.UserService
	subscriptionService *services.SubscriptionService
	jwtSecret           string
	jwtExpireSeconds    int64
}

func NewUserHandler(userService *services.UserService, subscriptionService *services.SubscriptionService, jwtSecret string, jwtExpireSeconds int64) *UserHandler {
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		jwtSecret:           jwtSecret,
		jwtExpireSeconds:    jwtExpireSeconds,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Username, h.jwtSecret, h.jwtExpireSeconds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.Param("id")

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := h.subscriptionService.IsSubscribed(c.Request.Context(), middleware.GetUserID(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"is_subscribed": subscribed,
	})
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := pageParams(c)

	users, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"offset": offset,
		"limit":  limit,
	})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	author, err := h.subscriptionService.Subscribe(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"author": author})
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetSubscriptions(c *gin.Context) {
	offset, limit := pageParams(c)

	query := struct {
		RecipesLimit int `form:"recipes_limit"`
	}{}
	_ = c.ShouldBindQuery(&query)

	authors, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), middleware.GetUserID(c), offset, limit, query.RecipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authors": authors,
		"offset":  offset,
		"limit":   limit,
	})
}
