// Package handler exposes the HTTP surface: auth flows, schedule reads and
// the QR attendance endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/identity"
	"campusattend/internal/schedule"
	"campusattend/internal/token"
)

// IdentityService is the account façade the handlers call.
type IdentityService interface {
	Register(ctx context.Context, in identity.RegisterInput) error
	Login(ctx context.Context, email, password string) (auth.TokenPair, error)
	VerifyUser(ctx context.Context, email, userID, role string) (identity.User, error)
	RequestMagicLink(ctx context.Context, email, userID, role string) error
	Profile(ctx context.Context, id string) (identity.User, error)
}

// ScheduleService is the schedule façade.
type ScheduleService interface {
	DailySchedule(ctx context.Context, userID, role string) ([]schedule.Item, error)
	IsTeacherOf(ctx context.Context, teacherID, scheduleID string) (bool, error)
}

// TokenService is the attendance token engine.
type TokenService interface {
	Issue(ctx context.Context, scheduleID string) ([]byte, error)
	Redeem(ctx context.Context, value, studentID string) error
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	identity  IdentityService
	schedules ScheduleService
	tokens    TokenService
}

// New creates a handler.
func New(id IdentityService, sched ScheduleService, tok TokenService) *Handler {
	return &Handler{identity: id, schedules: sched, tokens: tok}
}

// ---------- Auth ----------

type registerRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FullName   string `json:"full_name" binding:"required"`
	Role       string `json:"role" binding:"required"`
	RollNumber string `json:"roll_number"`
	EmployeeID string `json:"employee_id"`
	Department string `json:"department"`
}

// Register creates an account plus profile.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.identity.Register(c.Request.Context(), identity.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		RollNumber: req.RollNumber,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created. You can now log in."})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a bearer token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrProfileNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
		"expires_at":    pair.AccessExp.Unix(),
	})
}

type magicLinkRequest struct {
	Email  string `json:"email" binding:"required,email"`
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// MagicLink verifies the account and queues a sign-in mail.
func (h *Handler) MagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.identity.RequestMagicLink(c.Request.Context(), req.Email, req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, identity.ErrNoMatch) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No matching user found with that Email and ID."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not send login link."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login link sent! Please check your email."})
}

// VerifyUser checks that email, campus id and role all match one account.
func (h *Handler) VerifyUser(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.identity.VerifyUser(c.Request.Context(), req.Email, req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, identity.ErrNoMatch) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No matching user found with that Email and ID."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "user": user})
}

// ---------- User & schedule ----------

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	user, err := h.identity.Profile(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User details not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity store unavailable"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// MyDay returns today's role-scoped schedule. No sessions is an empty list,
// never an error.
func (h *Handler) MyDay(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	items, err := h.schedules.DailySchedule(c.Request.Context(), claims.Subject, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule lookup failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ---------- Attendance ----------

type generateQRRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
}

// GenerateQR mints an attendance token for a session the caller teaches and
// streams it as a PNG.
func (h *Handler) GenerateQR(c *gin.Context) {
	var req generateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.ClaimsFrom(c)
	owns, err := h.schedules.IsTeacherOf(c.Request.Context(), claims.Subject, req.ScheduleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule lookup failed"})
		return
	}
	if !owns {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the teacher of this session"})
		return
	}
	img, err := h.tokens.Issue(c.Request.Context(), req.ScheduleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create QR token."})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

type markRequest struct {
	Token string `json:"token" binding:"required"`
}

// MarkAttendance redeems a scanned token for the authenticated student.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.ClaimsFrom(c)
	err := h.tokens.Redeem(c.Request.Context(), req.Token, claims.Subject)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Attendance marked successfully!"})
	case errors.Is(err, token.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid QR Code."})
	case errors.Is(err, token.ErrExpiredToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expired QR Code."})
	case errors.Is(err, token.ErrAlreadyMarked):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Attendance already marked for today."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance."})
	}
}
