package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", RequireAuth(testKey, testIssuer))
	if role != "" {
		grp = grp.Group("/", RequireRole(role))
	}
	grp.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": ClaimsFrom(c).Subject})
	})
	return r
}

func get(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := protectedRouter("")

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer garbage").Code)

	tok, err := IssueSingle("u-1", "s@campus.edu", RoleStudent, testIssuer, testKey, time.Minute)
	require.NoError(t, err)
	w := get(r, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(RoleTeacher)

	student, err := IssueSingle("u-1", "s@campus.edu", RoleStudent, testIssuer, testKey, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+student).Code)

	teacher, err := IssueSingle("t-1", "t@campus.edu", RoleTeacher, testIssuer, testKey, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+teacher).Code)
}
