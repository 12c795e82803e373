package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "unit-test-key"
	testIssuer = "campusattend-test"
)

func TestIssueAndParseRoundtrip(t *testing.T) {
	pair, err := Issue("user-1", "a@campus.edu", RoleTeacher, testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@campus.edu", claims.Email)
	assert.Equal(t, RoleTeacher, claims.Role)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("user-1", "a@campus.edu", RoleStudent, testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-key", testIssuer)
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("user-1", "a@campus.edu", RoleStudent, "someone-else", testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := IssueSingle("user-1", "a@campus.edu", RoleStudent, testIssuer, testKey, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(tok, testKey, testIssuer)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-jwt", testKey, testIssuer)
	assert.Error(t, err)
}
