package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/clinic-app/models"
)

const secret = "middleware-secret"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeAccounts struct {
	disabled map[uint]bool
	err      error
}

func (f fakeAccounts) IsActive(ctx context.Context, userID uint) (bool, error) {
	return !f.disabled[userID], f.err
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(id uint, role models.Role, jti string) jwt.MapClaims {
	return jwt.MapClaims{
		"id":   id,
		"role": string(role),
		"jti":  jti,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func newApp(checker RevocationChecker, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{Protected(secret, checker, nil)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		actor := Actor(c)
		jti, exp := Token(c)
		return c.JSON(fiber.Map{"id": actor.UserID, "role": actor.Role, "jti": jti, "has_exp": !exp.IsZero()})
	})
	app.Get("/", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestProtectedSetsActor(t *testing.T) {
	var seen models.Actor
	var seenJTI string
	app := fiber.New()
	app.Get("/", Protected(secret, nil, nil), func(c *fiber.Ctx) error {
		seen = Actor(c)
		seenJTI, _ = Token(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	status := get(t, app, sign(t, claimsFor(42, models.RoleDoctor, "abc")))
	require.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, models.Actor{UserID: 42, Role: models.RoleDoctor}, seen)
	assert.Equal(t, "abc", seenJTI)
}

func TestProtectedRejectsBadTokens(t *testing.T) {
	app := newApp(nil)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, ""))

	expired := claimsFor(1, models.RoleAdmin, "x")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, sign(t, expired)))

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, sign(t, claimsFor(1, models.Role("nurse"), "x"))))

	noID := claimsFor(1, models.RoleAdmin, "x")
	delete(noID, "id")
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, sign(t, noID)))

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor(1, models.RoleAdmin, "x")).SignedString([]byte("other"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, forged))
}

func TestProtectedChecksRevocation(t *testing.T) {
	app := newApp(fakeRevocations{revoked: map[string]bool{"gone": true}})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, sign(t, claimsFor(1, models.RoleAdmin, "gone"))))
	assert.Equal(t, fiber.StatusOK, get(t, app, sign(t, claimsFor(1, models.RoleAdmin, "live"))))

	broken := newApp(fakeRevocations{err: errors.New("redis down")})
	assert.Equal(t, fiber.StatusInternalServerError, get(t, broken, sign(t, claimsFor(1, models.RoleAdmin, "live"))))
}

func TestProtectedRejectsDisabledAccounts(t *testing.T) {
	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	app := fiber.New()
	app.Get("/", Protected(secret, nil, fakeAccounts{disabled: map[uint]bool{5: true}}), handler)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, sign(t, claimsFor(5, models.RoleReceptionist, "a"))))
	assert.Equal(t, fiber.StatusOK, get(t, app, sign(t, claimsFor(6, models.RoleReceptionist, "b"))))

	broken := fiber.New()
	broken.Get("/", Protected(secret, nil, fakeAccounts{err: errors.New("db down")}), handler)
	assert.Equal(t, fiber.StatusInternalServerError, get(t, broken, sign(t, claimsFor(6, models.RoleDoctor, "c"))))
}

func TestRequirePermission(t *testing.T) {
	app := newApp(nil, RequirePermission(models.ResourceMedicalRecords, models.ActionDispense))
	assert.Equal(t, fiber.StatusOK, get(t, app, sign(t, claimsFor(1, models.RoleReceptionist, "a"))))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, sign(t, claimsFor(1, models.RoleDoctor, "b"))))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, sign(t, claimsFor(1, models.RolePatient, "c"))))

	assert.Panics(t, func() { RequirePermission(models.ResourceReports, models.ActionDispense) })
}

func TestRequireRole(t *testing.T) {
	app := newApp(nil, RequireRole(models.RoleDoctor))
	assert.Equal(t, fiber.StatusOK, get(t, app, sign(t, claimsFor(3, models.RoleDoctor, "a"))))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, sign(t, claimsFor(3, models.RoleAdmin, "b"))))
}

func TestExtractUserID(t *testing.T) {
	for _, v := range []any{float64(7), "7", uint(7), 7} {
		id, err := extractUserID(jwt.MapClaims{"id": v})
		require.NoError(t, err, "%T", v)
		assert.Equal(t, uint(7), id)
	}
	_, err := extractUserID(jwt.MapClaims{"id": "seven"})
	assert.Error(t, err)
	_, err = extractUserID(jwt.MapClaims{"id": true})
	assert.Error(t, err)
}
