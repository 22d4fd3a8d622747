package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/utils"
)

type fakeBlacklist struct {
	revoked map[string]time.Duration
}

func (b *fakeBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *fakeBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

type fakeUploader struct {
	publicID string
}

func (u *fakeUploader) Upload(ctx context.Context, file interface{}, publicID, folder string) (string, error) {
	u.publicID = publicID
	if _, err := io.ReadAll(file.(io.Reader)); err != nil {
		return "", err
	}
	return "https://res.cloudinary.com/demo/" + folder + "/" + publicID + ".png", nil
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.Accounts.Login(f.ctx, "an.nguyen", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, session.User.Role)
	assert.Equal(t, f.now.Add(time.Hour), session.ExpiresAt)

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser(jwt.WithoutClaimsValidation()).ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, float64(f.patient.UserID), claims["id"])
	assert.Equal(t, "patient", claims["role"])
	assert.NotEmpty(t, claims["jti"])

	_, err = f.svc.Accounts.Login(f.ctx, "an.nguyen", "wrong-password")
	requireKind(t, err, utils.KindUnauthorized)
	_, err = f.svc.Accounts.Login(f.ctx, "nobody", "secret123")
	requireKind(t, err, utils.KindUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accounts.Register(f.ctx, ProfileInput{Username: "an.nguyen", Password: "secret123", FullName: "Trùng"})
	requireKind(t, err, utils.KindValidation)

	_, err = f.svc.Accounts.Register(f.ctx, ProfileInput{Username: "short", Password: "123", FullName: "Ngắn"})
	requireKind(t, err, utils.KindValidation)

	_, err = f.svc.Accounts.Register(f.ctx, ProfileInput{Username: "g", Password: "secret123", FullName: "G", Gender: "robot"})
	var fieldErr *models.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "gender", fieldErr.Field)
}

func TestDisabledStaffCannotLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Accounts.SetDoctorEmployment(f.ctx, f.doctor.ID, false)
	require.NoError(t, err)

	_, err = f.svc.Accounts.Login(f.ctx, "bs.minh", "secret123")
	requireKind(t, err, utils.KindForbidden)

	doctors, err := f.svc.Accounts.ListDoctors(f.ctx, true)
	require.NoError(t, err)
	assert.Empty(t, doctors)
}

func TestLogoutRevokesUntilExpiry(t *testing.T) {
	f := newFixture(t)
	bl := &fakeBlacklist{revoked: map[string]time.Duration{}}
	f.svc.Accounts.blacklist = bl

	require.NoError(t, f.svc.Accounts.Logout(f.ctx, "abc", f.now.Add(30*time.Minute)))
	assert.Equal(t, 30*time.Minute, bl.revoked["abc"])

	require.NoError(t, f.svc.Accounts.Logout(f.ctx, "old", f.now.Add(-time.Minute)))
	assert.NotContains(t, bl.revoked, "old")
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accounts.UploadAvatar(f.ctx, f.patient.UserID, strings.NewReader("png"))
	requireKind(t, err, utils.KindValidation)

	up := &fakeUploader{}
	f.svc.Accounts.uploader = up
	u, err := f.svc.Accounts.UploadAvatar(f.ctx, f.patient.UserID, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Contains(t, u.AvatarURL, "clinic/avatars")

	me, err := f.svc.Accounts.Me(f.ctx, f.patient.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.AvatarURL, me.AvatarURL)
}

func TestPatientProfileAccess(t *testing.T) {
	f := newFixture(t)

	notes := "dị ứng penicillin"
	p, err := f.svc.Accounts.UpdatePatient(f.ctx, f.patientActor, f.patient.ID, PatientPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, p.Notes)

	other, err := f.svc.Accounts.Register(f.ctx, ProfileInput{Username: "binh", Password: "secret123", FullName: "Trần Bình"})
	require.NoError(t, err)
	otherActor := models.Actor{UserID: other.UserID, Role: models.RolePatient}

	_, err = f.svc.Accounts.GetPatient(f.ctx, otherActor, f.patient.ID)
	requireKind(t, err, utils.KindForbidden)
	_, err = f.svc.Accounts.UpdatePatient(f.ctx, otherActor, f.patient.ID, PatientPatch{Notes: &notes})
	requireKind(t, err, utils.KindForbidden)

	got, err := f.svc.Accounts.GetPatient(f.ctx, f.doctorActor, f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)
}
