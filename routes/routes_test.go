package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
	redisstore "github.com/meinhoongagan/clinic-app/redis"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/services"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details []string        `json:"details"`
	Data    json.RawMessage `json:"data"`
}

type apiFixture struct {
	t   *testing.T
	ctx context.Context
	app *fiber.App
	svc *services.Services

	doctor  *models.Doctor
	patient *models.Patient

	adminToken        string
	receptionistToken string
	patientToken      string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	mr := miniredis.RunT(t)
	blacklist := redisstore.NewTokenBlacklist(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	svc := services.New(repository.NewMemoryStore(), log, services.Options{
		Blacklist: blacklist,
		JWTSecret: testSecret,
		JWTTTL:    time.Hour,
	})
	f := &apiFixture{
		t:   t,
		ctx: context.Background(),
		svc: svc,
		app: NewApp(controllers.New(svc, log), log, middleware.Protected(testSecret, blacklist, svc.Accounts)),
	}

	_, err := svc.Accounts.CreateAdmin(f.ctx, services.ProfileInput{Username: "admin", Password: "secret123", FullName: "Quản trị"})
	require.NoError(t, err)
	_, err = svc.Accounts.CreateReceptionist(f.ctx, services.ProfileInput{Username: "letan", Password: "secret123", FullName: "Lễ tân"})
	require.NoError(t, err)
	f.doctor, err = svc.Accounts.CreateDoctor(f.ctx, services.DoctorInput{
		ProfileInput: services.ProfileInput{Username: "bs.minh", Password: "secret123", FullName: "Bác sĩ Minh"},
	})
	require.NoError(t, err)
	f.patient, err = svc.Accounts.Register(f.ctx, services.ProfileInput{Username: "an", Password: "secret123", FullName: "Nguyễn An"})
	require.NoError(t, err)

	f.adminToken = f.login("admin")
	f.receptionistToken = f.login("letan")
	f.patientToken = f.login("an")
	return f
}

func (f *apiFixture) do(method, path, token string, body any) (int, envelope, *http.Response) {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)

	var env envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		raw, _ := io.ReadAll(resp.Body)
		require.NoError(f.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env, resp
}

func (f *apiFixture) login(username string) string {
	f.t.Helper()
	status, env, _ := f.do("POST", "/auth/login", "", map[string]string{"username": username, "password": "secret123"})
	require.Equal(f.t, fiber.StatusOK, status, env.Message)
	var session services.Session
	require.NoError(f.t, json.Unmarshal(env.Data, &session))
	return session.Token
}

func TestRegisterLoginAndMe(t *testing.T) {
	f := newAPIFixture(t)

	status, env, _ := f.do("POST", "/auth/register", "", map[string]string{
		"username": "binh", "password": "secret123", "full_name": "Trần Bình",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.True(t, env.Success)

	token := f.login("binh")
	status, env, _ = f.do("GET", "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, models.RolePatient, me.Role)
	assert.Equal(t, "binh", me.Username)

	status, env, _ = f.do("POST", "/auth/login", "", map[string]string{"username": "binh", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	status, env, _ := f.do("GET", "/appointments", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _, _ = f.do("GET", "/appointments", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRolesAreEnforced(t *testing.T) {
	f := newAPIFixture(t)

	status, _, _ := f.do("GET", "/appointments", f.patientToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = f.do("GET", "/appointments/report/income?startDate=2025-01-01&endDate=2025-01-31", f.receptionistToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = f.do("GET", "/appointments/report/income?startDate=2025-01-01&endDate=2025-01-31", f.adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = f.do("POST", "/suppliers", f.receptionistToken, map[string]string{"name": "Dược Hậu Giang"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestDoubleBookingIsRejected(t *testing.T) {
	f := newAPIFixture(t)
	at := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	body := map[string]any{"patient_id": f.patient.ID, "doctor_id": f.doctor.ID, "appointment_time": at}

	status, env, _ := f.do("POST", "/appointments", f.receptionistToken, body)
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env, _ = f.do("POST", "/appointments", f.adminToken, body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Bác sĩ đã có lịch hẹn vào thời điểm này", env.Message)
}

func TestPatientCancelNeedsTwelveHoursNotice(t *testing.T) {
	f := newAPIFixture(t)
	a, err := f.svc.Appointments.Create(f.ctx, models.Actor{UserID: 1, Role: models.RoleAdmin}, services.CreateAppointmentInput{
		PatientID: f.patient.ID, DoctorID: f.doctor.ID, AppointmentTime: time.Now().Add(5 * time.Hour),
	})
	require.NoError(t, err)
	path := fmt.Sprintf("/appointments/%d/cancel", a.ID)

	status, env, _ := f.do("PUT", path, f.patientToken, map[string]string{"reason": "bận"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Chỉ có thể hủy lịch hẹn trước ít nhất 12 giờ", env.Message)

	status, env, _ = f.do("PUT", path, f.adminToken, map[string]string{"reason": "bận"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var got models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestDispenseShortageOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	m, err := f.svc.Inventory.CreateMedicine(f.ctx, services.MedicineInput{
		DrugName: "Paracetamol", Unit: models.UnitTablet, StockQuantity: 3, Price: 2000,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	a, err := f.svc.Appointments.Create(f.ctx, models.Actor{UserID: 1, Role: models.RoleAdmin}, services.CreateAppointmentInput{
		PatientID: f.patient.ID, DoctorID: f.doctor.ID, AppointmentTime: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	rec, err := f.svc.Records.Create(f.ctx, models.Actor{UserID: f.doctor.UserID, Role: models.RoleDoctor}, services.CreateRecordInput{
		AppointmentID: a.ID, Diagnosis: "Sốt", Treatment: "Hạ sốt",
		Medications: models.Prescription{{MedicineID: m.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	path := fmt.Sprintf("/medical-records/%d/dispense", rec.ID)

	status, _, _ := f.do("POST", path, f.patientToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env, _ := f.do("POST", path, f.receptionistToken, nil)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, env.Details, 1)
	assert.Contains(t, env.Details[0], "có 3, cần 5")

	left, err := f.svc.Inventory.GetMedicine(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, left.StockQuantity)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login("an")

	status, _, _ := f.do("POST", "/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, env, _ := f.do("GET", "/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Phiên đăng nhập đã kết thúc", env.Message)

	status, _, _ = f.do("GET", "/auth/me", f.patientToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestDisabledStaffLoseAccessImmediately(t *testing.T) {
	f := newAPIFixture(t)
	doctorToken := f.login("bs.minh")
	path := fmt.Sprintf("/doctors/%d/employment", f.doctor.ID)

	status, _, _ := f.do("PUT", path, f.adminToken, map[string]bool{"employment_status": false})
	require.Equal(t, fiber.StatusOK, status)

	status, env, _ := f.do("GET", "/auth/me", doctorToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Tài khoản đã ngừng hoạt động", env.Message)

	status, _, _ = f.do("PUT", path, f.adminToken, map[string]bool{"employment_status": true})
	require.Equal(t, fiber.StatusOK, status)
	status, _, _ = f.do("GET", "/auth/me", doctorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLowStockRouteIsNotShadowed(t *testing.T) {
	f := newAPIFixture(t)
	_, err := f.svc.Inventory.CreateMedicine(f.ctx, services.MedicineInput{
		DrugName: "Vitamin C", Unit: models.UnitBottle, StockQuantity: 2, Price: 1,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	status, env, _ := f.do("GET", "/medicines/low-stock?threshold=5", f.receptionistToken, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var list []models.Medicine
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Vitamin C", list[0].DrugName)
}

func TestSupplierDeactivationReportsCascade(t *testing.T) {
	f := newAPIFixture(t)
	sp, err := f.svc.Inventory.CreateSupplier(f.ctx, services.SupplierInput{Name: "Traphaco"})
	require.NoError(t, err)
	_, err = f.svc.Inventory.CreateMedicine(f.ctx, services.MedicineInput{
		DrugName: "Boganic", Unit: models.UnitBox, StockQuantity: 20, Price: 1,
		SupplierID: &sp.ID, ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	status, env, _ := f.do("DELETE", fmt.Sprintf("/suppliers/%d", sp.ID), f.adminToken, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var out struct {
		MedicinesDeactivated int64 `json:"medicines_deactivated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, int64(1), out.MedicinesDeactivated)
}

func TestRevenueExport(t *testing.T) {
	f := newAPIFixture(t)
	day := time.Now().Format("2006-01-02")
	path := "/reports/revenue-detail/export?startDate=" + day + "&endDate=" + day

	status, _, _ := f.do("GET", path, f.receptionistToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, resp := f.do("GET", path, f.adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "doanh-thu_"+day)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	f := newAPIFixture(t)
	status, env, _ := f.do("GET", "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, env.Success)
}
