package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/saydalia/saydalia/app/controllers"
	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/app/routes"
	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/router"
	"github.com/saydalia/saydalia/pkg/workerpool"
)

// testAPI wires the full route table over in-memory repositories, so the
// tests cover routing, middleware and wire formats end to end.
type testAPI struct {
	handler http.Handler
	users   repositories.UserRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := repositories.NewMemoryUserRepository()
	pharmacies := repositories.NewMemoryPharmacyRepository()
	orders := repositories.NewMemoryOrderRepository()
	notifications := repositories.NewMemoryNotificationRepository()

	pool := workerpool.New(2)
	t.Cleanup(pool.Shutdown)

	authSvc := services.NewAuthService(users, pharmacies)
	notificationSvc := services.NewNotificationService(notifications)

	r := router.New()
	routes.Register(r, routes.API{
		Auth:          controllers.NewAuthController(authSvc),
		Users:         controllers.NewUserController(services.NewUserService(users)),
		Pharmacies:    controllers.NewPharmacyController(services.NewPharmacyService(pharmacies, users)),
		Orders:        controllers.NewOrderController(services.NewOrderService(orders, pharmacies, notificationSvc)),
		Notifications: controllers.NewNotificationController(notificationSvc, nil),
		Dashboard:     controllers.NewDashboardController(services.NewDashboardService(pharmacies, orders, notifications, pool)),
		Health:        controllers.NewHealthController(),
		Resolve: func(ctx context.Context, userID string) (models.User, error) {
			id, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				return models.User{}, err
			}
			return users.FindByID(ctx, id)
		},
	})

	return &testAPI{handler: r.Handler(), users: users}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

// registerAdmin creates an admin with a pharmacy and returns the token and
// the pharmacy id.
func (a *testAPI) registerAdmin(t *testing.T, email string) (token, pharmacyID string) {
	t.Helper()

	rec, body := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "مدير", "email": email, "password": "secret123",
		"phone": "0501234567", "role": "admin",
		"pharmacy": map[string]interface{}{
			"name": "صيدلية النور", "address": "شارع العليا", "phone": "0112223344",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	pharmacy, ok := body["pharmacy"].(map[string]interface{})
	require.True(t, ok, "admin registration must return the pharmacy")
	return body["token"].(string), pharmacy["id"].(string)
}

func (a *testAPI) registerUser(t *testing.T, email string) string {
	t.Helper()

	rec, body := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "زبون", "email": email, "password": "secret123", "phone": "0507654321",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return body["token"].(string)
}

// Admin registration also accepts the flat shape, where the pharmacy name
// comes as a top-level field and address and phone are shared with the
// account.
func TestRegisterAdminFlatPayload(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "مدير", "email": "flat@example.com", "password": "secret123",
		"phone": "0501234567", "role": "admin",
		"pharmacyName": "صيدلية الشفاء", "address": "شارع التحلية",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	pharmacy, ok := body["pharmacy"].(map[string]interface{})
	require.True(t, ok, "flat admin registration must return the pharmacy")
	assert.Equal(t, "صيدلية الشفاء", pharmacy["name"])
	assert.Equal(t, "شارع التحلية", pharmacy["address"])
	assert.Equal(t, "0501234567", pharmacy["phone"])
}

func TestRegisterNeverLeaksPasswordHash(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "زبون", "email": "a@example.com", "password": "secret123", "phone": "0500000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "user", user["role"])
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser(t, "dup@example.com")

	// Same address with different case is still a duplicate.
	rec, body := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "آخر", "email": "DUP@example.com", "password": "secret123", "phone": "0500000001",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "البريد الإلكتروني مسجل مسبقاً", body["message"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser(t, "known@example.com")

	_, unknownBody := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "nobody@example.com", "password": "secret123",
	})
	rec, wrongBody := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "known@example.com", "password": "wrongpass",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, unknownBody["message"], wrongBody["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerUser(t, "customer@example.com")

	rec, _ := api.do(t, http.MethodGet, "/api/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/pharmacies", token, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicPharmacyListing(t *testing.T) {
	api := newTestAPI(t)
	api.registerAdmin(t, "admin@example.com")

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pharmacies", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pharmacies []map[string]interface{} `json:"pharmacies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Pharmacies, 1)
	assert.Equal(t, "صيدلية النور", body.Pharmacies[0]["name"])
}

func TestMedicineRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	token, pharmacyID := api.registerAdmin(t, "admin@example.com")

	rec, created := api.do(t, http.MethodPost, "/api/pharmacies/"+pharmacyID+"/medicines", token, map[string]interface{}{
		"name": "باراسيتامول", "price": 8.5, "category": "مسكنات",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, created["inStock"])

	rec, _ = api.do(t, http.MethodGet, "/api/pharmacies/"+pharmacyID+"/medicines", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Medicines []map[string]interface{} `json:"medicines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Medicines, 1)
	assert.Equal(t, "باراسيتامول", body.Medicines[0]["name"])
	assert.Equal(t, 8.5, body.Medicines[0]["price"])
	assert.Equal(t, "مسكنات", body.Medicines[0]["category"])
}

func TestReplaceMedicinesWholesale(t *testing.T) {
	api := newTestAPI(t)
	token, pharmacyID := api.registerAdmin(t, "admin@example.com")

	_, _ = api.do(t, http.MethodPost, "/api/pharmacies/"+pharmacyID+"/medicines", token, map[string]interface{}{
		"name": "قديم", "price": 1,
	})

	rec, _ := api.do(t, http.MethodPut, "/api/pharmacies/"+pharmacyID+"/medicines", token, map[string]interface{}{
		"medicines": []map[string]interface{}{
			{"name": "جديد أ", "price": 5},
			{"name": "جديد ب", "price": 7},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = api.do(t, http.MethodGet, "/api/pharmacies/"+pharmacyID+"/medicines", "", nil)
	var body struct {
		Medicines []map[string]interface{} `json:"medicines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Medicines, 2)
	assert.Equal(t, "جديد أ", body.Medicines[0]["name"])
}

func TestOrderAgainstMissingPharmacy(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerUser(t, "customer@example.com")

	for _, pharmacyID := range []string{primitive.NewObjectID().Hex(), "not-hex"} {
		rec, body := api.do(t, http.MethodPost, "/api/orders", token, map[string]interface{}{
			"pharmacyId": pharmacyID, "medicineName": "دواء", "quantity": 1,
			"address": "حي النرجس", "phone": "0500000000",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "لم يتم العثور على الصيدلية", body["message"])
	}
}

func TestOrderRequiresDeliveryDetails(t *testing.T) {
	api := newTestAPI(t)
	_, pharmacyID := api.registerAdmin(t, "admin@example.com")
	token := api.registerUser(t, "customer@example.com")

	payloads := []map[string]interface{}{
		{"pharmacyId": pharmacyID, "medicineName": "دواء"},
		{"pharmacyId": pharmacyID, "medicineName": "دواء", "address": "عنوان"},
		{"pharmacyId": pharmacyID, "medicineName": "دواء", "phone": "0500000000"},
	}
	for _, payload := range payloads {
		rec, _ := api.do(t, http.MethodPost, "/api/orders", token, payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	adminToken, pharmacyID := api.registerAdmin(t, "admin@example.com")
	customerToken := api.registerUser(t, "customer@example.com")

	rec, order := api.do(t, http.MethodPost, "/api/orders", customerToken, map[string]interface{}{
		"pharmacyId": pharmacyID, "medicineName": "باراسيتامول",
		"address": "حي النرجس", "phone": "0500000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, float64(1), order["quantity"]) // defaulted

	orderID := order["id"].(string)

	// The customer cannot change the status.
	rec, _ = api.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", customerToken, map[string]interface{}{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin of another pharmacy cannot either.
	otherToken, _ := api.registerAdmin(t, "other@example.com")
	rec, _ = api.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", otherToken, map[string]interface{}{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owning admin can; an unknown status is rejected first.
	rec, body := api.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", adminToken, map[string]interface{}{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "حالة الطلب غير صالحة", body["message"])

	rec, updated := api.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", adminToken, map[string]interface{}{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "accepted", updated["status"])

	// A status change notifies the customer.
	rec, _ = api.do(t, http.MethodGet, "/api/notifications", customerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderVisibility(t *testing.T) {
	api := newTestAPI(t)
	adminToken, pharmacyID := api.registerAdmin(t, "admin@example.com")
	ownerToken := api.registerUser(t, "owner@example.com")
	strangerToken := api.registerUser(t, "stranger@example.com")

	_, order := api.do(t, http.MethodPost, "/api/orders", ownerToken, map[string]interface{}{
		"pharmacyId": pharmacyID, "medicineName": "دواء", "address": "عنوان", "phone": "0500000000",
	})
	orderID := order["id"].(string)

	rec, _ := api.do(t, http.MethodGet, "/api/orders/"+orderID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/orders/"+orderID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNotificationMarkReadIdempotent(t *testing.T) {
	api := newTestAPI(t)
	adminToken, pharmacyID := api.registerAdmin(t, "admin@example.com")
	customerToken := api.registerUser(t, "customer@example.com")

	// Placing an order notifies the pharmacy admin.
	_, _ = api.do(t, http.MethodPost, "/api/orders", customerToken, map[string]interface{}{
		"pharmacyId": pharmacyID, "medicineName": "دواء", "address": "عنوان", "phone": "0500000000",
	})

	rec, _ := api.do(t, http.MethodGet, "/api/notifications", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list)
	notificationID := list[0]["id"].(string)

	for i := 0; i < 2; i++ {
		rec, body := api.do(t, http.MethodPatch, "/api/notifications/"+notificationID+"/read", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
		assert.Equal(t, true, body["read"])
	}

	// Another user cannot mark it, and cannot learn it exists.
	rec, _ = api.do(t, http.MethodPatch, "/api/notifications/"+notificationID+"/read", customerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, count := api.do(t, http.MethodGet, "/api/notifications/unread", adminToken, nil)
	assert.Equal(t, float64(0), count["unread"])
}

func TestOwnershipMaskedOnPharmacyWrites(t *testing.T) {
	api := newTestAPI(t)
	_, pharmacyID := api.registerAdmin(t, "owner@example.com")
	otherToken, _ := api.registerAdmin(t, "intruder@example.com")

	rec, body := api.do(t, http.MethodPut, "/api/pharmacies/"+pharmacyID, otherToken, map[string]interface{}{
		"name": "مستولى عليها",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "لم يتم العثور على الصيدلية", body["message"])
}

func TestAdminDashboard(t *testing.T) {
	api := newTestAPI(t)
	adminToken, pharmacyID := api.registerAdmin(t, "admin@example.com")
	customerToken := api.registerUser(t, "customer@example.com")

	for i := 0; i < 3; i++ {
		rec, _ := api.do(t, http.MethodPost, "/api/orders", customerToken, map[string]interface{}{
			"pharmacyId": pharmacyID, "medicineName": fmt.Sprintf("دواء %d", i),
			"address": "عنوان", "phone": "0500000000",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, body := api.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(3), body["totalOrders"])

	rec, _ = api.do(t, http.MethodGet, "/api/admin/pharmacy/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 3)
}

// The health endpoint is a liveness check: it answers 200 with ok true even
// when the backing stores are unreachable.
func TestHealthAlwaysOK(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
}

func TestUpdateProfileSelfOnly(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerUser(t, "self@example.com")

	_, login := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "self@example.com", "password": "secret123",
	})
	selfID := login["user"].(map[string]interface{})["id"].(string)

	rec, body := api.do(t, http.MethodPut, "/api/users/"+selfID, token, map[string]interface{}{
		"city": "جدة",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := body["user"].(map[string]interface{})
	assert.Equal(t, "جدة", updated["city"])
	assert.Empty(t, updated["password"])

	otherToken := api.registerUser(t, "other@example.com")
	rec, _ = api.do(t, http.MethodPut, "/api/users/"+selfID, otherToken, map[string]interface{}{"city": "مكة"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
