package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/middleware"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/tokens"
)

// setupApp wires a fiber app against a fresh in-memory database, mirroring
// the route layout in main.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = conn.AutoMigrate(
		&models.User{},
		&models.Mechanic{},
		&models.Service{},
		&models.Appointment{},
		&models.Review{},
		&models.Token{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	db.DB = conn
	tokens.Init(conn)
	Catalog.Invalidate()

	app := fiber.New()

	auth := app.Group("/api/auth")
	auth.Post("/register", Signup)
	auth.Post("/login", Login)
	auth.Post("/logout", middleware.Protected(), Logout)

	users := app.Group("/api/users", middleware.Protected())
	users.Get("/profile", GetProfile)
	users.Post("/vehicles", AddVehicle)
	users.Post("/appointments/:appointmentId/cancel", CancelAppointment)

	mechanics := app.Group("/api/mechanics")
	mechanics.Post("/", middleware.Protected(), CreateMechanic)
	mechanics.Get("/:id/slots", GetAvailableSlots)
	mechanics.Post("/:id/transfer-ownership", middleware.Protected(), TransferOwnership)
	mechanics.Post("/:id/services", middleware.Protected(),
		middleware.RequireShopPermission(models.PermManageServices), AddService)

	appointments := app.Group("/api/appointments", middleware.Protected())
	appointments.Post("/create", CreateAppointment)
	appointments.Get("/", GetUserAppointments)
	appointments.Post("/check-availability", CheckSlotAvailability)
	appointments.Get("/mechanic/:mechanicId",
		middleware.RequireShopPermission(models.PermManageAppointments), GetMechanicAppointments)
	appointments.Patch("/mechanic/:mechanicId/:appointmentId/status",
		middleware.RequireShopPermission(models.PermManageAppointments), UpdateAppointmentStatus)

	reviews := app.Group("/api/reviews")
	reviews.Post("/", middleware.Protected(), CreateReview)
	reviews.Get("/mechanic/:mechanicId/stats", GetMechanicReviewStats)

	services := app.Group("/api/services")
	services.Get("/", GetServices)
	services.Post("/", middleware.Protected(), middleware.RequireAdmin(), CreateService)

	return app
}

func seedUser(t *testing.T, email string, userType models.UserType) models.User {
	t.Helper()
	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "$2a$10$unusedhashunusedhashunusedhashunusedhashunusedhashuse",
		Type:      userType,
		Status:    models.StatusActive,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func authHeader(t *testing.T, userID uint) string {
	t.Helper()
	signed, err := tokens.Default.Issue(userID, models.TokenAuth, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	result := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, result
}

func seedShop(t *testing.T, owner models.User, serviceName string, slotStart, slotEnd time.Time) (models.Mechanic, models.Service) {
	t.Helper()

	service := models.Service{Name: serviceName, Category: "maintenance"}
	if err := db.DB.Create(&service).Error; err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}

	mechanic := models.Mechanic{
		BusinessName: "Test Garage",
		Admins: models.ShopAdminList{{
			UserID:  owner.ID,
			Role:    models.RoleOwner,
			AddedAt: time.Now(),
			AddedBy: owner.ID,
		}},
		Services: models.OfferedServiceList{{
			ServiceID:         service.ID,
			Price:             50,
			EstimatedDuration: models.Duration{Hours: 1},
		}},
		Schedule: models.Schedule{{
			Date: slotStart,
			Slots: []models.Slot{{
				StartTime:   slotStart,
				EndTime:     slotEnd,
				IsAvailable: true,
			}},
		}},
	}
	if err := db.DB.Create(&mechanic).Error; err != nil {
		t.Fatalf("failed to seed mechanic: %v", err)
	}
	return mechanic, service
}

func TestSignupIssuesToken(t *testing.T) {
	app := setupApp(t)

	resp, result := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"password":   "secret123",
		"type":       "customer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %v", resp.StatusCode, result)
	}

	token, _ := result["token"].(string)
	if token == "" {
		t.Fatal("expected a token in the signup response")
	}

	var userCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	if userCount != 1 {
		t.Errorf("got %d users, want 1", userCount)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/profile", "Bearer "+token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("profile with signup token: got status %d, want 200", resp.StatusCode)
	}
}

func TestBookingLifecycle(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, service := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(3*time.Hour))

	clientToken := authHeader(t, client.ID)
	ownerToken := authHeader(t, owner.ID)

	// Client books inside the slot
	resp, result := doJSON(t, app, http.MethodPost, "/api/appointments/create", clientToken, fiber.Map{
		"mechanic_id": mechanic.ID,
		"service_id":  service.ID,
		"start_time":  slotStart.Add(30 * time.Minute),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("booking: got status %d, want 201: %v", resp.StatusCode, result)
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment).Error; err != nil {
		t.Fatalf("appointment not persisted: %v", err)
	}
	if appointment.Status != models.StatusPending {
		t.Errorf("got status %s, want pending", appointment.Status)
	}
	if appointment.TotalCost != 50 {
		t.Errorf("got cost %v, want snapshot 50", appointment.TotalCost)
	}
	wantEnd := slotStart.Add(90 * time.Minute)
	if !appointment.EndTime.Equal(wantEnd) {
		t.Errorf("got end %v, want %v", appointment.EndTime, wantEnd)
	}

	// Owner accepts, which reserves the containing slot
	statusPath := fmt.Sprintf("/api/appointments/mechanic/%d/%d/status", mechanic.ID, appointment.ID)
	resp, result = doJSON(t, app, http.MethodPatch, statusPath, ownerToken, fiber.Map{
		"status":  "accepted",
		"message": "See you then",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: got status %d, want 200: %v", resp.StatusCode, result)
	}

	var updated models.Mechanic
	db.DB.First(&updated, mechanic.ID)
	slot := updated.Schedule[0].Slots[0]
	if slot.IsAvailable || slot.AppointmentID != appointment.ID {
		t.Errorf("slot not reserved: available=%v appointment=%d", slot.IsAvailable, slot.AppointmentID)
	}

	// The reserved window no longer reads as available
	resp, result = doJSON(t, app, http.MethodPost, "/api/appointments/check-availability", clientToken, fiber.Map{
		"mechanic_id": mechanic.ID,
		"start_time":  slotStart.Add(30 * time.Minute),
		"end_time":    slotStart.Add(time.Hour),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability: got status %d, want 200", resp.StatusCode)
	}
	if result["available"] != false {
		t.Error("expected reserved slot to be unavailable")
	}

	// Completing a job is allowed from accepted
	resp, result = doJSON(t, app, http.MethodPatch, statusPath, ownerToken, fiber.Map{
		"status": "completed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: got status %d, want 200: %v", resp.StatusCode, result)
	}
}

func TestBookingDefaultsStartTime(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, service := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(2*time.Hour))

	// No start_time means the client wants service as soon as possible
	before := time.Now()
	resp, result := doJSON(t, app, http.MethodPost, "/api/appointments/create", authHeader(t, client.ID), fiber.Map{
		"mechanic_id": mechanic.ID,
		"service_id":  service.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %v", resp.StatusCode, result)
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment).Error; err != nil {
		t.Fatalf("appointment not persisted: %v", err)
	}
	if appointment.StartTime.Before(before.Add(-time.Second)) || appointment.StartTime.After(time.Now().Add(time.Minute)) {
		t.Errorf("start %v not defaulted to the current time", appointment.StartTime)
	}
	if got := appointment.EndTime.Sub(appointment.StartTime); got != time.Hour {
		t.Errorf("got duration %v, want 1h from the offered service", got)
	}
}

func TestBookingUnofferedServiceNotFound(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, _ := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(2*time.Hour))

	unoffered := models.Service{Name: "Transmission Rebuild", Category: "repair"}
	if err := db.DB.Create(&unoffered).Error; err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/appointments/create", authHeader(t, client.ID), fiber.Map{
		"mechanic_id": mechanic.ID,
		"service_id":  unoffered.ID,
		"start_time":  slotStart,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d, want 404 for a service the shop does not offer", resp.StatusCode)
	}
}

func TestMechanicAppointmentListing(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, service := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(8*time.Hour))

	for i := 0; i < 3; i++ {
		appointmentType := models.TypeScheduled
		if i == 2 {
			appointmentType = models.TypeEmergency
		}
		appointment := models.Appointment{
			MechanicID: mechanic.ID,
			ClientID:   client.ID,
			ServiceID:  service.ID,
			Status:     models.StatusPending,
			Type:       appointmentType,
			StartTime:  slotStart.Add(time.Duration(i) * time.Hour),
			EndTime:    slotStart.Add(time.Duration(i+1) * time.Hour),
		}
		if err := db.DB.Create(&appointment).Error; err != nil {
			t.Fatalf("failed to seed appointment: %v", err)
		}
	}

	ownerToken := authHeader(t, owner.ID)
	basePath := fmt.Sprintf("/api/appointments/mechanic/%d", mechanic.ID)

	resp, result := doJSON(t, app, http.MethodGet, basePath+"?limit=2", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200: %v", resp.StatusCode, result)
	}
	if got := len(result["appointments"].([]interface{})); got != 2 {
		t.Errorf("got %d appointments on page 1, want 2", got)
	}
	if result["totalPages"] != float64(2) {
		t.Errorf("got totalPages %v, want 2", result["totalPages"])
	}
	if result["total"] != float64(3) {
		t.Errorf("got total %v, want 3", result["total"])
	}

	resp, result = doJSON(t, app, http.MethodGet, basePath+"?type=emergency", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("type filter: got status %d, want 200", resp.StatusCode)
	}
	if got := len(result["appointments"].([]interface{})); got != 1 {
		t.Errorf("got %d emergency appointments, want 1", got)
	}
}

func TestAddServiceDefaultsDuration(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, _ := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(time.Hour))

	extra := models.Service{Name: "Tire Rotation", Category: "maintenance"}
	if err := db.DB.Create(&extra).Error; err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}

	resp, result := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/mechanics/%d/services", mechanic.ID), authHeader(t, owner.ID), fiber.Map{
			"service_id": extra.ID,
			"price":      30,
		})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %v", resp.StatusCode, result)
	}

	var updated models.Mechanic
	db.DB.First(&updated, mechanic.ID)
	offered := updated.OfferedService(extra.ID)
	if offered == nil {
		t.Fatal("service not attached to the shop")
	}
	if offered.EstimatedDuration.ToDuration() != time.Hour {
		t.Errorf("got duration %v, want the 1h default", offered.EstimatedDuration.ToDuration())
	}
}

func TestClientCancelReleasesSlot(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, service := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(2*time.Hour))

	appointment := models.Appointment{
		MechanicID: mechanic.ID,
		ClientID:   client.ID,
		ServiceID:  service.ID,
		Status:     models.StatusAccepted,
		StartTime:  slotStart,
		EndTime:    slotStart.Add(time.Hour),
	}
	if err := db.DB.Create(&appointment).Error; err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}

	mechanic.Schedule[0].Slots[0].IsAvailable = false
	mechanic.Schedule[0].Slots[0].AppointmentID = appointment.ID
	if err := db.DB.Model(&mechanic).Update("schedule", mechanic.Schedule).Error; err != nil {
		t.Fatalf("failed to reserve slot: %v", err)
	}

	resp, result := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/users/appointments/%d/cancel", appointment.ID), authHeader(t, client.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200: %v", resp.StatusCode, result)
	}

	var updated models.Mechanic
	db.DB.First(&updated, mechanic.ID)
	slot := updated.Schedule[0].Slots[0]
	if !slot.IsAvailable || slot.AppointmentID != 0 {
		t.Errorf("slot not released: available=%v appointment=%d", slot.IsAvailable, slot.AppointmentID)
	}

	var cancelled models.Appointment
	db.DB.First(&cancelled, appointment.ID)
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("got status %s, want cancelled", cancelled.Status)
	}
}

func TestStatusTransitionRejected(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, service := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(2*time.Hour))

	appointment := models.Appointment{
		MechanicID: mechanic.ID,
		ClientID:   client.ID,
		ServiceID:  service.ID,
		Status:     models.StatusPending,
		StartTime:  slotStart,
		EndTime:    slotStart.Add(time.Hour),
	}
	if err := db.DB.Create(&appointment).Error; err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}

	ownerToken := authHeader(t, owner.ID)
	statusPath := fmt.Sprintf("/api/appointments/mechanic/%d/%d/status", mechanic.ID, appointment.ID)

	// Pending work cannot jump straight to completed
	resp, _ := doJSON(t, app, http.MethodPatch, statusPath, ownerToken, fiber.Map{"status": "completed"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pending->completed: got status %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPatch, statusPath, ownerToken, fiber.Map{"status": "confirmed"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status: got status %d, want 400", resp.StatusCode)
	}

	// Outsiders cannot touch the shop's appointments
	outsider := seedUser(t, "outsider@example.com", models.TypeCustomer)
	resp, _ = doJSON(t, app, http.MethodPatch, statusPath, authHeader(t, outsider.ID), fiber.Map{"status": "accepted"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("outsider: got status %d, want 403", resp.StatusCode)
	}
}

func TestReviewAggregation(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	client := seedUser(t, "client@example.com", models.TypeCustomer)
	other := seedUser(t, "other@example.com", models.TypeCustomer)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, service := seedShop(t, owner, "Brake Inspection", slotStart, slotStart.Add(2*time.Hour))

	seedCompleted := func(clientID uint) models.Appointment {
		appointment := models.Appointment{
			MechanicID: mechanic.ID,
			ClientID:   clientID,
			ServiceID:  service.ID,
			Status:     models.StatusCompleted,
			StartTime:  slotStart,
			EndTime:    slotStart.Add(time.Hour),
		}
		if err := db.DB.Create(&appointment).Error; err != nil {
			t.Fatalf("failed to seed appointment: %v", err)
		}
		return appointment
	}

	first := seedCompleted(client.ID)
	second := seedCompleted(other.ID)

	clientToken := authHeader(t, client.ID)

	resp, result := doJSON(t, app, http.MethodPost, "/api/reviews/", clientToken, fiber.Map{
		"appointment_id": first.ID,
		"rating":         5,
		"comment":        "Great work",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first review: got status %d, want 201: %v", resp.StatusCode, result)
	}

	// Same appointment cannot be reviewed twice
	resp, _ = doJSON(t, app, http.MethodPost, "/api/reviews/", clientToken, fiber.Map{
		"appointment_id": first.ID,
		"rating":         1,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate review: got status %d, want 409", resp.StatusCode)
	}

	resp, result = doJSON(t, app, http.MethodPost, "/api/reviews/", authHeader(t, other.ID), fiber.Map{
		"appointment_id": second.ID,
		"rating":         4,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("second review: got status %d, want 201: %v", resp.StatusCode, result)
	}

	var updated models.Mechanic
	db.DB.First(&updated, mechanic.ID)
	if updated.AverageRating != 4.5 {
		t.Errorf("got average %v, want 4.5", updated.AverageRating)
	}
	if updated.TotalReviews != 2 {
		t.Errorf("got %d reviews, want 2", updated.TotalReviews)
	}

	// Pending appointments cannot be reviewed
	pending := models.Appointment{
		MechanicID: mechanic.ID,
		ClientID:   client.ID,
		ServiceID:  service.ID,
		Status:     models.StatusPending,
		StartTime:  slotStart,
		EndTime:    slotStart.Add(time.Hour),
	}
	db.DB.Create(&pending)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/reviews/", clientToken, fiber.Map{
		"appointment_id": pending.ID,
		"rating":         5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pending review: got status %d, want 400", resp.StatusCode)
	}
}

func TestTransferOwnership(t *testing.T) {
	app := setupApp(t)

	owner := seedUser(t, "owner@example.com", models.TypeMechanic)
	manager := seedUser(t, "manager@example.com", models.TypeMechanic)

	slotStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mechanic, _ := seedShop(t, owner, "Oil Change", slotStart, slotStart.Add(time.Hour))

	mechanic.Admins = append(mechanic.Admins, models.ShopAdmin{
		UserID:  manager.ID,
		Role:    models.RoleManager,
		AddedAt: time.Now(),
		AddedBy: owner.ID,
	})
	if err := db.DB.Model(&mechanic).Update("admins", mechanic.Admins).Error; err != nil {
		t.Fatalf("failed to add manager: %v", err)
	}

	path := fmt.Sprintf("/api/mechanics/%d/transfer-ownership", mechanic.ID)

	// Only the owner may transfer
	resp, _ := doJSON(t, app, http.MethodPost, path, authHeader(t, manager.ID), fiber.Map{
		"new_owner_id": manager.ID,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("manager transfer: got status %d, want 403", resp.StatusCode)
	}

	resp, result := doJSON(t, app, http.MethodPost, path, authHeader(t, owner.ID), fiber.Map{
		"new_owner_id": manager.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner transfer: got status %d, want 200: %v", resp.StatusCode, result)
	}

	var updated models.Mechanic
	db.DB.First(&updated, mechanic.ID)

	owners := 0
	for _, admin := range updated.Admins {
		if admin.Role == models.RoleOwner {
			owners++
			if admin.UserID != manager.ID {
				t.Errorf("owner is user %d, want %d", admin.UserID, manager.ID)
			}
		}
		if admin.UserID == owner.ID && admin.Role != models.RoleManager {
			t.Errorf("previous owner has role %s, want manager", admin.Role)
		}
	}
	if owners != 1 {
		t.Errorf("got %d owners, want exactly 1", owners)
	}
}

func TestServiceCatalogCaching(t *testing.T) {
	app := setupApp(t)

	admin := seedUser(t, "admin@example.com", models.TypeAdmin)
	service := models.Service{Name: "Oil Change", Category: "maintenance"}
	db.DB.Create(&service)

	resp, result := doJSON(t, app, http.MethodGet, "/api/services/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	if result["fromCache"] != false {
		t.Error("first read should come from the database")
	}

	_, result = doJSON(t, app, http.MethodGet, "/api/services/", "", nil)
	if result["fromCache"] != true {
		t.Error("second read should come from the cache")
	}

	// A catalog write invalidates the cache
	resp, result = doJSON(t, app, http.MethodPost, "/api/services/", authHeader(t, admin.ID), fiber.Map{
		"name":     "Tire Rotation",
		"category": "maintenance",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: got status %d, want 201: %v", resp.StatusCode, result)
	}

	_, result = doJSON(t, app, http.MethodGet, "/api/services/", "", nil)
	if result["fromCache"] != false {
		t.Error("read after a write should miss the cache")
	}

	// Duplicate names are rejected
	resp, _ = doJSON(t, app, http.MethodPost, "/api/services/", authHeader(t, admin.ID), fiber.Map{
		"name":     "oil change",
		"category": "maintenance",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate name: got status %d, want 400", resp.StatusCode)
	}
}
