package tokens

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/carmedic/backend/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(&models.Token{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return New(conn)
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService(t)

	signed, err := svc.Issue(7, models.TokenAuth, models.DeviceInfo{UserAgent: "test"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	record, err := svc.Validate(signed, models.TokenAuth)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if record.UserID != 7 {
		t.Errorf("got user %d, want 7", record.UserID)
	}
}

func TestValidateRejectsWrongType(t *testing.T) {
	svc := newTestService(t)

	signed, err := svc.Issue(7, models.TokenResetPassword, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.Validate(signed, models.TokenAuth); err == nil {
		t.Fatal("expected reset token to fail auth validation")
	}
}

func TestIssueReusesValidRecord(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Issue(3, models.TokenAuth, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("first Issue failed: %v", err)
	}
	second, err := svc.Issue(3, models.TokenAuth, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}

	var count int64
	svc.db.Model(&models.Token{}).Where("user_id = ?", 3).Count(&count)
	if count != 1 {
		t.Errorf("got %d stored records, want 1", count)
	}

	for _, signed := range []string{first, second} {
		if _, err := svc.Validate(signed, models.TokenAuth); err != nil {
			t.Errorf("credential failed validation against shared record: %v", err)
		}
	}
}

func TestInvalidate(t *testing.T) {
	svc := newTestService(t)

	signed, err := svc.Issue(5, models.TokenAuth, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := svc.Invalidate(signed); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, err := svc.Validate(signed, models.TokenAuth); err == nil {
		t.Fatal("expected invalidated credential to fail validation")
	}
}

func TestInvalidateUserDropsCachedEntries(t *testing.T) {
	svc := newTestService(t)

	signed, err := svc.Issue(9, models.TokenAuth, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	// Populate the cache
	if _, err := svc.Validate(signed, models.TokenAuth); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if err := svc.InvalidateUser(9); err != nil {
		t.Fatalf("InvalidateUser failed: %v", err)
	}

	if _, err := svc.Validate(signed, models.TokenAuth); err == nil {
		t.Fatal("expected cached credential to fail after user invalidation")
	}
}

func TestValidateCacheHitReturnsCompleteRecord(t *testing.T) {
	svc := newTestService(t)

	signed, err := svc.Issue(4, models.TokenAuth, models.DeviceInfo{})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	first, err := svc.Validate(signed, models.TokenAuth)
	if err != nil {
		t.Fatalf("first Validate failed: %v", err)
	}
	second, err := svc.Validate(signed, models.TokenAuth)
	if err != nil {
		t.Fatalf("cached Validate failed: %v", err)
	}

	// The cached result must carry the reference token and row ID, not a
	// partial copy
	if second.Token == "" || second.Token != first.Token {
		t.Errorf("cached record token %q, want %q", second.Token, first.Token)
	}
	if second.ID == 0 || second.ID != first.ID {
		t.Errorf("cached record ID %d, want %d", second.ID, first.ID)
	}

	// A cached record must be usable for targeted invalidation
	if err := svc.InvalidateRecord(second); err != nil {
		t.Fatalf("InvalidateRecord failed: %v", err)
	}
	if _, err := svc.Validate(signed, models.TokenAuth); err == nil {
		t.Fatal("expected validation to fail after invalidating the cached record")
	}
}

func TestCleanup(t *testing.T) {
	svc := newTestService(t)

	expired := models.Token{
		UserID:    1,
		Type:      models.TokenAuth,
		Token:     "expired-ref",
		ExpiresAt: time.Now().Add(-time.Hour),
		IsValid:   true,
	}
	revoked := models.Token{
		UserID:    2,
		Type:      models.TokenAuth,
		Token:     "revoked-ref",
		ExpiresAt: time.Now().Add(time.Hour),
		IsValid:   false,
	}
	live := models.Token{
		UserID:    3,
		Type:      models.TokenAuth,
		Token:     "live-ref",
		ExpiresAt: time.Now().Add(time.Hour),
		IsValid:   true,
	}
	for _, record := range []models.Token{expired, revoked, live} {
		if err := svc.db.Create(&record).Error; err != nil {
			t.Fatalf("failed to seed record: %v", err)
		}
	}

	if err := svc.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	var remaining []models.Token
	svc.db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].Token != "live-ref" {
		t.Errorf("got %d remaining records, want only the live one", len(remaining))
	}

	// Running again on a clean store is a no-op
	if err := svc.Cleanup(); err != nil {
		t.Fatalf("second Cleanup failed: %v", err)
	}
}
