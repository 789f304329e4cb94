package tokens

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carmedic/backend/models"
)

// ErrUnauthenticated is returned when a credential fails verification or no
// valid stored record backs it.
var ErrUnauthenticated = errors.New("invalid or expired token")

// Per-type lifetimes of stored token records.
var expirations = map[models.TokenType]time.Duration{
	models.TokenAuth:              24 * time.Hour,
	models.TokenResetPassword:     1 * time.Hour,
	models.TokenEmailVerification: 24 * time.Hour,
}

const cacheTTL = 5 * time.Minute

// cacheEntry keeps the full stored record so a cache hit returns the same
// value a database lookup would, reference token included.
type cacheEntry struct {
	record   models.Token
	cachedAt time.Time
}

// Service issues, validates and invalidates tokens against the token store,
// keeping a short-lived lookup cache in front of it. The cron cleanup job
// and request handlers share one instance, so the cache is mutex-guarded.
type Service struct {
	db     *gorm.DB
	secret []byte

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// Default is the process-wide instance wired up in main. Tests construct
// their own instances with New.
var Default *Service

// Init creates the default service backed by the given connection.
func Init(db *gorm.DB) {
	Default = New(db)
}

func New(db *gorm.DB) *Service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "solid_secret_key" // Replace with secure key in production
	}
	return &Service{
		db:     db,
		secret: []byte(secret),
		cache:  make(map[string]cacheEntry),
	}
}

// signJWT produces a signed credential referencing the user and token type.
func (s *Service) signJWT(userID uint, typ models.TokenType) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"type":   string(typ),
		"exp":    time.Now().Add(expirations[typ]).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Issue returns a signed credential for the user. Expired records of the
// same type are removed first; if a valid record remains, the new credential
// references it instead of creating another row.
func (s *Service) Issue(userID uint, typ models.TokenType, device models.DeviceInfo) (string, error) {
	if err := s.db.Where("user_id = ? AND type = ? AND expires_at < ?", userID, typ, time.Now()).
		Delete(&models.Token{}).Error; err != nil {
		return "", err
	}

	var existing models.Token
	err := s.db.Where("user_id = ? AND type = ? AND is_valid = ? AND expires_at > ?",
		userID, typ, true, time.Now()).First(&existing).Error
	if err == nil {
		return s.signJWT(userID, typ)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	record := models.Token{
		UserID:    userID,
		Type:      typ,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(expirations[typ]),
		IsValid:   true,
		Device:    device,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}

	return s.signJWT(userID, typ)
}

// Validate verifies the signed credential and requires a matching valid,
// non-expired stored record of the given type.
func (s *Service) Validate(signed string, typ models.TokenType) (*models.Token, error) {
	userID, claimedType, err := s.parseJWT(signed)
	if err != nil || claimedType != typ {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	if entry, ok := s.cache[signed]; ok {
		if time.Since(entry.cachedAt) < cacheTTL && time.Now().Before(entry.record.ExpiresAt) {
			cached := entry.record
			s.mu.Unlock()
			return &cached, nil
		}
		delete(s.cache, signed)
	}
	s.mu.Unlock()

	var record models.Token
	err = s.db.Where("user_id = ? AND type = ? AND is_valid = ? AND expires_at > ?",
		userID, typ, true, time.Now()).First(&record).Error
	if err != nil {
		return nil, ErrUnauthenticated
	}

	now := time.Now()
	s.db.Model(&record).Update("last_used_at", now)

	s.mu.Lock()
	s.cache[signed] = cacheEntry{record: record, cachedAt: now}
	s.mu.Unlock()

	return &record, nil
}

// Invalidate marks the stored records behind the signed credential invalid
// and drops the user's cache entries.
func (s *Service) Invalidate(signed string) error {
	userID, typ, err := s.parseJWT(signed)
	if err != nil {
		return ErrUnauthenticated
	}

	s.dropUserEntries(userID)

	return s.db.Model(&models.Token{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Update("is_valid", false).Error
}

// InvalidateUser marks every stored record for the user invalid.
func (s *Service) InvalidateUser(userID uint) error {
	s.dropUserEntries(userID)

	return s.db.Model(&models.Token{}).
		Where("user_id = ? AND is_valid = ?", userID, true).
		Update("is_valid", false).Error
}

// InvalidateRecord marks one stored record invalid, keyed by its reference
// token, and drops the owner's cache entries.
func (s *Service) InvalidateRecord(record *models.Token) error {
	s.dropUserEntries(record.UserID)

	return s.db.Model(&models.Token{}).
		Where("token = ?", record.Token).
		Update("is_valid", false).Error
}

// Cleanup purges expired cache entries, then deletes stored records that
// are expired or already invalid. Safe to run repeatedly and concurrently
// with issuance.
func (s *Service) Cleanup() error {
	now := time.Now()

	s.mu.Lock()
	for signed, entry := range s.cache {
		if !now.Before(entry.record.ExpiresAt) || now.Sub(entry.cachedAt) >= cacheTTL {
			delete(s.cache, signed)
		}
	}
	s.mu.Unlock()

	return s.db.Where("expires_at < ? OR is_valid = ?", now, false).
		Delete(&models.Token{}).Error
}

func (s *Service) parseJWT(signed string) (uint, models.TokenType, error) {
	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrUnauthenticated
	}
	id, ok := claims["userId"].(float64)
	if !ok {
		return 0, "", ErrUnauthenticated
	}
	typ, ok := claims["type"].(string)
	if !ok {
		return 0, "", ErrUnauthenticated
	}

	return uint(id), models.TokenType(typ), nil
}

func (s *Service) dropUserEntries(userID uint) {
	s.mu.Lock()
	for signed, entry := range s.cache {
		if entry.record.UserID == userID {
			delete(s.cache, signed)
		}
	}
	s.mu.Unlock()
}
