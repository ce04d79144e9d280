package services

import (
	"errors"
	"testing"
	"time"

	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&models.StaffAccount{}, &models.LoginAttempt{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, email, password, role string) models.StaffAccount {
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	account := models.StaffAccount{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	return account
}

func TestLoginAdminDispatch(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "admin@cafe.local", "correct horse", "admin")

	result, err := service.Login("admin@cafe.local", "correct horse")
	assert.NoError(t, err)
	assert.Equal(t, "admin", result.Role)
	assert.Equal(t, "/admin", result.Redirect)
	assert.NotEmpty(t, result.Token)
}

func TestLoginStaffDispatch(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "staff@cafe.local", "correct horse", "staff")

	result, err := service.Login("staff@cafe.local", "correct horse")
	assert.NoError(t, err)
	assert.Equal(t, "staff", result.Role)
	assert.Equal(t, "/queue", result.Redirect)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "staff@cafe.local", "correct horse", "staff")

	_, err := service.Login("staff@cafe.local", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = service.Login("nobody@cafe.local", "whatever")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = service.Login("", "")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "admin@cafe.local", "correct horse", "admin")

	// Four failures: still allowed to try.
	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, err := service.Login("admin@cafe.local", "wrong")
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	}

	status, err := service.IsLocked("admin@cafe.local", models.AttemptTypeAdmin)
	assert.NoError(t, err)
	assert.False(t, status.Locked)
	assert.Equal(t, MaxFailedAttempts-1, status.FailedCount)

	result, err := service.Login("admin@cafe.local", "correct horse")
	assert.NoError(t, err, "four failures must not lock the account")
	assert.NotEmpty(t, result.Token)

	// A success does not clear prior failures; the fifth locks.
	_, err = service.Login("admin@cafe.local", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	status, err = service.IsLocked("admin@cafe.local", models.AttemptTypeAdmin)
	assert.NoError(t, err)
	assert.True(t, status.Locked)
	assert.Equal(t, MaxFailedAttempts, status.FailedCount)

	_, err = service.Login("admin@cafe.local", "correct horse")
	assert.True(t, errors.Is(err, ErrLocked), "correct password is rejected while locked")
}

func TestLockoutFailuresAgeOut(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "staff@cafe.local", "correct horse", "staff")

	// Five old failures outside the window.
	stale := time.Now().Add(-LockoutWindow - time.Minute)
	for i := 0; i < MaxFailedAttempts; i++ {
		attempt := models.LoginAttempt{
			Email:       "staff@cafe.local",
			Success:     false,
			AttemptType: models.AttemptTypeStaff,
			CreatedAt:   stale,
		}
		assert.NoError(t, db.Create(&attempt).Error)
	}

	status, err := service.IsLocked("staff@cafe.local", models.AttemptTypeStaff)
	assert.NoError(t, err)
	assert.False(t, status.Locked, "failures outside the window must not count")
	assert.Equal(t, 0, status.FailedCount)

	_, err = service.Login("staff@cafe.local", "correct horse")
	assert.NoError(t, err)
}

func TestLockoutPathsAreIndependent(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "admin@cafe.local", "correct horse", "admin")

	// Drive the admin path directly.
	for i := 0; i < MaxFailedAttempts; i++ {
		assert.NoError(t, service.RecordAttempt("admin@cafe.local", false, models.AttemptTypeAdmin, nil))
	}

	admin, err := service.IsLocked("admin@cafe.local", models.AttemptTypeAdmin)
	assert.NoError(t, err)
	assert.True(t, admin.Locked)

	staff, err := service.IsLocked("admin@cafe.local", models.AttemptTypeStaff)
	assert.NoError(t, err)
	assert.False(t, staff.Locked, "locking the admin path must not lock the staff path")
}

func TestRepeatedStaffLoginsDoNotLock(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")
	seedAccount(t, db, "staff@cafe.local", "correct horse", "staff")

	// The admin path is walked first on every dispatch; with no admin
	// account for this email it must fall through without accruing
	// failures, so valid staff logins keep working indefinitely.
	for i := 0; i < MaxFailedAttempts+1; i++ {
		result, err := service.Login("staff@cafe.local", "correct horse")
		assert.NoError(t, err, "valid staff login %d rejected", i+1)
		assert.Equal(t, "/queue", result.Redirect)
	}

	admin, err := service.IsLocked("staff@cafe.local", models.AttemptTypeAdmin)
	assert.NoError(t, err)
	assert.False(t, admin.Locked)
	assert.Equal(t, 0, admin.FailedCount, "dispatch through the admin path must not record failures")

	// Wrong passwords land on the staff path only.
	_, err = service.Login("staff@cafe.local", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	staff, err := service.IsLocked("staff@cafe.local", models.AttemptTypeStaff)
	assert.NoError(t, err)
	assert.Equal(t, 1, staff.FailedCount)

	admin, err = service.IsLocked("staff@cafe.local", models.AttemptTypeAdmin)
	assert.NoError(t, err)
	assert.Equal(t, 0, admin.FailedCount)
}

func TestRecordAttemptAppendOnly(t *testing.T) {
	db := setupAuthTestDB(t)
	service := InitAuthService(db, "test-secret")

	msg := "wrong password"
	assert.NoError(t, service.RecordAttempt("a@b.c", false, models.AttemptTypeStaff, &msg))
	assert.NoError(t, service.RecordAttempt("a@b.c", true, models.AttemptTypeStaff, nil))

	var count int64
	assert.NoError(t, db.Model(&models.LoginAttempt{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
