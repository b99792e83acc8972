// Package testutil monta um banco SQLite em memória com o schema da aplicação.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/booking-crm/internal/db"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

// NewDB abre um SQLite em memória com uma única conexão, o que serializa
// as transações concorrentes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func CreateCloser(t *testing.T, gdb *gorm.DB, username, tz string) *models.User {
	t.Helper()

	u := &models.User{
		Username:     username,
		Email:        username + "@closers.test",
		PasswordHash: "x",
		Role:         models.RoleCloser,
		Timezone:     tz,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateLead(t *testing.T, gdb *gorm.DB, email string) *models.User {
	t.Helper()

	u := &models.User{
		Username:     email,
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleLead,
	}
	require.NoError(t, gdb.Create(u).Error)
	require.NoError(t, gdb.Create(&models.LeadProfile{UserID: u.ID, Status: models.LeadStatusNew}).Error)
	return u
}

// FutureDate devolve a data UTC (YYYY-MM-DD) daqui a n dias.
func FutureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}
