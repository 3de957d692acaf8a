package database

import (
	"testing"

	"dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestOpenMigratesSchema(t *testing.T) {
	db, err := Open(sqlite.Open("file:database_test?mode=memory&cache=shared"))
	require.NoError(t, err)

	for _, table := range []interface{}{
		&model.User{},
		&model.PurchaseRequest{},
		&model.Notification{},
		&model.Document{},
		&model.Achievement{},
		&model.AuditLog{},
	} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestNewConnectionRejectsUnknownDriver(t *testing.T) {
	_, err := NewConnection("oracle", "whatever")
	assert.Error(t, err)
}
