package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, Name TEXT, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["name"])
	assert.Equal(t, "text", colMap["description"])

	// PRAGMA table_info returns no rows for a table that does not exist.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "VARCHAR(36)", "NO", "PRI", nil, "").
		AddRow("external_id", "varchar(64)", "NO", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `customers`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "customers")
	require.NoError(t, err)
	assert.Equal(t, []ColumnInfo{
		{Field: "id", Type: "varchar(36)"},
		{Field: "external_id", Type: "varchar(64)"},
	}, columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE orders (id TEXT, tenant_id TEXT)").Error)

	missing, err := MissingColumns(db, "orders", []string{"id", "tenant_id", "external_id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"external_id"}, missing)
}
