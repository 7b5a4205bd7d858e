package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Session{}, &ScanRun{}, &Hint{}))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "sessions", Session{}.TableName())
	assert.Equal(t, "scan_runs", ScanRun{}.TableName())
	assert.Equal(t, "hints", Hint{}.TableName())
}

func TestScanRunWithHints(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&Session{ID: "ses-1", ClientInfo: datatypes.JSON(`{"name":"cli"}`)}).Error)

	sessionID := "ses-1"
	run := ScanRun{
		ID:         "run-1",
		SessionID:  &sessionID,
		Root:       "/srv/app",
		Framework:  true,
		Digest:     "abc",
		FilesCount: 2,
		HintsCount: 2,
		Summary:    datatypes.JSON(`{"config":1,"debug":1}`),
		Hints: []Hint{
			{File: "app/A.php", Line: 3, Column: 9, Source: "config", Style: "special"},
			{File: "app/A.php", Line: 4, Column: 1, Source: "debug", Style: "underline"},
		},
	}
	require.NoError(t, db.Create(&run).Error)

	var loaded ScanRun
	require.NoError(t, db.Preload("Hints").First(&loaded, "id = ?", "run-1").Error)
	assert.Len(t, loaded.Hints, 2)
	assert.Equal(t, "/srv/app", loaded.Root)
	assert.False(t, loaded.CreatedAt.IsZero())
	assert.JSONEq(t, `{"config":1,"debug":1}`, string(loaded.Summary))

	var session Session
	require.NoError(t, db.Preload("Runs").First(&session, "id = ?", "ses-1").Error)
	assert.Len(t, session.Runs, 1)
	assert.Nil(t, session.EndedAt)
}

func TestScanRunRequiresRoot(t *testing.T) {
	db := setupTestDB(t)
	err := db.Exec("INSERT INTO scan_runs (id, root) VALUES (?, NULL)", "run-x").Error
	assert.Error(t, err)
}
