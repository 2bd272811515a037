package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestRoleFindByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "hierarchy_level", "can_manage_hierarchy", "max_hierarchy_depth", "created_at", "updated_at"}).
		AddRow(1, "teacher", 5, false, 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, hierarchy_level, can_manage_hierarchy, max_hierarchy_depth, created_at, updated_at FROM roles WHERE name = LOWER($1) LIMIT 1")).
		WithArgs("Teacher").
		WillReturnRows(rows)

	role, err := repo.FindByName(context.Background(), "Teacher")
	require.NoError(t, err)
	assert.Equal(t, "teacher", role.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleFindByNameMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery("SELECT id, name").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByName(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery("INSERT INTO roles").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created := &models.Role{Name: "supervisor", HierarchyLevel: 3}
	err := repo.Create(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec("DELETE FROM roles").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCountUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role = LOWER($1)")).
		WithArgs("teacher").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountUsers(context.Background(), "teacher")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
