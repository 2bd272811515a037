package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

func TestGetUserAssignment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHierarchyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "role", "school_id", "district_id", "province_id", "zone_id"}).
		AddRow("u1", "director", nil, nil, nil, 4)
	mock.ExpectQuery("SELECT id, role, school_id, district_id, province_id, zone_id FROM users").
		WithArgs("u1").
		WillReturnRows(rows)

	assignment, err := repo.GetUserAssignment(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "director", assignment.Role)
	require.NotNil(t, assignment.ZoneID)
	assert.Equal(t, int64(4), *assignment.ZoneID)
	assert.Nil(t, assignment.SchoolID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserAssignmentMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHierarchyRepository(db)

	mock.ExpectQuery("SELECT id, role").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserAssignment(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRegionSchoolIDsMatchesAnyLevel(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHierarchyRepository(db)

	zone := int64(4)
	rows := sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11).AddRow(12)
	mock.ExpectQuery("SELECT id FROM schools").
		WithArgs(nil, nil, nil, int64(4)).
		WillReturnRows(rows)

	ids, err := repo.ListRegionSchoolIDs(context.Background(), &models.UserAssignment{ZoneID: &zone})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSchoolClassIDsEmptyInput(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewHierarchyRepository(db)

	ids, err := repo.ListSchoolClassIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestListActiveTeacherClassIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHierarchyRepository(db)

	rows := sqlmock.NewRows([]string{"class_id"}).AddRow(42).AddRow(43)
	mock.ExpectQuery("SELECT class_id FROM teacher_classes").
		WithArgs("u3").
		WillReturnRows(rows)

	ids, err := repo.ListActiveTeacherClassIDs(context.Background(), "u3")
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 43}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
