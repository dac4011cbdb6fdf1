package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/models"
)

func TestDeleteDepartmentDetachesAgents(t *testing.T) {
	db := testDB(t)
	svc := NewDepartmentService(db)

	dept := models.Department{Name: "Doomed"}
	require.NoError(t, svc.CreateDepartment(&dept))

	agent := seedAgent(t, db, dept.ID, 5)

	require.NoError(t, svc.DeleteDepartment(dept.ID))

	var got models.Agent
	require.NoError(t, db.First(&got, agent.ID).Error)
	assert.Nil(t, got.DepartmentID)

	_, err := svc.GetDepartment(dept.ID)
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestDepartmentValidation(t *testing.T) {
	svc := NewDepartmentService(testDB(t))
	assert.ErrorIs(t, svc.CreateDepartment(&models.Department{}), ErrDepartmentName)
	assert.ErrorIs(t, svc.DeleteDepartment(42), ErrDepartmentNotFound)
}
