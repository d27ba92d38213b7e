package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRolePredicates(t *testing.T) {
	assert.True(t, RoleAdmin.Administrative())
	assert.True(t, RoleDirector.Administrative())
	assert.True(t, RoleSecretary.Administrative())
	assert.False(t, RoleTeacher.Administrative())

	assert.True(t, RoleAdmin.CanManageGrades())
	assert.True(t, RoleTeacher.CanManageGrades())
	assert.False(t, RoleSecretary.CanManageGrades())
	assert.False(t, RoleParent.CanManageGrades())

	assert.True(t, RoleSecretary.CanViewReports())
	assert.False(t, RoleStudent.CanViewReports())
	assert.False(t, RoleParent.CanViewReports())
	assert.False(t, UserRole("BOGUS").CanViewReports())
}

func TestParseUserRole(t *testing.T) {
	assert.Equal(t, RoleTeacher, ParseUserRole("TEACHER", RoleStudent))
	assert.Equal(t, RoleTeacher, ParseUserRole("docente", RoleStudent))
	assert.Equal(t, RoleParent, ParseUserRole("Padre de familia", RoleStudent))
	assert.Equal(t, RoleStudent, ParseUserRole("???", RoleStudent))
}

func TestParsePaymentTypePredicates(t *testing.T) {
	assert.True(t, PaymentTypeTuition.Recurring())
	assert.True(t, PaymentTypeTransport.Recurring())
	assert.True(t, PaymentTypeCafeteria.Recurring())
	assert.False(t, PaymentTypeExam.Recurring())

	assert.True(t, PaymentTypeEnrollment.OneTime())
	assert.True(t, PaymentTypeIDCard.OneTime())
	assert.False(t, PaymentTypeTuition.OneTime())

	assert.Equal(t, PaymentTypeTuition, ParsePaymentType("Colegiatura", PaymentTypeOther))
	assert.Equal(t, PaymentTypeOther, ParsePaymentType("???", PaymentTypeOther))
}
