package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttendanceStatus(t *testing.T) {
	assert.Equal(t, AttendancePresent, ParseAttendanceStatus("PRESENTE"))
	assert.Equal(t, AttendanceLate, ParseAttendanceStatus("Retardo"))
	assert.Equal(t, AttendanceExcused, ParseAttendanceStatus("justificado"))
}

func TestParseAttendanceStatusDefaultsToAbsent(t *testing.T) {
	// Unresolvable legacy values fall back to absent instead of failing.
	assert.Equal(t, AttendanceAbsent, ParseAttendanceStatus(""))
	assert.Equal(t, AttendanceAbsent, ParseAttendanceStatus("???"))
}

func TestResolveAttendanceStatusStrict(t *testing.T) {
	status, ok := ResolveAttendanceStatus("Presente")
	require.True(t, ok)
	assert.Equal(t, AttendancePresent, status)

	_, ok = ResolveAttendanceStatus("???")
	require.False(t, ok)
}
