package controllers_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
)

func TestStudentCreateWithUserLink(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Create Block", "CB")
	floor := seedFloor(t, db, hostel.ID, 1)
	room := seedRoom(t, db, hostel.ID, floor.ID, "101", 2)

	warden := newActor(t, db, "CreateWarden")
	bindRole(t, db, warden.User.ID, models.RoleWarden, &hostel.ID)
	resident := newActor(t, db, "ResidentUser")

	w := doRequest(r, http.MethodPost, hostelPath(hostel.ID, "/students"), warden.Token, map[string]interface{}{
		"full_name": "Priya Nair",
		"phone":     "555-0101",
		"user_id":   resident.User.ID,
		"room_id":   room.ID,
	})
	requireStatus(t, w, http.StatusCreated)

	var student models.Student
	decodeData(t, w, &student)
	assert.True(t, strings.HasPrefix(student.RegNumber, "REG-"), "reg number %q", student.RegNumber)
	require.NotNil(t, student.RoomID)
	assert.Equal(t, room.ID, *student.RoomID)

	// The linked account received a student binding for this hostel.
	var binding models.UserRole
	require.NoError(t, db.Where("user_id = ? AND hostel_id = ?", resident.User.ID, hostel.ID).First(&binding).Error)
	assert.Equal(t, models.RoleStudent, binding.Role)

	// The same user cannot get a second active profile here.
	w = doRequest(r, http.MethodPost, hostelPath(hostel.ID, "/students"), warden.Token, map[string]interface{}{
		"full_name": "Priya Duplicate",
		"user_id":   resident.User.ID,
	})
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")
}

func TestStudentCreateRollsBackWhenBindingLookupFails(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Fault Block", "FB")

	warden := newActor(t, db, "FaultWarden")
	bindRole(t, db, warden.User.ID, models.RoleWarden, &hostel.ID)
	resident := newActor(t, db, "FaultResident")

	// Break the role lookup for the linked account only; the warden's own
	// tenant checks keep working.
	lookupErr := errors.New("user_roles lookup unavailable")
	faulty := true
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("faulty_binding_lookup", func(tx *gorm.DB) {
		if !faulty {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.UserRole); !ok {
			return
		}
		for _, v := range tx.Statement.Vars {
			if id, ok := v.(uint); ok && id == resident.User.ID {
				_ = tx.AddError(lookupErr)
				return
			}
		}
	}))

	w := doRequest(r, http.MethodPost, hostelPath(hostel.ID, "/students"), warden.Token, map[string]interface{}{
		"full_name": "Never Committed",
		"user_id":   resident.User.ID,
	})
	requireErrorCode(t, w, http.StatusInternalServerError, "INTERNAL_500")
	faulty = false

	// The whole transaction rolled back: no orphan profile, no binding.
	var students int64
	require.NoError(t, db.Model(&models.Student{}).Where("hostel_id = ?", hostel.ID).Count(&students).Error)
	assert.Zero(t, students)

	var bindings int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", resident.User.ID).Count(&bindings).Error)
	assert.Zero(t, bindings)
}

func TestAllocationEnforcesCapacity(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Capacity Block", "CAP")
	floor := seedFloor(t, db, hostel.ID, 1)
	room := seedRoom(t, db, hostel.ID, floor.ID, "201", 2)

	warden := newActor(t, db, "CapWarden")
	bindRole(t, db, warden.User.ID, models.RoleWarden, &hostel.ID)

	first := seedStudent(t, db, hostel.ID, nil, "First")
	second := seedStudent(t, db, hostel.ID, nil, "Second")
	third := seedStudent(t, db, hostel.ID, nil, "Third")

	allocate := func(studentID uint) *httptest.ResponseRecorder {
		return doRequest(r, http.MethodPost,
			hostelPath(hostel.ID, fmt.Sprintf("/students/%d/allocate", studentID)),
			warden.Token, map[string]interface{}{"room_id": room.ID})
	}

	requireStatus(t, allocate(first.ID), http.StatusOK)
	requireStatus(t, allocate(second.ID), http.StatusOK)

	// The room is now full: status derived, third bed refused.
	var refreshed models.Room
	require.NoError(t, db.First(&refreshed, room.ID).Error)
	assert.Equal(t, models.RoomFull, refreshed.Status)

	requireErrorCode(t, allocate(third.ID), http.StatusConflict, "CONFLICT_409")

	// Checkout frees the bed and the status flips back.
	w := doRequest(r, http.MethodPost,
		hostelPath(hostel.ID, fmt.Sprintf("/students/%d/checkout", first.ID)),
		warden.Token, nil)
	requireStatus(t, w, http.StatusOK)

	require.NoError(t, db.First(&refreshed, room.ID).Error)
	assert.Equal(t, models.RoomAvailable, refreshed.Status)

	var checkedOut models.Student
	require.NoError(t, db.First(&checkedOut, first.ID).Error)
	assert.Equal(t, models.StudentCheckedOut, checkedOut.Status)
	assert.Nil(t, checkedOut.RoomID)

	// Now the third student fits.
	requireStatus(t, allocate(third.ID), http.StatusOK)

	// Checked-out students cannot come back through allocate.
	requireErrorCode(t, allocate(first.ID), http.StatusConflict, "CONFLICT_409")
}

func TestAllocationRejectsMaintenanceRooms(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Maint Block", "MB")
	floor := seedFloor(t, db, hostel.ID, 1)
	room := seedRoom(t, db, hostel.ID, floor.ID, "301", 2)
	require.NoError(t, db.Model(&room).Update("status", models.RoomMaintenance).Error)

	warden := newActor(t, db, "MaintWarden")
	bindRole(t, db, warden.User.ID, models.RoleWarden, &hostel.ID)
	student := seedStudent(t, db, hostel.ID, nil, "Waiting")

	w := doRequest(r, http.MethodPost,
		hostelPath(hostel.ID, fmt.Sprintf("/students/%d/allocate", student.ID)),
		warden.Token, map[string]interface{}{"room_id": room.ID})
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")
}

func TestStudentDeleteRequiresCheckout(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Delete Block", "DB")
	floor := seedFloor(t, db, hostel.ID, 1)
	room := seedRoom(t, db, hostel.ID, floor.ID, "401", 1)

	warden := newActor(t, db, "DeleteWarden")
	bindRole(t, db, warden.User.ID, models.RoleWarden, &hostel.ID)

	housed := seedStudent(t, db, hostel.ID, &room.ID, "Housed")

	w := doRequest(r, http.MethodDelete,
		hostelPath(hostel.ID, fmt.Sprintf("/students/%d", housed.ID)), warden.Token, nil)
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")

	w = doRequest(r, http.MethodPost,
		hostelPath(hostel.ID, fmt.Sprintf("/students/%d/checkout", housed.ID)), warden.Token, nil)
	requireStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodDelete,
		hostelPath(hostel.ID, fmt.Sprintf("/students/%d", housed.ID)), warden.Token, nil)
	requireStatus(t, w, http.StatusOK)
}

func TestStudentRoutesRequireStaff(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Staff Block", "STB")
	studentActor := newActor(t, db, "JustStudent")
	bindRole(t, db, studentActor.User.ID, models.RoleStudent, &hostel.ID)
	cleaner := newActor(t, db, "JustCleaner")
	bindRole(t, db, cleaner.User.ID, models.RoleCleaner, &hostel.ID)

	// Students see neither the roster nor individual records.
	w := doRequest(r, http.MethodGet, hostelPath(hostel.ID, "/students"), studentActor.Token, nil)
	requireErrorCode(t, w, http.StatusForbidden, "RBAC_403")

	// Cleaners can read the roster but not change it.
	w = doRequest(r, http.MethodGet, hostelPath(hostel.ID, "/students"), cleaner.Token, nil)
	requireStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodPost, hostelPath(hostel.ID, "/students"), cleaner.Token, map[string]interface{}{
		"full_name": "Not Allowed",
	})
	requireErrorCode(t, w, http.StatusForbidden, "RBAC_403")
}
