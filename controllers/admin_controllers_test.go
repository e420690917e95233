package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelhq/hostel-app/models"
)

func TestAssignAndRevokeRoles(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Role Block", "ROLE")
	admin := newActor(t, db, "RoleAdmin")
	bindRole(t, db, admin.User.ID, models.RoleAdmin, nil)
	target := newActor(t, db, "RoleTarget")

	// Admin bindings must not mention a hostel.
	w := doRequest(r, http.MethodPost, "/api/admin/user-roles", admin.Token, map[string]interface{}{
		"user_id":   target.User.ID,
		"role":      models.RoleAdmin,
		"hostel_id": hostel.ID,
	})
	requireErrorCode(t, w, http.StatusBadRequest, "VAL_400")

	// Non-admin roles must.
	w = doRequest(r, http.MethodPost, "/api/admin/user-roles", admin.Token, map[string]interface{}{
		"user_id": target.User.ID,
		"role":    models.RoleCleaner,
	})
	requireErrorCode(t, w, http.StatusBadRequest, "VAL_400")

	// Unknown roles are refused by the binding tag.
	w = doRequest(r, http.MethodPost, "/api/admin/user-roles", admin.Token, map[string]interface{}{
		"user_id":   target.User.ID,
		"role":      "janitor",
		"hostel_id": hostel.ID,
	})
	requireErrorCode(t, w, http.StatusBadRequest, "VAL_400")

	w = doRequest(r, http.MethodPost, "/api/admin/user-roles", admin.Token, map[string]interface{}{
		"user_id":   target.User.ID,
		"role":      models.RoleCleaner,
		"hostel_id": hostel.ID,
	})
	requireStatus(t, w, http.StatusCreated)

	var binding models.UserRole
	decodeData(t, w, &binding)

	// One binding per user per hostel.
	w = doRequest(r, http.MethodPost, "/api/admin/user-roles", admin.Token, map[string]interface{}{
		"user_id":   target.User.ID,
		"role":      models.RoleStudent,
		"hostel_id": hostel.ID,
	})
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")

	// The binding works immediately: the cleaner can open the hostel.
	w = doRequest(r, http.MethodGet, hostelPath(hostel.ID, ""), target.Token, nil)
	requireStatus(t, w, http.StatusOK)

	// And revocation cuts access just as immediately.
	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/user-roles/%d", binding.ID), admin.Token, nil)
	requireStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodGet, hostelPath(hostel.ID, ""), target.Token, nil)
	requireErrorCode(t, w, http.StatusForbidden, "TENANT_403")

	// Admins cannot revoke their own admin binding.
	var own models.UserRole
	require.NoError(t, db.Where("user_id = ? AND role = ?", admin.User.ID, models.RoleAdmin).First(&own).Error)

	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/user-roles/%d", own.ID), admin.Token, nil)
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")
}

func TestAssignWardenCreatesProfile(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Warden Block", "WRD")
	admin := newActor(t, db, "WardenAdmin")
	bindRole(t, db, admin.User.ID, models.RoleAdmin, nil)
	appointee := newActor(t, db, "Appointee")

	w := doRequest(r, http.MethodPost,
		fmt.Sprintf("/api/admin/hostels/%d/wardens", hostel.ID), admin.Token, map[string]interface{}{
			"user_id":   appointee.User.ID,
			"full_name": "Dev Appointee",
			"phone":     "555-0199",
		})
	requireStatus(t, w, http.StatusCreated)

	var profile models.Warden
	decodeData(t, w, &profile)
	assert.Equal(t, hostel.ID, profile.HostelID)

	var binding models.UserRole
	require.NoError(t, db.Where("user_id = ? AND hostel_id = ?", appointee.User.ID, hostel.ID).First(&binding).Error)
	assert.Equal(t, models.RoleWarden, binding.Role)

	// Appointing twice conflicts.
	w = doRequest(r, http.MethodPost,
		fmt.Sprintf("/api/admin/hostels/%d/wardens", hostel.ID), admin.Token, map[string]interface{}{
			"user_id":   appointee.User.ID,
			"full_name": "Dev Appointee",
		})
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")

	// The new warden immediately wields warden powers.
	w = doRequest(r, http.MethodPost, hostelPath(hostel.ID, "/floors"), appointee.Token, map[string]interface{}{
		"number": 1,
	})
	requireStatus(t, w, http.StatusCreated)

	// Members can see who runs their hostel.
	member := newActor(t, db, "WardenMember")
	bindRole(t, db, member.User.ID, models.RoleStudent, &hostel.ID)

	w = doRequest(r, http.MethodGet, hostelPath(hostel.ID, "/wardens"), member.Token, nil)
	requireStatus(t, w, http.StatusOK)
	var wardens []models.Warden
	decodeData(t, w, &wardens)
	require.Len(t, wardens, 1)
	assert.Equal(t, "Dev Appointee", wardens[0].FullName)
}

func TestRevokeWardenRetiresProfile(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Retire Block", "RET")
	admin := newActor(t, db, "RetireAdmin")
	bindRole(t, db, admin.User.ID, models.RoleAdmin, nil)
	appointee := newActor(t, db, "RetireWarden")

	w := doRequest(r, http.MethodPost,
		fmt.Sprintf("/api/admin/hostels/%d/wardens", hostel.ID), admin.Token, map[string]interface{}{
			"user_id":   appointee.User.ID,
			"full_name": "Former Warden",
		})
	requireStatus(t, w, http.StatusCreated)

	var binding models.UserRole
	require.NoError(t, db.Where("user_id = ? AND hostel_id = ?", appointee.User.ID, hostel.ID).First(&binding).Error)

	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/user-roles/%d", binding.ID), admin.Token, nil)
	requireStatus(t, w, http.StatusOK)

	// The staff listing tracks live bindings: no ghost warden.
	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/admin/hostels/%d/wardens", hostel.ID), admin.Token, nil)
	requireStatus(t, w, http.StatusOK)
	var wardens []models.Warden
	decodeData(t, w, &wardens)
	assert.Empty(t, wardens)

	var profiles int64
	require.NoError(t, db.Model(&models.Warden{}).
		Where("hostel_id = ? AND user_id = ?", hostel.ID, appointee.User.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)

	// And the ex-warden's powers went with it.
	w = doRequest(r, http.MethodPost, hostelPath(hostel.ID, "/floors"), appointee.Token, map[string]interface{}{
		"number": 1,
	})
	requireErrorCode(t, w, http.StatusForbidden, "TENANT_403")
}

func TestAuditTrail(t *testing.T) {
	db, r := setupApp(t)

	hostelA := seedHostel(t, db, "Audit A", "AUA")
	hostelB := seedHostel(t, db, "Audit B", "AUB")

	admin := newActor(t, db, "AuditAdmin")
	bindRole(t, db, admin.User.ID, models.RoleAdmin, nil)
	wardenA := newActor(t, db, "AuditWardenA")
	bindRole(t, db, wardenA.User.ID, models.RoleWarden, &hostelA.ID)

	// Generate some events in both hostels.
	w := doRequest(r, http.MethodPost, hostelPath(hostelA.ID, "/floors"), wardenA.Token, map[string]interface{}{
		"number": 1,
	})
	requireStatus(t, w, http.StatusCreated)

	w = doRequest(r, http.MethodPost, hostelPath(hostelB.ID, "/floors"), admin.Token, map[string]interface{}{
		"number": 1,
	})
	requireStatus(t, w, http.StatusCreated)

	// The platform trail sees both.
	w = doRequest(r, http.MethodGet, "/api/admin/audit-logs", admin.Token, nil)
	requireStatus(t, w, http.StatusOK)

	var page struct {
		Total int64             `json:"total"`
		Logs  []models.AuditLog `json:"logs"`
	}
	decodeData(t, w, &page)
	assert.Equal(t, int64(2), page.Total)

	// Filtering by action narrows it.
	w = doRequest(r, http.MethodGet, "/api/admin/audit-logs?action=floor.create&hostel_id="+fmt.Sprint(hostelA.ID), admin.Token, nil)
	requireStatus(t, w, http.StatusOK)
	decodeData(t, w, &page)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, wardenA.User.ID, page.Logs[0].ActorID)
	assert.Equal(t, "floor.create", page.Logs[0].Action)
	assert.NotEmpty(t, page.Logs[0].RequestID)

	// Bad time filters refuse.
	w = doRequest(r, http.MethodGet, "/api/admin/audit-logs?since=yesterday", admin.Token, nil)
	requireErrorCode(t, w, http.StatusBadRequest, "VAL_400")

	// A warden reads their own hostel's trail.
	w = doRequest(r, http.MethodGet, hostelPath(hostelA.ID, "/audit-logs"), wardenA.Token, nil)
	requireStatus(t, w, http.StatusOK)
	decodeData(t, w, &page)
	require.Equal(t, int64(1), page.Total)

	// But not the platform one.
	w = doRequest(r, http.MethodGet, "/api/admin/audit-logs", wardenA.Token, nil)
	requireErrorCode(t, w, http.StatusForbidden, "RBAC_403")
}

func TestAdminStats(t *testing.T) {
	db, r := setupApp(t)

	admin := newActor(t, db, "StatsAdmin")
	bindRole(t, db, admin.User.ID, models.RoleAdmin, nil)

	hostel := seedHostel(t, db, "Stat Hostel", "STH")
	floor := seedFloor(t, db, hostel.ID, 1)
	room := seedRoom(t, db, hostel.ID, floor.ID, "101", 4)
	seedStudent(t, db, hostel.ID, &room.ID, "Counted")

	w := doRequest(r, http.MethodGet, "/api/admin/stats", admin.Token, nil)
	requireStatus(t, w, http.StatusOK)

	var stats struct {
		Hostels        int64 `json:"hostels"`
		ActiveStudents int64 `json:"active_students"`
		Rooms          int64 `json:"rooms"`
		Occupancy      []struct {
			HostelID uint  `json:"hostel_id"`
			Capacity int64 `json:"capacity"`
			Occupied int64 `json:"occupied"`
		} `json:"occupancy"`
	}
	decodeData(t, w, &stats)
	assert.Equal(t, int64(1), stats.Hostels)
	assert.Equal(t, int64(1), stats.ActiveStudents)
	assert.Equal(t, int64(1), stats.Rooms)
	require.Len(t, stats.Occupancy, 1)
	assert.Equal(t, hostel.ID, stats.Occupancy[0].HostelID)
	assert.Equal(t, int64(4), stats.Occupancy[0].Capacity)
	assert.Equal(t, int64(1), stats.Occupancy[0].Occupied)
}

func TestFindUsers(t *testing.T) {
	db, r := setupApp(t)

	admin := newActor(t, db, "FindAdmin")
	bindRole(t, db, admin.User.ID, models.RoleAdmin, nil)
	newActor(t, db, "Findable")

	w := doRequest(r, http.MethodGet, "/api/admin/users?email=findable", admin.Token, nil)
	requireStatus(t, w, http.StatusOK)

	var users []map[string]interface{}
	decodeData(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "Findable", users[0]["name"])

	// Password hashes never leave the API.
	_, leaked := users[0]["password"]
	assert.False(t, leaked)
}
