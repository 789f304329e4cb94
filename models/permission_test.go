package models

import "testing"

func TestRolePermissions(t *testing.T) {
	owner := ShopAdmin{Role: RoleOwner}
	for _, p := range RolePermissions[RoleOwner] {
		if !owner.Role.HasPermission(p) {
			t.Errorf("owner missing %s", p)
		}
	}

	staff := ShopAdmin{Role: RoleStaff}
	if staff.Role.HasPermission(PermManageAdmins) {
		t.Error("staff should not manage admins")
	}
	if staff.Role.HasPermission(PermViewFinances) {
		t.Error("staff should not view finances")
	}
	if !staff.Role.HasPermission(PermManageAppointments) {
		t.Error("staff should manage appointments")
	}

	manager := ShopAdmin{Role: RoleManager}
	if manager.Role.HasPermission(PermManageAdmins) {
		t.Error("manager should not manage admins")
	}
	if !manager.Role.HasPermission(PermManageServices) {
		t.Error("manager should manage services")
	}
}

func TestShopRoleValid(t *testing.T) {
	for _, r := range []ShopRole{RoleOwner, RoleManager, RoleStaff} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if ShopRole("janitor").Valid() {
		t.Error("unknown role accepted")
	}
}
