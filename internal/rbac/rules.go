package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"candidate": {
		"exam:view",
		"session:create",
		"session:submit",
		"session:view-own",
	},
	"marker": {
		"exam:view",
		"session:view-all",
	},
	"admin": {
		"*", // everything
	},
}
