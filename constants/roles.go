package constants

// Project roles.
const (
	ProjectRoleAdmin     = "admin"
	ProjectRoleModerator = "moderator"
	ProjectRoleWorker    = "worker"
	ProjectRoleInvited   = "invited"
	ProjectRoleKicked    = "kicked"
)

// Task roles.
const (
	TaskRoleCreator  = "creator"
	TaskRoleAssigned = "assigned"
)
