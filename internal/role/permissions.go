package role

// Permission predicates for moderation actions. Each capability is granted
// explicitly per role (or role pair) and fails closed for everything else.
// These are deliberately not rank comparisons: admin powers are scoped, e.g.
// an admin may mute a junior-admin but may only remove plain users.

// CanModerate reports whether actor may open the moderation surface at all.
func CanModerate(actor Role) bool {
	switch actor {
	case JuniorAdmin, Admin, SeniorAdmin, Creator:
		return true
	}
	return false
}

// CanChangeVideo reports whether actor may change the stream video source.
func CanChangeVideo(actor Role) bool {
	return actor == SeniorAdmin || actor == Creator
}

// CanRemoveUser reports whether actor may remove a user with the target
// role from the directory. Admins may only remove plain users.
func CanRemoveUser(actor, target Role) bool {
	switch actor {
	case Creator:
		return true
	case Admin:
		return target == User
	}
	return false
}

// CanChangeRole reports whether actor may reassign another user's role.
func CanChangeRole(actor Role) bool {
	return actor == Creator
}

// CanMute reports whether actor may revoke or restore the write privilege
// of a user with the target role. Each admin tier reaches strictly below
// itself; the creator reaches everyone.
func CanMute(actor, target Role) bool {
	switch actor {
	case Creator:
		return true
	case SeniorAdmin:
		return target == User || target == JuniorAdmin || target == Admin
	case Admin:
		return target == User || target == JuniorAdmin
	case JuniorAdmin:
		return target == User
	}
	return false
}

// CanDeleteMessage reports whether actor may delete a single chat message.
func CanDeleteMessage(actor Role) bool {
	return actor == Creator
}

// CanClearChat reports whether actor may clear the entire chat log.
func CanClearChat(actor Role) bool {
	return actor == Creator
}

// CanToggleChat reports whether actor may enable or disable the chat.
func CanToggleChat(actor Role) bool {
	return actor == Creator
}

// Capabilities returns a short human-readable list of what a role may do,
// for profile display.
func Capabilities(r Role) []string {
	var caps []string
	caps = append(caps, "Read chat and send messages")
	if CanModerate(r) {
		caps = append(caps, "Open the moderation panel")
	}
	switch r {
	case JuniorAdmin:
		caps = append(caps, "Mute users")
	case Admin:
		caps = append(caps, "Mute users and junior admins", "Remove users")
	case SeniorAdmin:
		caps = append(caps, "Mute users and admins", "Change the video source")
	case Creator:
		caps = append(caps,
			"Mute anyone",
			"Remove anyone",
			"Manage roles",
			"Delete messages and clear chat",
			"Enable or disable chat",
			"Change the video source")
	}
	return caps
}
