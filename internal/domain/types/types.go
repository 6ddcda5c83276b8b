package types

type ServiceMode string

// Route Service - accepts completed routes, anonymizes shared traces and serves the discovery feed
// Moderation Service - consumes stored routes, runs plausibility checks and feeds moderators
const (
	RouteService      ServiceMode = "route-service"
	ModerationService ServiceMode = "moderation-service"
)

// RouteType is the activity declared by the route owner.
type RouteType string

func (t RouteType) String() string {
	return string(t)
}

const (
	RouteWalking   RouteType = "walking"
	RouteRunning   RouteType = "running"
	RouteCycling   RouteType = "cycling"
	RouteCommuting RouteType = "commuting"
)

func (t RouteType) IsValid() bool {
	switch t {
	case RouteWalking, RouteRunning, RouteCycling, RouteCommuting:
		return true
	default:
		return false
	}
}

// SharingLevel controls whether and how a route is exposed to other users.
type SharingLevel string

func (s SharingLevel) String() string {
	return string(s)
}

const (
	SharingPrivate   SharingLevel = "private"
	SharingAnonymous SharingLevel = "anonymous"
	SharingPublic    SharingLevel = "public"
)

func (s SharingLevel) IsValid() bool {
	switch s {
	case SharingPrivate, SharingAnonymous, SharingPublic:
		return true
	default:
		return false
	}
}

// ReviewStatus of a stored route in the moderation pipeline
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewFlagged  ReviewStatus = "FLAGGED"
)

// Enum для роли пользователя
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleUser      UserRole = "USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
	RoleAnonymous UserRole = "ANONYMOUS"
)
