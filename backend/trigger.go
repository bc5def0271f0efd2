package backend

// Blocking trigger event types. Each event family has two naming-scheme
// variants; both address the same trigger slot on the remote config.
const (
	// EventBeforeCreateV1 fires before a user account is created (v1 name).
	EventBeforeCreateV1 = "providers/cloud.auth/eventTypes/user.beforeCreate"

	// EventBeforeSignInV1 fires before a user signs in (v1 name).
	EventBeforeSignInV1 = "providers/cloud.auth/eventTypes/user.beforeSignIn"

	// EventBeforeCreateV2 fires before a user account is created (v2 name).
	EventBeforeCreateV2 = "google.cloud.identitytoolkit.user.v2.beforeCreate"

	// EventBeforeSignInV2 fires before a user signs in (v2 name).
	EventBeforeSignInV2 = "google.cloud.identitytoolkit.user.v2.beforeSignIn"
)

// Family collapses the v1/v2 naming variants of a blocking event type.
type Family int

// Recognized event type families.
const (
	FamilyUnknown Family = iota
	FamilyBeforeCreate
	FamilyBeforeSignIn
)

// String returns the family name for logs and error messages.
func (f Family) String() string {
	switch f {
	case FamilyBeforeCreate:
		return "beforeCreate"
	case FamilyBeforeSignIn:
		return "beforeSignIn"
	default:
		return "unknown"
	}
}

// Classify maps an event type string onto its family. Event types outside
// the closed set of blocking events classify as FamilyUnknown.
func Classify(eventType string) Family {
	switch eventType {
	case EventBeforeCreateV1, EventBeforeCreateV2:
		return FamilyBeforeCreate
	case EventBeforeSignInV1, EventBeforeSignInV2:
		return FamilyBeforeSignIn
	default:
		return FamilyUnknown
	}
}
