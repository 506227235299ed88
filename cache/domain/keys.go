package domain

// Cache keys for per-user data are "<kind>:<userID>", so a user-scoped sweep can
// find them by the user identifier in every namespace.
const (
	KindSubscription = "subscription"
	KindStorage      = "storage"
	KindProfile      = "profile"
)

func UserKey(kind, userID string) string { return kind + ":" + userID }

func SubscriptionKey(userID string) string { return UserKey(KindSubscription, userID) }
func StorageKey(userID string) string      { return UserKey(KindStorage, userID) }
func ProfileKey(userID string) string      { return UserKey(KindProfile, userID) }
