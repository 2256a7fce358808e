package ports

// Well-known keys in client storage
const (
	KeyIdentity = "imvc_user"
	KeyToken    = "token"
)

// ClientStorage is the small persisted key/value area that survives restarts
type ClientStorage interface {
	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Remove deletes every listed key in a single write. Missing keys are ignored.
	Remove(keys ...string) error
}

// TokenSource yields the bearer token to attach to backend calls; empty means none
type TokenSource interface {
	Token() string
}

// Navigator moves the active surface to a route
type Navigator interface {
	Navigate(route string)
}
