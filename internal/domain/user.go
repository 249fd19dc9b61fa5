package domain

// User is an authenticated visitor, created implicitly on first verified
// access. The net ID is the campus-wide identity key.
type User struct {
	NetID string `db:"net_id" json:"net_id"`
}
