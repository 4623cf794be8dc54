package domain

import "time"

// AccessToken is a tenant access token together with the endpoint it is valid for
type AccessToken struct {
	Value     string
	Domain    string
	AppID     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used at now
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}
