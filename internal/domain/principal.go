package domain

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodJWT AuthMethod = "jwt"
	AuthMethodDev AuthMethod = "dev"
)

// Principal captures normalized caller identity independent of auth mechanism.
type Principal struct {
	ID         string
	AuthMethod AuthMethod
	Subject    string
	Issuer     string
	Email      string
	Name       string
}

// IsZero reports whether no identity was resolved for the request.
func (p Principal) IsZero() bool {
	return p.ID == ""
}
