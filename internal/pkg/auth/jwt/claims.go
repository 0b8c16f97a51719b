package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued to a signed-in BookFinder user.
type Payload struct {
	// StandardClaims embeds Exp, Iat and Iss, which are checked on every parse.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the directory record id of the token holder.
	UserID string `json:"user_id"`

	// Email is informational; handlers always resolve the user through UserID.
	Email string `json:"email"`
}
