package aware

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the best-effort profile of the logged-in user, derived by decoding
// the access token's embedded claims. The token is parsed, never verified,
// client-side-- this is a display convenience, not an authorization decision.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// userFromAccessToken decodes the access token's claims into a User. When the
// token cannot be parsed or a claim is missing, it degrades field by field
// rather than failing: the session is already established by the time this
// runs.
func userFromAccessToken(accessToken, userID string) User {
	user := User{
		ID:        userID,
		Username:  "User",
		Name:      "User",
		CreatedAt: time.Now(),
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return user
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	metadata, _ := claims["user_metadata"].(map[string]interface{})
	if username, ok := metadata["username"].(string); ok && username != "" {
		user.Username = username
	} else if user.Email != "" {
		user.Username = strings.SplitN(user.Email, "@", 2)[0]
	}
	if name, ok := metadata["name"].(string); ok && name != "" {
		user.Name = name
	}
	return user
}
