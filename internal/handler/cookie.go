package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionPayload is the JSON document carried inside the session cookie.
type SessionPayload struct {
	Token string `json:"t"`
	Role  string `json:"r"`
}

// SessionCookie writes and reads the base64-encoded session cookie. The
// cookie is HttpOnly and SameSite=Lax; Secure is set in production.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Write sets the session cookie on the response.
func (sc SessionCookie) Write(c *gin.Context, token, role string) error {
	payload, err := json.Marshal(SessionPayload{Token: token, Role: role})
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, base64.StdEncoding.EncodeToString(payload), int(sc.TTL.Seconds()), "/", "", sc.Secure, true)

	return nil
}

// Clear expires the session cookie immediately.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// Read decodes the session cookie from the request.
func (sc SessionCookie) Read(c *gin.Context) (*SessionPayload, error) {
	raw, err := c.Cookie(sc.Name)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session cookie: %w", err)
	}

	payload := &SessionPayload{}
	if err := json.Unmarshal(decoded, payload); err != nil {
		return nil, fmt.Errorf("failed to parse session cookie: %w", err)
	}

	return payload, nil
}
