// Package flash provides one-time notices carried in a cookie across a
// redirect and shown on the next rendered page.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CookieName is the cookie holding pending notices.
const CookieName = "lmp_flash"

// maxNotices bounds the cookie size when notices pile up unread.
const maxNotices = 5

// Kind classifies notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Notice is one message.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Store reads and writes the flash cookie.
type Store struct {
	Secure bool
}

// Add queues a notice for the next page render, after any notices already
// pending on the request.
func (s Store) Add(c echo.Context, kind Kind, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	var pending []Notice
	if v, ok := c.Get(pendingKey).([]Notice); ok {
		pending = v
	} else if cookie, err := c.Cookie(CookieName); err == nil {
		pending = decode(cookie.Value)
	}
	pending = append(pending, Notice{Kind: normalizeKind(kind), Message: message})
	if len(pending) > maxNotices {
		pending = pending[len(pending)-maxNotices:]
	}
	c.Set(pendingKey, pending)

	payload, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending notices and clears the cookie.
func (s Store) Pop(c echo.Context) []Notice {
	var notices []Notice
	if v, ok := c.Get(pendingKey).([]Notice); ok {
		notices = v
		c.Set(pendingKey, []Notice(nil))
	} else if cookie, err := c.Cookie(CookieName); err == nil {
		notices = decode(cookie.Value)
	} else {
		return nil
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return notices
}

const pendingKey = "flash.pending"

func decode(raw string) []Notice {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var notices []Notice
	if err := json.Unmarshal(decoded, &notices); err != nil {
		return nil
	}
	out := notices[:0]
	for _, n := range notices {
		n.Message = strings.TrimSpace(n.Message)
		if n.Message == "" {
			continue
		}
		n.Kind = normalizeKind(n.Kind)
		out = append(out, n)
	}
	return out
}

func normalizeKind(k Kind) Kind {
	switch k {
	case KindSuccess, KindError:
		return k
	default:
		return KindInfo
	}
}
