package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "mc_flash"
	ctxFlash    = "mentor.flash"

	flashSuccess = "success"
	flashError   = "error"
)

// flashMessage is a one-shot notice shown on the next rendered page.
type flashMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func addFlash(c *gin.Context, level, msg string) {
	msgs := append(pendingFlashes(c), flashMessage{Level: level, Message: msg})
	c.Set(ctxFlash, msgs)
	writeFlashCookie(c, msgs)
}

// popFlashes returns the pending notices and clears them.
func popFlashes(c *gin.Context) []flashMessage {
	msgs := pendingFlashes(c)
	if len(msgs) > 0 {
		writeFlashCookie(c, nil)
	}
	c.Set(ctxFlash, []flashMessage{})
	return msgs
}

func pendingFlashes(c *gin.Context) []flashMessage {
	if v, ok := c.Get(ctxFlash); ok {
		msgs, _ := v.([]flashMessage)
		return append([]flashMessage(nil), msgs...)
	}
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var msgs []flashMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	return msgs
}

func writeFlashCookie(c *gin.Context, msgs []flashMessage) {
	c.SetSameSite(http.SameSiteLaxMode)
	if len(msgs) == 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
		return
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 300, "/", "", false, true)
}
