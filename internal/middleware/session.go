package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/booking-crm/internal/session"
)

const ContextFunnel = "funnel"

// BagSource abre o armazenamento de sessão de um visitante.
type BagSource interface {
	Bag(sessionID string) session.Bag
}

type SessionOptions struct {
	CookieName string
	MaxAge     int // segundos
	Secure     bool
}

// SessionMiddleware garante um id de visitante no cookie e expõe o funil dele no contexto.
func SessionMiddleware(store BagSource, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(opts.CookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
		}

		// renova o cookie junto com o TTL da sessão
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, sid, opts.MaxAge, "/", "", opts.Secure, true)

		c.Set(ContextFunnel, session.NewFunnel(store.Bag(sid)))
		c.Next()
	}
}

func Funnel(c *gin.Context) *session.Funnel {
	return c.MustGet(ContextFunnel).(*session.Funnel)
}
