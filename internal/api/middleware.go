package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nikmy/shifter/internal/auth"
	"github.com/nikmy/shifter/internal/shifts"
)

const (
	requestIDKey = "request_id"
	principalKey = "principal"
)

// accessLog runs the error handler itself, so the logged status is the one
// the client receives.
func (s *server) accessLog(c *fiber.Ctx) error {
	began := time.Now()

	if err := c.Next(); err != nil {
		if err := c.App().ErrorHandler(c, err); err != nil {
			_ = c.SendStatus(http.StatusInternalServerError)
		}
	}

	took := time.Since(began)
	status := c.Response().StatusCode()
	route := c.Route().Path

	if s.metrics != nil {
		s.metrics.ObserveRequest(c.Method(), route, status, took)
	}

	s.log.WithValues(
		"request_id", c.Locals(requestIDKey),
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"took", took,
	).Debugf("served %s", route)

	return nil
}

func (s *server) authenticate(c *fiber.Ctx) error {
	p, err := s.authn.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		s.log.Debug(err)
		return sendError(c, http.StatusUnauthorized, "unauthorized")
	}

	c.Locals(principalKey, p)
	return c.Next()
}

func actorOf(c *fiber.Ctx) shifts.Actor {
	p, _ := c.Locals(principalKey).(auth.Principal)
	return shifts.Actor{ID: p.ID, Manager: p.IsManager()}
}
