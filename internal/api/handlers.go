package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nikmy/shifter/internal/shifts"
	"github.com/nikmy/shifter/pkg/errors"
)

const (
	keyOverlap  = "shiftoverlap"
	keyNotFound = "shiftnotfound"

	msgOverlap        = "Overlaps with existing shift for user"
	msgNotFound       = "No shift found with that id"
	msgNotFoundByUser = "No shift found by that id and user"
)

type createPayload struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	UserID    string `json:"user_id"`
}

type editPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	UserID    string `json:"user_id"`
}

func (s *server) handleList(c *fiber.Ctx) error {
	found, err := s.shifts.List(c.Context(), c.Query(shifts.FieldStart), c.Query(shifts.FieldEnd))
	if err != nil {
		return s.sendDomainError(c, err, msgNotFound)
	}

	if found == nil {
		found = []shifts.Shift{}
	}
	return c.JSON(found)
}

func (s *server) handleGet(c *fiber.Ctx) error {
	shift, err := s.shifts.Get(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err, msgNotFound)
	}

	return c.JSON(shift)
}

func (s *server) handleCreate(c *fiber.Ctx) error {
	var data createPayload
	err := c.BodyParser(&data)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "unmarshal create payload"))
		return sendError(c, http.StatusBadRequest, "bad json")
	}

	created, err := s.shifts.Create(c.Context(), actorOf(c), shifts.CreateRequest{
		Name:  data.Name,
		Start: data.StartDate,
		End:   data.EndDate,
		Owner: data.UserID,
	})
	if err != nil {
		return s.sendDomainError(c, err, msgNotFound)
	}

	return c.JSON(created)
}

func (s *server) handleEdit(c *fiber.Ctx) error {
	var data editPayload
	err := c.BodyParser(&data)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "unmarshal edit payload"))
		return sendError(c, http.StatusBadRequest, "bad json")
	}

	edited, err := s.shifts.Edit(c.Context(), actorOf(c), shifts.EditRequest{
		ID:    c.Params("id"),
		Start: data.StartDate,
		End:   data.EndDate,
		Owner: data.UserID,
	})
	if err != nil {
		return s.sendDomainError(c, err, msgNotFoundByUser)
	}

	return c.JSON(edited)
}

func (s *server) handleDelete(c *fiber.Ctx) error {
	err := s.shifts.Delete(c.Context(), actorOf(c), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err, msgNotFound)
	}

	return c.JSON(fiber.Map{"success": true})
}

// sendDomainError answers known shift errors and hands the rest to the
// error handler.
func (s *server) sendDomainError(c *fiber.Ctx, err error, notFound string) error {
	var invalid *shifts.InvalidInputError

	switch {
	case errors.As(err, &invalid):
		return c.Status(http.StatusBadRequest).JSON(invalid.Fields)
	case errors.Is(err, shifts.ErrConflict):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{keyOverlap: msgOverlap})
	case errors.Is(err, shifts.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{keyNotFound: notFound})
	case errors.Is(err, shifts.ErrUnauthorized):
		return sendError(c, http.StatusUnauthorized, err.Error())
	default:
		return err
	}
}
