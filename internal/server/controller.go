package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

type Controller struct {
	backend  submit.Backend
	resolver *frame.Resolver
	log      *logging.Logger
}

func NewController(backend submit.Backend, resolver *frame.Resolver, log *logging.Logger) *Controller {
	return &Controller{backend: backend, resolver: resolver, log: log}
}

func (ctl *Controller) RegisterRoutes(r fiber.Router) {
	r.Get("/health", ctl.Health)
	r.Post("/submit", ctl.Submit)
	r.Get("/frames", ctl.Frame)
}

func (ctl *Controller) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Submit relays one frame to the judge. The reply always has the relay
// response shape; failures use status "ERROR".
func (ctl *Controller) Submit(c *fiber.Ctx) error {
	var req submit.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(submit.ErrorResponse(&req, errors.New("invalid request body")))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(submit.ErrorResponse(&req, err))
	}

	resp, err := ctl.backend.Submit(c.UserContext(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(submit.ErrorResponse(&req, err))
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

type frameResponse struct {
	*frame.Frame
	Initial    frame.Position `json:"initial"`
	WatchURLAt string         `json:"watchUrlAt"`
	EmbedURL   string         `json:"embedUrl,omitempty"`
}

// Frame resolves ?path= to its video, fps and timestamp.
func (ctl *Controller) Frame(c *fiber.Ctx) error {
	p := strings.TrimSpace(c.Query("path"))
	if p == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing path"})
	}

	f, err := ctl.resolver.Resolve(c.UserContext(), p)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	out := frameResponse{
		Frame:      f,
		Initial:    f.InitialPosition(),
		WatchURLAt: f.LinkAt(f.TimestampSeconds),
	}
	if f.YouTubeID != "" {
		out.EmbedURL = frame.EmbedURL(f.YouTubeID, f.TimestampSeconds)
	}
	return c.JSON(out)
}

func statusFor(err error) int {
	switch apperrors.Kind(err) {
	case apperrors.ErrInvalidInput:
		return fiber.StatusBadRequest
	case apperrors.ErrNotFound:
		return fiber.StatusNotFound
	case apperrors.ErrFetch:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
