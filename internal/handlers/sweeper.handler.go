package handlers

import (
	"errors"

	"roomcare/internal/app"
	cleaningController "roomcare/internal/controllers/cleaning"
	"roomcare/internal/handlers/middleware"
	"roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SweeperHandler struct {
	Handler
	cleaningController cleaningController.CleaningControllerInterface
}

func NewSweeperHandler(app app.App, router fiber.Router) *SweeperHandler {
	log := logger.New("handlers").File("sweeper_handler")
	return &SweeperHandler{
		cleaningController: app.CleaningController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SweeperHandler) Register() {
	sweeper := h.router.Group(
		"/sweeper",
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.RoleSweeper),
	)

	sweeper.Post("/mark-cleaned/:id", h.middleware.RateLimit(), h.markCleaned)
	sweeper.Get("/pending-rooms", h.getPendingRooms)
	sweeper.Get("/cleaning-history", h.getCleaningHistory)
}

func (h *SweeperHandler) markCleaned(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("sweeper_handler").Function("markCleaned")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	request, err := h.cleaningController.MarkCleaned(c.Context(), user, requestID)
	if err != nil {
		if errors.Is(err, cleaningController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Request not found or not assigned to you",
			})
		}
		_ = log.Err("Failed to mark request cleaned", err, "userID", user.ID, "requestID", requestID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark request cleaned",
		})
	}

	return c.JSON(fiber.Map{
		"request": request,
	})
}

func (h *SweeperHandler) getPendingRooms(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("sweeper_handler").Function("getPendingRooms")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requests, err := h.cleaningController.GetPendingRooms(c.Context(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve pending rooms", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve pending rooms",
		})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
	})
}

func (h *SweeperHandler) getCleaningHistory(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("sweeper_handler").Function("getCleaningHistory")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requests, err := h.cleaningController.GetHistory(c.Context(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve cleaning history", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve cleaning history",
		})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
	})
}
