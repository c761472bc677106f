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

type StudentHandler struct {
	Handler
	cleaningController cleaningController.CleaningControllerInterface
}

func NewStudentHandler(app app.App, router fiber.Router) *StudentHandler {
	log := logger.New("handlers").File("student_handler")
	return &StudentHandler{
		cleaningController: app.CleaningController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *StudentHandler) Register() {
	student := h.router.Group(
		"/student",
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.RoleStudent),
	)

	student.Post("/request-cleaning", h.middleware.RateLimit(), h.requestCleaning)
	student.Post("/approve-cleaning/:id", h.middleware.RateLimit(), h.approveCompletion)
	student.Get("/cleaning-history", h.getCleaningHistory)
}

func (h *StudentHandler) requestCleaning(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("student_handler").Function("requestCleaning")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	request, err := h.cleaningController.SubmitRequest(c.Context(), user)
	if err != nil {
		var cooldownErr *cleaningController.CooldownError
		if errors.As(err, &cooldownErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":         cooldownErr.Error(),
				"daysRemaining": cooldownErr.DaysRemaining,
			})
		}
		if errors.Is(err, cleaningController.ErrRequestAlreadyOpen) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, cleaningController.ErrNoSweeperAvailable) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		_ = log.Err("Failed to submit cleaning request", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit cleaning request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"request": request,
	})
}

func (h *StudentHandler) approveCompletion(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("student_handler").Function("approveCompletion")

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

	request, err := h.cleaningController.ApproveCompletion(c.Context(), user, requestID)
	if err != nil {
		if errors.Is(err, cleaningController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Request not found or not awaiting approval",
			})
		}
		_ = log.Err("Failed to approve completion", err, "userID", user.ID, "requestID", requestID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to approve completion",
		})
	}

	return c.JSON(fiber.Map{
		"request": request,
	})
}

func (h *StudentHandler) getCleaningHistory(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("student_handler").Function("getCleaningHistory")

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
