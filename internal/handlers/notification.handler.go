package handlers

import (
	"errors"

	"roomcare/internal/app"
	notificationController "roomcare/internal/controllers/notifications"
	"roomcare/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	Handler
	notificationController notificationController.NotificationControllerInterface
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	log := logger.New("handlers").File("notification_handler")
	return &NotificationHandler{
		notificationController: app.NotificationController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *NotificationHandler) Register() {
	notifications := h.router.Group("/notifications", h.middleware.RequireAuth())

	notifications.Get("", h.getNotifications)
	notifications.Patch("/read-all", h.markAllRead)
	notifications.Patch("/:id/read", h.markRead)
	notifications.Delete("/:id", h.deleteNotification)
}

func (h *NotificationHandler) getNotifications(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("notification_handler").Function("getNotifications")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	page := c.QueryInt("page", notificationController.DefaultPage)
	limit := c.QueryInt("limit", notificationController.DefaultLimit)
	unreadOnly := c.QueryBool("unreadOnly", false)

	response, err := h.notificationController.GetNotifications(c.Context(), user, page, limit, unreadOnly)
	if err != nil {
		_ = log.Err("Failed to retrieve notifications", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve notifications",
		})
	}

	return c.JSON(response)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("notification_handler").Function("markRead")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	if err := h.notificationController.MarkRead(c.Context(), user, notificationID); err != nil {
		if errors.Is(err, notificationController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		_ = log.Err("Failed to mark notification read", err, "userID", user.ID, "notificationID", notificationID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notification read",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("notification_handler").Function("markAllRead")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if err := h.notificationController.MarkAllRead(c.Context(), user); err != nil {
		_ = log.Err("Failed to mark notifications read", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notifications read",
		})
	}

	return c.JSON(fiber.Map{
		"message": "All notifications marked as read",
	})
}

func (h *NotificationHandler) deleteNotification(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("notification_handler").Function("deleteNotification")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	if err := h.notificationController.Delete(c.Context(), user, notificationID); err != nil {
		if errors.Is(err, notificationController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		_ = log.Err("Failed to delete notification", err, "userID", user.ID, "notificationID", notificationID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete notification",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification deleted",
	})
}
