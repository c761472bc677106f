package handlers

import (
	"roomcare/internal/app"
	adminController "roomcare/internal/controllers/admin"
	cleaningController "roomcare/internal/controllers/cleaning"
	"roomcare/internal/handlers/middleware"
	"roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	adminController    adminController.AdminControllerInterface
	cleaningController cleaningController.CleaningControllerInterface
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	log := logger.New("handlers").File("admin_handler")
	return &AdminHandler{
		adminController:    app.AdminController,
		cleaningController: app.CleaningController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group(
		"/admin",
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.RoleAdmin),
	)

	admin.Get("/stats", h.getStats)
	admin.Get("/users", h.getAllUsers)
	admin.Get("/pending-rooms", h.getAllRequests)
}

func (h *AdminHandler) getStats(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("admin_handler").Function("getStats")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	stats, err := h.adminController.GetStats(c.Context(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve stats", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve stats",
		})
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}

func (h *AdminHandler) getAllUsers(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("admin_handler").Function("getAllUsers")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	users, err := h.adminController.GetAllUsers(c.Context(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve users", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
	})
}

func (h *AdminHandler) getAllRequests(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("admin_handler").Function("getAllRequests")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requests, err := h.cleaningController.GetAllOpenRequests(c.Context(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve open requests", err, "userID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve open requests",
		})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
	})
}
