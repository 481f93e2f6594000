package handler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzalakhan/portfolio-backend/internal/cloud"
	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/middleware"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
	"github.com/hanzalakhan/portfolio-backend/internal/portfolio"
	"github.com/hanzalakhan/portfolio-backend/internal/storage"
	"github.com/hanzalakhan/portfolio-backend/internal/util"
)

type AdminHandler struct {
	svc    *portfolio.Service
	mirror *cloud.Mirror
}

func NewAdminHandler(svc *portfolio.Service, mirror *cloud.Mirror) *AdminHandler {
	return &AdminHandler{svc: svc, mirror: mirror}
}

// RegisterRoutes mounts the admin surface. Only the check probe carries the
// audit-logging auth variant; routine admin traffic must not generate
// AUTH_SUCCESS/AUTH_DENIED rows on every request.
func (h *AdminHandler) RegisterRoutes(app *fiber.App, adminAuth, checkAuth fiber.Handler) {
	admin := app.Group("/api/admin")
	admin.Get("/check", checkAuth, h.Check)
	admin.Get("/backup", adminAuth, h.ListBackups)
	admin.Post("/backup", adminAuth, h.BackupAction)
	admin.Get("/health", adminAuth, h.Health)
	admin.Get("/dashboard", adminAuth, h.Dashboard)
}

// Check reports the authorization result. Reaching this handler means the
// auth middleware already admitted the actor.
func (h *AdminHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"authorized": true,
		"userEmail":  middleware.AdminEmail(c),
		"message":    "Admin access granted",
		"permissions": fiber.Map{
			"canEdit":         true,
			"canDelete":       true,
			"canBackup":       true,
			"canRestore":      true,
			"canViewAuditLog": true,
		},
	})
}

func (h *AdminHandler) ListBackups(c *fiber.Ctx) error {
	backend := h.svc.Backend()
	if backend == nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "Database not configured",
		})
	}

	backups, err := backend.GetBackups(c.Context(), 10)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to fetch backups",
		}, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"backups":     backups,
		"count":       len(backups),
		"requestedBy": middleware.AdminEmail(c),
	})
}

type backupActionRequest struct {
	Action   string `json:"action"`
	BackupID string `json:"backupId"`
}

func (h *AdminHandler) BackupAction(c *fiber.Ctx) error {
	adminEmail := middleware.AdminEmail(c)

	var req backupActionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}, err)
	}

	// Export works without a backend: it streams whatever the fallback
	// chain can produce.
	if req.Action == "export" {
		return h.export(c, adminEmail)
	}

	backend := h.svc.Backend()
	if backend == nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "Database not configured",
		})
	}

	switch req.Action {
	case "create":
		if err := backend.CreateBackup(c.Context(), adminEmail); err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "Backup operation failed",
			}, err)
		}
		// Audit is best-effort, same discipline as the storage layer.
		if err := backend.LogChange(c.Context(), model.ActionBackupCreate, adminEmail, "Manual backup created via admin panel"); err != nil {
			log.Printf("audit log write failed: %v", err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "Backup created successfully",
			"createdBy": adminEmail,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})

	case "restore":
		if req.BackupID == "" {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "Backup ID required for restore operation",
			})
		}
		if err := backend.RestoreFromBackup(c.Context(), req.BackupID, adminEmail); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return util.ErrorResponse(c, util.ErrorResponseFormat{
					Code:    fiber.StatusNotFound,
					Message: "Backup not found",
				})
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "Backup operation failed",
			}, err)
		}
		return c.JSON(fiber.Map{
			"success":    true,
			"message":    "Data restored from backup successfully",
			"restoredBy": adminEmail,
			"backupId":   req.BackupID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})

	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: `Invalid action. Use "create", "restore", or "export"`,
		})
	}
}

// export streams the canonical document as a downloadable dated file.
func (h *AdminHandler) export(c *fiber.Ctx, adminEmail string) error {
	doc, err := h.svc.Get(c.Context())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Backup operation failed",
		}, err)
	}

	filename := fmt.Sprintf("portfolio-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.JSON(fiber.Map{
		"portfolioData": doc,
		"metadata": fiber.Map{
			"exportedAt": time.Now().UTC().Format(time.RFC3339),
			"exportedBy": adminEmail,
			"version":    time.Now().UnixMilli(),
		},
	})
}

// Health reports backend and per-provider cloud availability plus derived
// recommendations. Diagnostics only.
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	backend := h.svc.Backend()

	dbStatus := fiber.Map{
		"provider":  "none",
		"connected": false,
	}
	dbConnected := false
	if backend != nil {
		dbStatus["provider"] = backend.Provider()
		if err := backend.Ping(c.Context()); err != nil {
			dbStatus["error"] = err.Error()
		} else {
			dbConnected = true
			dbStatus["connected"] = true
		}
	}

	cloudStatus := map[string]bool{}
	if h.mirror.Configured() {
		cloudStatus = h.mirror.TestConnectivity(c.Context())
	}
	cloudHealthy := false
	for _, ok := range cloudStatus {
		if ok {
			cloudHealthy = true
			break
		}
	}

	cloudCfg := config.LoadCloudConfig()
	envStatus := fiber.Map{
		"DATABASE_PROVIDER": config.LoadDBConfig().Provider != "",
		"MONGODB_URL":       config.LoadDBConfig().MongoURL != "",
		"JSONBIN_API_KEY":   cloudCfg.JSONBinAPIKey != "",
		"GITHUB_TOKEN":      cloudCfg.GithubToken != "",
		"PASTEBIN_API_KEY":  cloudCfg.PastebinAPIKey != "",
		"ADMIN_JWT_SECRET":  config.LoadAuthConfig().JWTSecret != "",
	}

	status := "degraded"
	if dbConnected || cloudHealthy {
		status = "healthy"
	}

	return c.JSON(fiber.Map{
		"status":          status,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"checkedBy":       middleware.AdminEmail(c),
		"database":        dbStatus,
		"cloudStorage":    cloudStatus,
		"environment":     envStatus,
		"recommendations": recommendations(backend != nil, dbConnected, cloudHealthy),
	})
}

func recommendations(dbConfigured, dbConnected, cloudHealthy bool) []string {
	var recs []string
	switch {
	case !dbConfigured:
		recs = append(recs, "No database provider configured. Add DATABASE_PROVIDER to environment variables.")
	case !dbConnected:
		recs = append(recs, "Database connection failed. Check your DATABASE_PROVIDER and connection string.")
	}
	if !cloudHealthy {
		recs = append(recs, "No cloud storage backup available. Consider adding JSONBIN_API_KEY or GITHUB_TOKEN.")
	}
	switch {
	case dbConnected && cloudHealthy:
		recs = append(recs, "Both database and cloud backup are configured.")
	case dbConnected:
		recs = append(recs, "Database is connected. Consider adding cloud backup for extra safety.")
	case cloudHealthy:
		recs = append(recs, "Cloud backup available but no persistent database. Data may be lost on deployment.")
	}
	return recs
}

// Dashboard aggregates recent activity and system info for the admin panel.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	adminEmail := middleware.AdminEmail(c)
	backend := h.svc.Backend()
	dbCfg := config.LoadDBConfig()

	systemInfo := fiber.Map{
		"databaseProvider":     dbCfg.Provider,
		"hasPersistentStorage": backend != nil,
		"hasCloudBackup":       h.mirror.Configured(),
		"environment":          config.LoadAppConfig().Env,
	}
	if dbCfg.Provider == "" {
		systemInfo["databaseProvider"] = "none"
	}

	if backend == nil {
		return util.SuccessResponse(c, util.SuccessResponseFormat{
			Data: fiber.Map{
				"systemInfo":       systemInfo,
				"recentActivity":   []model.AuditLogEntry{},
				"availableBackups": []model.BackupInfo{},
				"adminEmail":       adminEmail,
				"lastUpdated":      time.Now().UTC().Format(time.RFC3339),
				"warning":          "Database not available - using fallback mode",
			},
		})
	}

	auditLog, err := backend.GetAuditLog(c.Context(), 20)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to fetch dashboard data",
		}, err)
	}
	backups, err := backend.GetBackups(c.Context(), 10)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to fetch dashboard data",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Data: fiber.Map{
			"systemInfo":       systemInfo,
			"recentActivity":   auditLog,
			"availableBackups": backups,
			"adminEmail":       adminEmail,
			"lastUpdated":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}
