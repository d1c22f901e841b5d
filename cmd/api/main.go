package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sgad-api/internal/audit"
	"sgad-api/internal/config"
	"sgad-api/internal/handler"
	"sgad-api/internal/logging"
	"sgad-api/internal/middleware"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/service"
	"sgad-api/internal/ws"
	"sgad-api/pkg/database"
	"sgad-api/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("failed to initialise logging: %v", err)
	}

	// 2. Setup Database
	db, err := database.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// 3. Permission core, built once and shared read-only
	evaluator := permission.NewDefaultEvaluator()

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	permissionRepo := repository.NewPermissionRepo(db)
	cycleRepo := repository.NewCycleRepo(db)
	competencyRepo := repository.NewCompetencyRepo(db)
	objectiveRepo := repository.NewObjectiveRepo(db)
	evaluationRepo := repository.NewEvaluationRepo(db)
	ackRepo := repository.NewAcknowledgementRepo(db)
	complaintRepo := repository.NewComplaintRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	auditLog := audit.NewLogger(auditRepo)
	tokens := jwt.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Expiry)

	roleService := service.NewRoleService(roleRepo, permissionRepo, evaluator)
	seed(cfg, roleService, competencyRepo, userRepo)

	authService := service.NewAuthService(userRepo, tokens, evaluator, wsHub, cfg.JWT.IdleTimeout)
	userService := service.NewUserService(userRepo, evaluator, auditLog)
	permissionService := service.NewPermissionService(cycleRepo, evaluator)
	cycleService := service.NewCycleService(cycleRepo, evaluator, &cfg.Scoring, wsHub, auditLog)
	objectiveService := service.NewObjectiveService(objectiveRepo, cycleRepo, evaluationRepo, userRepo, evaluator, &cfg.Scoring, auditLog)
	evaluationService := service.NewEvaluationService(evaluationRepo, cycleRepo, objectiveRepo, userRepo, evaluator, &cfg.Scoring, wsHub, auditLog)
	ackService := service.NewAcknowledgementService(ackRepo, evaluationRepo, cycleRepo, userRepo, evaluator, auditLog)
	complaintService := service.NewComplaintService(complaintRepo, evaluationRepo, userRepo, evaluator, wsHub, auditLog)
	reportService := service.NewReportService(evaluationService, cycleRepo, userRepo, evaluator, &cfg.Scoring, cfg.Server.Institution)
	dashService := service.NewDashboardService(cycleRepo, evaluationRepo, evaluator)
	competencyService := service.NewCompetencyService(competencyRepo, evaluator)
	auditService := service.NewAuditService(auditRepo, evaluator)

	authHandler := handler.NewAuthHandler(authService, userService, permissionService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	cycleHandler := handler.NewCycleHandler(cycleService)
	objectiveHandler := handler.NewObjectiveHandler(objectiveService)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, ackService)
	complaintHandler := handler.NewComplaintHandler(complaintService)
	reportHandler := handler.NewReportHandler(reportService)
	dashHandler := handler.NewDashboardHandler(dashService, competencyService)
	auditHandler := handler.NewAuditHandler(auditService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(userRepo, tokens)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	// Route guards reject whole modules early; services decide per record
	// and per cycle state.
	protected := api.Group("", requireAuth)

	protected.Get("/me", authHandler.Me)
	protected.Get("/me/modules", authHandler.MyModules)
	protected.Get("/me/permissions/check", authHandler.CheckPermission)

	// Dashboard
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/competencies", dashHandler.GetCompetencies)

	// Users (M02)
	users := protected.Group("/users", middleware.RequireModule(evaluator, permission.ModuleUsers))
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Post("/", middleware.RequirePermission(evaluator, permission.ModuleUsers, permission.ActionCreate), userHandler.CreateUser)
	users.Put("/:id", middleware.RequirePermission(evaluator, permission.ModuleUsers, permission.ActionUpdate), userHandler.UpdateUser)
	users.Delete("/:id", middleware.RequirePermission(evaluator, permission.ModuleUsers, permission.ActionDelete), userHandler.DeleteUser)

	// Roles (M03)
	protected.Get("/roles", middleware.RequireModule(evaluator, permission.ModuleRoles), roleHandler.GetRoles)
	protected.Get("/permissions", middleware.RequireModule(evaluator, permission.ModuleRoles), roleHandler.GetPermissions)

	// Cycles (M04) and homologation (M14)
	protected.Get("/cycles", cycleHandler.GetCycles)
	protected.Get("/cycles/:id", cycleHandler.GetCycle)
	protected.Post("/cycles", cycleHandler.CreateCycle)
	protected.Put("/cycles/:id", cycleHandler.UpdateCycle)
	protected.Delete("/cycles/:id", cycleHandler.DeleteCycle)
	protected.Post("/cycles/:id/transition", cycleHandler.TransitionCycle)
	protected.Get("/cycles/:id/transitions", cycleHandler.GetCycleHistory)
	protected.Get("/cycles/:id/objectives", objectiveHandler.GetObjectives)

	// Objectives (M07)
	protected.Post("/objectives", objectiveHandler.CreateObjective)
	protected.Put("/objectives/:id", objectiveHandler.UpdateObjective)
	protected.Delete("/objectives/:id", objectiveHandler.DeleteObjective)

	// Evaluations (M08-M11) and acknowledgements (M12)
	protected.Get("/evaluations", evaluationHandler.GetEvaluations)
	protected.Get("/evaluations/:id", evaluationHandler.GetEvaluation)
	protected.Post("/evaluations", evaluationHandler.SubmitEvaluation)
	protected.Put("/evaluations/:id", evaluationHandler.UpdateEvaluation)
	protected.Delete("/evaluations/:id", evaluationHandler.DeleteEvaluation)
	protected.Get("/evaluations/:id/acknowledgements", evaluationHandler.GetAcknowledgements)
	protected.Post("/evaluations/:id/acknowledgements", evaluationHandler.Acknowledge)

	// Complaints and appeals (M13)
	complaints := protected.Group("/complaints", middleware.RequireModule(evaluator, permission.ModuleComplaints))
	complaints.Get("/", complaintHandler.GetComplaints)
	complaints.Get("/:id", complaintHandler.GetComplaint)
	complaints.Post("/", complaintHandler.CreateComplaint)
	complaints.Post("/:id/response", complaintHandler.RespondComplaint)

	// Reports (M15)
	reports := protected.Group("/reports", middleware.RequireModule(evaluator, permission.ModuleReports))
	reports.Get("/evaluations/:id.pdf", reportHandler.EvaluationSheet)
	reports.Get("/cycles/:id.pdf", reportHandler.CycleSummary)

	// Audit (M16)
	protected.Get("/audit", middleware.RequireModule(evaluator, permission.ModuleAudit), auditHandler.GetAuditLogs)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		logging.Info("server starting", "port", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logging.Error("server forced to shutdown", "error", err)
	}
	auditLog.Wait()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Info("server exited")
}

// seed creates the RBAC tables, the competency catalogue and the bootstrap
// administrator. Failures are logged; the server still starts.
func seed(cfg *config.Config, roles service.RoleService, competencies repository.CompetencyRepository, users repository.UserRepository) {
	if err := roles.SyncDefaults(); err != nil {
		logging.Warn("failed to sync roles and permissions", "error", err)
	}
	if err := competencies.SeedDefaults(); err != nil {
		logging.Warn("failed to seed competencies", "error", err)
	}

	_, err := users.FindByEmail(cfg.Seed.AdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Warn("failed to look up admin user", "error", err)
		return
	}

	admin := &model.User{
		Email:    cfg.Seed.AdminEmail,
		FullName: "Administrador SGAD",
		RoleCode: permission.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(cfg.Seed.AdminPassword); err != nil {
		logging.Warn("failed to hash admin password", "error", err)
		return
	}
	if err := users.Create(admin); err != nil {
		logging.Warn("failed to create admin user", "error", err)
		return
	}
	logging.Info("admin user created", "email", admin.Email)
}
