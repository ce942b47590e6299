package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classhub/school-management-api/internal/access"
	"github.com/classhub/school-management-api/internal/cascade"
	"github.com/classhub/school-management-api/internal/config"
	"github.com/classhub/school-management-api/internal/constants"
	"github.com/classhub/school-management-api/internal/database"
	"github.com/classhub/school-management-api/internal/handlers"
	"github.com/classhub/school-management-api/internal/middleware"
	"github.com/classhub/school-management-api/internal/repository"
	"github.com/classhub/school-management-api/internal/services"
	"github.com/classhub/school-management-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to object storage
	blobs, err := storage.ConnectMinio(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	memberRepo := repository.NewMembershipRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Core engines
	engine := access.NewEngine(schoolRepo, subjectRepo, teamRepo, memberRepo, enrollmentRepo, studentRepo)
	tracker := storage.NewTracker(db, logger)
	orchestrator := cascade.NewOrchestrator(db, tracker, blobs, logger)

	// Services
	authService := services.NewAuthService(userRepo, cfg.DefaultStorageLimit)
	schoolService := services.NewSchoolService(schoolRepo, memberRepo, engine, orchestrator, cfg.DefaultStorageLimit)
	membershipService := services.NewMembershipService(memberRepo, userRepo, schoolRepo, teamRepo, engine, orchestrator)
	subjectService := services.NewSubjectService(subjectRepo, enrollmentRepo, studentRepo, engine, orchestrator)
	assignmentService := services.NewAssignmentService(assignmentRepo, subjectRepo, enrollmentRepo, engine, orchestrator)
	fileService := services.NewFileService(db, fileRepo, assignmentRepo, tracker, blobs, engine, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	schoolHandler := handlers.NewSchoolHandler(schoolService, membershipService)
	subjectHandler := handlers.NewSubjectHandler(subjectService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	fileHandler := handlers.NewFileHandler(fileService)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "School Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// School routes (protected)
		schools := api.Group("/schools")
		schools.Use(middleware.RequireAuth())
		{
			schools.POST("", schoolHandler.CreateSchool)
			schools.GET("", schoolHandler.ListSchools)
			schools.POST("/join", schoolHandler.JoinSchool)
			schools.POST("/:id/respond", schoolHandler.RespondToInvitation)

			member := schools.Group("/:id")
			member.Use(middleware.RequireSchoolAccess(engine))
			{
				member.GET("", schoolHandler.GetSchool)
				member.POST("/subjects", subjectHandler.CreateSubject)

				admin := member.Group("")
				admin.Use(middleware.RequireSchoolAdmin(engine))
				{
					admin.PUT("", schoolHandler.UpdateSchool)
					admin.DELETE("", schoolHandler.DeleteSchool)
					admin.POST("/regenerate-code", schoolHandler.RegenerateInviteCode)
					admin.POST("/members", schoolHandler.InviteMember)
					admin.PATCH("/members/:user_id", schoolHandler.ChangeMemberRole)
					admin.DELETE("/members/:user_id", schoolHandler.RemoveMember)
				}
			}
		}

		// Subject routes (protected; services enforce subject scope)
		subjects := api.Group("/subjects")
		subjects.Use(middleware.RequireAuth())
		{
			subjects.GET("/:subject_id", subjectHandler.GetSubject)
			subjects.PUT("/:subject_id", subjectHandler.UpdateSubject)
			subjects.PATCH("/:subject_id/lock", subjectHandler.SetSubjectLock)
			subjects.DELETE("/:subject_id", subjectHandler.DeleteSubject)
			subjects.POST("/:subject_id/teachers", subjectHandler.EnrollTeacher)
			subjects.POST("/:subject_id/respond", subjectHandler.RespondToEnrollment)
			subjects.POST("/:subject_id/students", subjectHandler.AddStudent)
			subjects.DELETE("/:subject_id/students/:student_id", subjectHandler.RemoveStudent)
			subjects.POST("/:subject_id/assignments", assignmentHandler.CreateAssignment)
		}

		// Assignment routes (protected)
		assignments := api.Group("/assignments")
		assignments.Use(middleware.RequireAuth())
		{
			assignments.GET("/:assignment_id", assignmentHandler.GetAssignment)
			assignments.DELETE("/:assignment_id", assignmentHandler.DeleteAssignment)
			assignments.POST("/:assignment_id/assign", assignmentHandler.AssignStudents)
			assignments.POST("/:assignment_id/submit", assignmentHandler.SubmitWork)
			assignments.POST("/:assignment_id/files", fileHandler.UploadAssignmentFile)
			assignments.POST("/:assignment_id/links", fileHandler.AttachAssignmentLink)
		}

		// Work item and file routes (protected)
		api.PATCH("/work-items/:work_item_id/grade", middleware.RequireAuth(), assignmentHandler.GradeWork)
		api.DELETE("/files/:file_id", middleware.RequireAuth(), fileHandler.DeleteAssignmentFile)
	}

	// Start server
	logger.Info("Server starting", zap.String("addr", ":8080"))
	if err := r.Run(":8080"); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
