package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/auth"
	"github.com/CodeIvet/patanaa/internal/cache"
	"github.com/CodeIvet/patanaa/internal/config"
	"github.com/CodeIvet/patanaa/internal/filestructure"
	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/handler"
	"github.com/CodeIvet/patanaa/internal/invite"
	"github.com/CodeIvet/patanaa/internal/template"
)

// Server Fiber server wrapper
type Server struct {
	app                *fiber.App
	cfg                *config.Config
	db                 *gorm.DB
	healthHandler      *handler.HealthHandler
	meetingHandler     *handler.BoardMeetingHandler
	agendaHandler      *handler.AgendaHandler
	calendarHandler    *handler.CalendarHandler
	inviteHandler      *handler.InviteHandler
	documentHandler    *handler.DocumentHandler
	folderHandler      *handler.FolderHandler
	userMappingHandler *handler.UserMappingHandler
}

// New wires the Graph clients and handlers into a server instance
func New(cfg *config.Config, db *gorm.DB, nameCache *cache.DisplayNameCache) *Server {
	app := fiber.New(fiber.Config{
		AppName:       "Board Meeting Backend",
		ServerHeader:  "Fiber",
		StrictRouting: true,
		CaseSensitive: true,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		BodyLimit:     10 * 1024 * 1024, // rendered DOCX uploads
	})

	graphClient := graph.NewClient(graph.ClientOptions{
		TokenProvider: graph.ClientCredentialsTokenProvider(graph.ClientCredentialsConfig{
			AuthorityHost: cfg.Graph.AuthorityHost,
			TenantID:      cfg.Graph.TenantID,
			ClientID:      cfg.Graph.ClientID,
			ClientSecret:  cfg.Graph.ClientSecret,
		}),
	})
	meetingsDrive := graph.NewDriveClient(graphClient, cfg.SharePoint.MeetingsDriveID)
	assetsDrive := graph.NewDriveClient(graphClient, cfg.SharePoint.AssetsDriveID)
	calendarClient := graph.NewCalendarClient(graphClient, cfg.Calendar.EventMailbox)

	reconciler := filestructure.NewReconciler(
		filestructure.NewStore(db),
		meetingsDrive,
		filestructure.Config{
			MeetingsRootID:     cfg.SharePoint.MeetingsRootFolderID,
			UnassignedFolderID: cfg.SharePoint.UnassignedTopsFolderID,
		},
	)
	resolver := template.NewDisplayNameResolver(graphClient, db, nameCache)
	classifier := invite.NewClassifier(calendarClient, graphClient)

	calendarHandler := handler.NewCalendarHandler(db, calendarClient, meetingsDrive, cfg.Calendar)

	return &Server{
		app:                app,
		cfg:                cfg,
		db:                 db,
		healthHandler:      handler.NewHealthHandler(db),
		meetingHandler:     handler.NewBoardMeetingHandler(db, reconciler, meetingsDrive, calendarClient),
		agendaHandler:      handler.NewAgendaHandler(db, reconciler, meetingsDrive, calendarClient),
		calendarHandler:    calendarHandler,
		inviteHandler:      handler.NewInviteHandler(db, classifier, calendarHandler),
		documentHandler:    handler.NewDocumentHandler(db, meetingsDrive, assetsDrive, reconciler, resolver, cfg.Templates),
		folderHandler:      handler.NewFolderHandler(meetingsDrive, assetsDrive),
		userMappingHandler: handler.NewUserMappingHandler(db, graphClient, cfg.Defaults),
	}
}

// SetupMiddleware middleware setup
func (s *Server) SetupMiddleware() {
	// panic recovery
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// request logging
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Europe/Berlin",
	}))

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CORS.AllowOrigins,
		AllowHeaders: s.cfg.CORS.AllowHeaders,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
}

// SetupRoutes route setup
func (s *Server) SetupRoutes() {
	s.app.Get("/health", s.healthHandler.Health)

	// Template rendering fans out into several Graph calls; keep it from
	// being hammered.
	renderLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	api := s.app.Group("/api", auth.RequireToken())

	// Board meetings
	api.Get("/getBoardMeetings", s.meetingHandler.GetBoardMeetings)
	api.Post("/createBoardMeeting", s.meetingHandler.CreateBoardMeeting)
	api.Post("/updateBoardMeeting", s.meetingHandler.UpdateBoardMeeting)
	api.Post("/deleteBoardMeeting", s.meetingHandler.DeleteBoardMeeting)

	// Agenda items
	api.Get("/getAgendaItems", s.agendaHandler.GetAgendaItems)
	api.Post("/updateAgenda", s.agendaHandler.UpdateAgenda)
	api.Post("/updateAgendaItem", s.agendaHandler.UpdateAgendaItem)
	api.Post("/deleteAgendaItem", s.agendaHandler.DeleteAgendaItem)

	// Calendar events
	api.Post("/createUpdateBoardMeetingCalendarItem", s.calendarHandler.CreateUpdateBoardMeetingCalendarItem)
	api.Post("/createUpdateAgendaItemCalendarItem", s.calendarHandler.CreateUpdateAgendaItemCalendarItem)
	api.Get("/getCalendarItem", s.calendarHandler.GetCalendarItem)

	// Invites
	api.Get("/getInviteStatus", s.inviteHandler.GetInviteStatus)
	api.Post("/processInvites", s.inviteHandler.ProcessInvites)

	// Documents
	api.Post("/createAgendaPdf", renderLimiter, s.documentHandler.CreateAgendaPdf)
	api.Post("/processProtocolTemplate", renderLimiter, s.documentHandler.ProcessProtocolTemplate)

	// Folders
	api.Get("/getFolderWebUrl", s.folderHandler.GetFolderWebUrl)

	// Users and settings
	api.Post("/getUserProfiles", s.userMappingHandler.GetUserProfiles)
	api.Get("/getUserMappings", s.userMappingHandler.GetUserMappings)
	api.Post("/updateUserMappings", s.userMappingHandler.UpdateUserMappings)
	api.Get("/getDefaultRooms", s.userMappingHandler.GetDefaultRooms)
	api.Get("/getDefaultParticipantGroups", s.userMappingHandler.GetDefaultParticipantGroups)
}

// Start starts the server with graceful shutdown
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Board Meeting Backend starting on %s", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
