package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/ticketeria/ticketeria/docs"
	v1 "github.com/ticketeria/ticketeria/internal/api/handler/v1"
	"github.com/ticketeria/ticketeria/internal/api/middleware"
	"github.com/ticketeria/ticketeria/internal/cache"
	"github.com/ticketeria/ticketeria/internal/config"
	"github.com/ticketeria/ticketeria/internal/mq"
	"github.com/ticketeria/ticketeria/internal/repository"
	"github.com/ticketeria/ticketeria/internal/repository/dao"
	"github.com/ticketeria/ticketeria/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	eventCache := cache.NewEventCache(conf.Redis)

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db, eventCache)
	ticketHandler := s.initTicketHandler(db, eventCache)
	s.MountHandlers(authHandler, userHandler, eventHandler, ticketHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB, eventCache *cache.EventCache) *v1.EventHandler {
	eventDAO := dao.NewEventDAO(db)
	repo := repository.NewEventRepository(eventDAO)
	svc := service.NewEventService(repo, eventCache)
	handler := v1.NewEventHandler(svc)

	return handler
}

func (s *Server) initTicketHandler(db *gorm.DB, eventCache *cache.EventCache) *v1.TicketHandler {
	ticketDAO := dao.NewTicketDAO(db)
	repo := repository.NewTicketRepository(ticketDAO)

	var publisher *mq.Publisher
	if s.Config.AMQP != nil {
		publisher = mq.NewPublisher(s.Config.AMQP.URL)
	}

	svc := service.NewTicketService(repo, publisher, eventCache)
	handler := v1.NewTicketHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.Metrics())
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, eventHandler *v1.EventHandler, ticketHandler *v1.TicketHandler) {
	const basePath = "/api"

	authenticate := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/register", authHandler.HandleRegister)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	users := s.Router.Group(basePath, authenticate)
	{
		users.GET("/users", middleware.RequireAdmin(), userHandler.HandleListUsers)
		users.POST("/users", middleware.RequireAdmin(), userHandler.HandleCreateUser)
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.PUT("/users/:userID", userHandler.HandleUpdateUser)
		users.DELETE("/users/:userID", middleware.RequireAdmin(), userHandler.HandleDeleteUser)
	}

	events := s.Router.Group(basePath, authenticate)
	{
		events.GET("/events", eventHandler.HandleListEvents)
		events.POST("/events", middleware.RequireAdmin(), eventHandler.HandleCreateEvent)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.PUT("/events/:eventID", middleware.RequireAdmin(), eventHandler.HandleUpdateEvent)
		events.DELETE("/events/:eventID", middleware.RequireAdmin(), eventHandler.HandleDeleteEvent)
	}

	tickets := s.Router.Group(basePath, authenticate)
	{
		tickets.GET("/tickets", ticketHandler.HandleListTickets)
		tickets.POST("/tickets", ticketHandler.HandleCreateTicket)
		tickets.GET("/tickets/:ticketID", ticketHandler.HandleGetTicket)
		tickets.POST("/tickets/:ticketID/use", ticketHandler.HandleUseTicket)
		tickets.PUT("/tickets/:ticketID", middleware.RequireAdmin(), ticketHandler.HandleUpdateTicket)
		tickets.DELETE("/tickets/:ticketID", middleware.RequireAdmin(), ticketHandler.HandleDeleteTicket)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Ticketeria API"
	docs.SwaggerInfo.Description = "Event ticketing API with tiered inventory."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
