package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/doorgames/chess-backend/internal/config"
	"github.com/doorgames/chess-backend/internal/controller"
	"github.com/doorgames/chess-backend/internal/middleware"
	"github.com/doorgames/chess-backend/internal/service"
	"github.com/doorgames/chess-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	gameManager := service.NewGameManager(st, log)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService, log)

	app := fiber.New(fiber.Config{
		AppName:               "chess-backend",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	app.Use("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	app.Get("/ws/game/:gameId", websocket.New(wsController.HandleGame, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         strings.Split(cfg.AllowedOrigins, ","),
	}))
	app.Get("/ws/matchmaking", websocket.New(wsController.HandleMatchmaking))

	api := app.Group("/api", middleware.EnsurePlayerID())
	api.Get("/me", gameController.Me)
	api.Get("/leaderboard", gameController.Leaderboard)

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gameController.LeaveMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/open", gameController.ListOpenGames)
	gameRoutes.Get("/mine", gameController.ListMyGames)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/moves", gameController.GetLegalMoves)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Post("/:gameId/resign", gameController.Resign)
	gameRoutes.Post("/:gameId/draw/offer", gameController.OfferDraw)
	gameRoutes.Post("/:gameId/draw/accept", gameController.AcceptDraw)
	gameRoutes.Delete("/:gameId", gameController.DeleteGame)

	log.Info("server starting", "addr", cfg.ListenAddr, "db", cfg.DBPath)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
