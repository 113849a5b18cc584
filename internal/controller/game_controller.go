package controller

import (
	"errors"

	"github.com/doorgames/chess-backend/internal/chess"
	"github.com/doorgames/chess-backend/internal/model"
	"github.com/doorgames/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

// maxActiveGames caps how many unfinished games one player may have.
const maxActiveGames = 10

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	Handle       string `json:"handle"`
	Mode         string `json:"mode"`
	MinElo       int    `json:"minElo"`
	MaxElo       int    `json:"maxElo"`
	TargetID     string `json:"targetId"`
	TargetHandle string `json:"targetHandle"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	var req createGameRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	mm, err := matchmakingFromRequest(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	active, err := gc.gameService.ListActiveGames(c.Context(), playerID)
	if err != nil {
		return httpError(c, err)
	}
	if len(active) >= maxActiveGames {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "too many active games",
		})
	}

	gameID, err := gc.gameService.CreateGame(c.Context(), playerID, req.Handle, mm)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func matchmakingFromRequest(req createGameRequest) (model.Matchmaking, error) {
	mode := model.MatchmakingMode(req.Mode)
	if mode == "" {
		mode = model.MatchOpen
	}
	switch mode {
	case model.MatchOpen:
		return model.Matchmaking{Mode: model.MatchOpen}, nil
	case model.MatchElo:
		if req.MinElo < 0 || req.MaxElo < req.MinElo {
			return model.Matchmaking{}, errors.New("invalid rating band")
		}
		return model.Matchmaking{Mode: model.MatchElo, MinElo: req.MinElo, MaxElo: req.MaxElo}, nil
	case model.MatchChallenge:
		if req.TargetID == "" {
			return model.Matchmaking{}, errors.New("challenge requires a target player")
		}
		return model.Matchmaking{
			Mode:         model.MatchChallenge,
			TargetID:     req.TargetID,
			TargetHandle: req.TargetHandle,
		}, nil
	default:
		return model.Matchmaking{}, errors.New("unknown matchmaking mode")
	}
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(c.Context(), gameID, playerID, c.Query("handle"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Context(), c.Params("gameId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	moves, err := gc.gameService.LegalMoves(c.Context(), c.Params("gameId"))
	if err != nil {
		return httpError(c, err)
	}
	if moves == nil {
		moves = []string{}
	}
	return c.JSON(fiber.Map{"moves": moves})
}

type moveRequest struct {
	Move string `json:"move"`
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := gc.gameService.HandleMove(c.Context(), gameID, playerID, req.Move)
	if err != nil {
		return httpError(c, err)
	}
	state, err := gc.gameService.GetGameState(c.Context(), gameID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"result": result,
		"state":  state,
	})
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	if err := gc.gameService.Resign(c.Context(), c.Params("gameId"), c.Locals("playerID").(string)); err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Game resigned"})
}

func (gc *GameController) OfferDraw(c *fiber.Ctx) error {
	agreed, err := gc.gameService.OfferDraw(c.Context(), c.Params("gameId"), c.Locals("playerID").(string))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Draw offered",
		"agreed":  agreed,
	})
}

func (gc *GameController) AcceptDraw(c *fiber.Ctx) error {
	if err := gc.gameService.AcceptDraw(c.Context(), c.Params("gameId"), c.Locals("playerID").(string)); err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Draw agreed"})
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Context(), c.Params("gameId"), c.Locals("playerID").(string)); err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Game deleted"})
}

func (gc *GameController) ListOpenGames(c *fiber.Ctx) error {
	games, err := gc.gameService.ListOpenGames(c.Context(), c.Locals("playerID").(string))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"games": games})
}

func (gc *GameController) ListMyGames(c *fiber.Ctx) error {
	games, err := gc.gameService.ListActiveGames(c.Context(), c.Locals("playerID").(string))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"games": games})
}

func (gc *GameController) Leaderboard(c *fiber.Ctx) error {
	players, err := gc.gameService.Leaderboard(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"players": players})
}

func (gc *GameController) Me(c *fiber.Ctx) error {
	player, err := gc.gameService.GetPlayer(c.Context(), c.Locals("playerID").(string), c.Query("handle"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(player)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)
	if err := gc.gameService.JoinMatchmaking(c.Context(), playerID, c.Query("handle")); err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"status": "queued"})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	gc.gameService.LeaveMatchmaking(c.Locals("playerID").(string))
	return c.JSON(fiber.Map{"status": "left"})
}

// httpError maps domain errors onto HTTP statuses.
func httpError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrJoinNotAllowed):
		status = fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrGameNotInProgress),
		errors.Is(err, model.ErrNoDrawOffer):
		status = fiber.StatusConflict
	case errors.Is(err, chess.ErrIllegalMove),
		errors.Is(err, chess.ErrInvalidNotation):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
