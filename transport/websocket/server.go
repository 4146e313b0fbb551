package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/gridgame"
)

type gameManager interface {
	Geometry() gridgame.Geometry

	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, ev gridgame.PointerEvent) (*entity.Game, error)
	Restart(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)
}

var ErrUnknownAction = errors.New("unknown action")

// client is one connected presentation layer. The write mutex keeps
// concurrent broadcasts from interleaving frames on the shared connection.
type client struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	playerID string
}

type Server struct {
	logger  *slog.Logger
	manager gameManager

	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[string]*client

	handlers map[string]func(ctx context.Context, cl *client, msg *Message) error
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]*client),
	}

	server.handlers = map[string]func(context.Context, *client, *Message) error{
		"connect":      server.handleConnect,
		"game:new":     server.handleNewGame,
		"game:join":    server.handleJoinGame,
		"game:turn":    server.handleGameTurn,
		"game:restart": server.handleGameRestart,
		"game:leave":   server.handleGameLeave,
	}

	return server
}

// Start - starts the WebSocket server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("WebSocket connection established")

	cl := &client{conn: conn}
	defer that.unregister(cl)

	that.handleMessages(ctx, cl)
}

// handleMessages - reads and dispatches messages until the client goes away.
// All moves of one session arrive through these per-connection loops, which
// keeps them serialized per player.
func (that *Server) handleMessages(ctx context.Context, cl *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := cl.conn.ReadJSON(&message); err != nil {
			log.Info("connection closed", "player_id", cl.playerID, "error", err)
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("error processing message", "error", ErrUnknownAction, "action", message.Action)
			_ = that.sendError(cl, message.Action, "unknown action")
			continue
		}

		if err := handler(ctx, cl, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(cl *client, playerID string) {
	cl.playerID = playerID

	that.clientsMu.Lock()
	that.clients[playerID] = cl
	that.clientsMu.Unlock()
}

func (that *Server) unregister(cl *client) {
	if cl.playerID == "" {
		return
	}

	that.clientsMu.Lock()
	if that.clients[cl.playerID] == cl {
		delete(that.clients, cl.playerID)
	}
	that.clientsMu.Unlock()
}

func (that *Server) sendMessage(cl *client, action string, payload ResponsePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()

	if err = cl.conn.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(cl *client, action, message string) error {
	return that.sendMessage(cl, action, ResponsePayload{Error: message})
}

// broadcastGame pushes the session state to every seated player that is
// still connected.
func (that *Server) broadcastGame(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcastGame")

	for _, player := range game.Players {
		that.clientsMu.RLock()
		cl, ok := that.clients[player.ID]
		that.clientsMu.RUnlock()

		if !ok {
			continue
		}

		if err := that.sendMessage(cl, action, ResponsePayload{Player: player, Game: game}); err != nil {
			log.Error("failed to send game state", "player_id", player.ID, "error", err)
		}
	}
}
