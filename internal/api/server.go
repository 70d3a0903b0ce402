package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
	"github.com/kirillm/debate-bot/internal/storage"
	"github.com/kirillm/debate-bot/pkg/utils"
)

// Initiator запускает дебаты по рыночной возможности
type Initiator interface {
	InitiateDebate(ctx context.Context, opp *domain.MarketOpportunity) (int64, error)
}

type Server struct {
	logger       *utils.Logger
	orchestrator Initiator
	storage      *storage.PostgresStorage
	port         int
	httpServer   *http.Server
}

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DebateDetails полная картина дебатов для GET /debates/{id}
type DebateDetails struct {
	Debate   *domain.Debate         `json:"debate"`
	Messages []domain.DebateMessage `json:"messages"`
	Votes    []domain.Vote          `json:"votes"`
	Decision *domain.Decision       `json:"decision,omitempty"`
	Trades   []domain.Trade         `json:"trades,omitempty"`
}

func NewServer(logger *utils.Logger, orchestrator Initiator, storage *storage.PostgresStorage, port int) *Server {
	return &Server{
		logger:       logger,
		orchestrator: orchestrator,
		storage:      storage,
		port:         port,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/debates", s.handleDebates)
	mux.HandleFunc("/debates/", s.handleDebateByID)
	mux.HandleFunc("/trades", s.handleTrades)

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("Starting HTTP server on %s", addr)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown мягко останавливает HTTP-сервер
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth - health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	s.sendSuccess(w, health)
}

// handleDebates - POST запускает дебаты, GET возвращает последние
func (s *Server) handleDebates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleInitiateDebate(w, r)
	case http.MethodGet:
		s.handleListDebates(w, r)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleInitiateDebate(w http.ResponseWriter, r *http.Request) {
	var opp domain.MarketOpportunity
	if err := json.NewDecoder(r.Body).Decode(&opp); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	debateID, err := s.orchestrator.InitiateDebate(r.Context(), &opp)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.sendError(w, fmt.Sprintf("Failed to initiate debate: %v", err), http.StatusInternalServerError)
		return
	}

	s.logger.Info("Debate %d initiated for %s via API", debateID, opp.Symbol)

	s.sendSuccess(w, map[string]interface{}{
		"debate_id": debateID,
		"symbol":    opp.Symbol,
		"status":    domain.DebateInProgress,
	})
}

func (s *Server) handleListDebates(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 20)
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	symbol := getQueryParam(r, "symbol", "")
	status := getQueryParam(r, "status", "")

	debates, err := s.storage.ListDebates(r.Context(), symbol, status, limit)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to list debates: %v", err), http.StatusInternalServerError)
		return
	}

	s.sendSuccess(w, map[string]interface{}{
		"debates": debates,
		"count":   len(debates),
	})
}

// handleDebateByID - полная картина дебатов: сообщения, голоса, решение, сделки
func (s *Server) handleDebateByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/debates/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.sendError(w, "Invalid debate id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	debate, err := s.storage.GetDebate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.sendError(w, fmt.Sprintf("Debate %d not found", id), http.StatusNotFound)
			return
		}
		s.sendError(w, fmt.Sprintf("Failed to get debate: %v", err), http.StatusInternalServerError)
		return
	}

	messages, err := s.storage.ListMessages(ctx, id)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to get messages: %v", err), http.StatusInternalServerError)
		return
	}

	votes, err := s.storage.ListVotes(ctx, id)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to get votes: %v", err), http.StatusInternalServerError)
		return
	}

	details := DebateDetails{
		Debate:   debate,
		Messages: messages,
		Votes:    votes,
	}

	// Решения может еще не быть: дебаты идут
	decision, err := s.storage.GetDecision(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.sendError(w, fmt.Sprintf("Failed to get decision: %v", err), http.StatusInternalServerError)
		return
	}
	details.Decision = decision

	trades, err := s.storage.ListTradesByDebate(ctx, id)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to get trades: %v", err), http.StatusInternalServerError)
		return
	}
	details.Trades = trades

	s.sendSuccess(w, details)
}

// handleTrades - последние сделки
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := getQueryParamInt(r, "limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	trades, err := s.storage.ListRecentTrades(r.Context(), limit)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to list trades: %v", err), http.StatusInternalServerError)
		return
	}

	s.sendSuccess(w, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// Helper methods
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{
		Success: true,
		Data:    data,
	})
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   message,
	})
}

// Helper function to parse query parameter
func getQueryParam(r *http.Request, key string, defaultValue string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to parse int query parameter
func getQueryParamInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
