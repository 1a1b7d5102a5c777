package api

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"signal_board/internal/auth"
	"signal_board/internal/board"
	"signal_board/internal/models"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

const maxBody = 1 << 20

type Handler struct {
	board Board
	jwt   *auth.JWTManager
}

func NewHandler(b Board, jwt *auth.JWTManager) *Handler {
	return &Handler{board: b, jwt: jwt}
}

type stepResponse struct {
	Name   string           `json:"name"`
	Status board.StepStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

type outcomeResponse struct {
	Signal  *models.TradingSignal `json:"signal,omitempty"`
	Removed bool                  `json:"removed,omitempty"`
	Steps   []stepResponse        `json:"steps"`
}

func steps(in []board.StepResult) []stepResponse {
	out := make([]stepResponse, len(in))
	for i, s := range in {
		out[i] = stepResponse{Name: s.Name, Status: s.Status}
		if s.Err != nil {
			out[i].Error = s.Err.Error()
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("api: encode response: %v", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, status int, out board.Outcome, err error) {
	if err != nil {
		writeError(w, err, &out)
		return
	}
	writeJSON(w, status, outcomeResponse{Signal: out.Signal, Removed: out.Removed, Steps: steps(out.Steps)})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

// ListSignals — ?view=active|pending|closed|all
func (h *Handler) ListSignals(w http.ResponseWriter, r *http.Request) {
	var list []*models.TradingSignal
	switch view := r.URL.Query().Get("view"); view {
	case "", "all":
		list = h.board.Signals()
	case "active":
		list = h.board.Views().Active
	case "pending":
		list = h.board.Views().Pending
	case "closed":
		list = h.board.Views().Closed
	default:
		writeError(w, &signal.ValidationError{Field: "view", Reason: "unknown view " + view}, nil)
		return
	}
	if list == nil {
		list = []*models.TradingSignal{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetSignal(w http.ResponseWriter, r *http.Request) {
	s, err := h.board.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) CreateSignal(w http.ResponseWriter, r *http.Request) {
	var form models.SignalForm
	if !decode(w, r, &form) {
		return
	}
	out, err := h.board.Create(r.Context(), form)
	h.respond(w, http.StatusCreated, out, err)
}

func (h *Handler) EditSignal(w http.ResponseWriter, r *http.Request) {
	var form models.SignalForm
	if !decode(w, r, &form) {
		return
	}
	out, err := h.board.Edit(r.Context(), chi.URLParam(r, "id"), form)
	h.respond(w, http.StatusOK, out, err)
}

type levelRequest struct {
	Op             string `json:"op"` // add | remove | set
	Category       string `json:"category"`
	LevelID        string `json:"levelId"`
	Price          string `json:"price"`
	NotifyTelegram *bool  `json:"notifyTelegram,omitempty"`
}

// EditLevel — одна операция над уровнем, дальше обычное редактирование.
func (h *Handler) EditLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if !decode(w, r, &req) {
		return
	}
	cat, err := models.ParseCategory(req.Category)
	if err != nil {
		writeError(w, &signal.ValidationError{Field: "category", Reason: err.Error()}, nil)
		return
	}

	id := chi.URLParam(r, "id")
	current, err := h.board.Get(id)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	form, err := board.ApplyLevelOp(current, req.Op, cat, req.LevelID, req.Price)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	form.NotifyTelegram = req.NotifyTelegram

	out, err := h.board.Edit(r.Context(), id, form)
	h.respond(w, http.StatusOK, out, err)
}

type statusRequest struct {
	Comments       *string `json:"comments,omitempty"`
	TradingViewURL *string `json:"tradingViewUrl,omitempty"`
	RiskReward     *string `json:"reward,omitempty"`
	NotifyTelegram *bool   `json:"notifyTelegram,omitempty"`
}

func (s statusRequest) fields() models.StatusFields {
	return models.StatusFields{Comments: s.Comments, TradingViewURL: s.TradingViewURL, RiskReward: s.RiskReward}
}

func (s statusRequest) silent() bool {
	return s.NotifyTelegram != nil && !*s.NotifyTelegram
}

type activateRequest struct {
	statusRequest
	ActivationType string `json:"activationType"`
	ManualPrice    string `json:"manualPrice"`
}

func (h *Handler) ActivateSignal(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.board.Activate(r.Context(), chi.URLParam(r, "id"), board.Activation{
		Mode:   signal.ActivationMode(strings.ToLower(req.ActivationType)),
		Price:  req.ManualPrice,
		Fields: req.fields(),
		Silent: req.silent(),
	})
	h.respond(w, http.StatusOK, out, err)
}

type hitRequest struct {
	statusRequest
	UpdateType  string `json:"updateType"` // entry | takeProfit | stopLoss | completed
	TargetIndex int    `json:"targetIndex"`
}

func (h *Handler) ReportHit(w http.ResponseWriter, r *http.Request) {
	var req hitRequest
	if !decode(w, r, &req) {
		return
	}
	kind, err := signal.ParseEventKind(req.UpdateType)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	out, err := h.board.ReportHit(r.Context(), chi.URLParam(r, "id"), board.Hit{
		Kind:   kind,
		Level:  req.TargetIndex,
		Fields: req.fields(),
		Silent: req.silent(),
	})
	h.respond(w, http.StatusOK, out, err)
}

func (h *Handler) RemoveSignal(w http.ResponseWriter, r *http.Request) {
	out, err := h.board.Remove(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, out, err)
}

func (h *Handler) ResendRollUp(w http.ResponseWriter, r *http.Request) {
	out, err := h.board.ResendRollUp(r.Context())
	h.respond(w, http.StatusOK, out, err)
}

type tokenRequest struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// IssueToken — выдача токена трейдеру (только admin).
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, &signal.ValidationError{Field: "username", Reason: "Username is required"}, nil)
		return
	}
	// id уходит в profiles.id (uuid), поэтому только uuid
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		req.ID = uuid.NewString()
	} else if _, err := uuid.Parse(req.ID); err != nil {
		writeError(w, &signal.ValidationError{Field: "id", Reason: "User id must be a UUID"}, nil)
		return
	}
	if req.Role != models.RoleAdmin {
		req.Role = models.RoleTrader
	}

	user := models.User{ID: req.ID, Username: req.Username, Role: req.Role}
	token, err := h.jwt.Generate(user)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}
