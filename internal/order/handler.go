package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/menulingua/menulingua/internal/catalog"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger     apt.Logger
	config     *apt.Config
	tlm        *telemetry.HTTP
	sessions   *SessionStore
	provider   catalog.Provider
	autoReturn time.Duration
}

type HandlerDeps struct {
	Sessions *SessionStore
	Provider catalog.Provider
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	autoReturn := DefaultAutoReturn
	if raw := config.GetStringOrDef("workflow.auto_return", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			autoReturn = d
		}
	}

	return &Handler{
		config:     config,
		logger:     logger,
		tlm:        telemetry.NewHTTP(),
		sessions:   hd.Sessions,
		provider:   hd.Provider,
		autoReturn: autoReturn,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.EndSession)

			r.Post("/items", h.AddItem)
			r.Patch("/items/{itemID}", h.UpdateItemQuantity)
			r.Delete("/items/{itemID}", h.RemoveItem)
			r.Post("/items/{itemID}/respond", h.RespondToItem)

			r.Post("/call-staff", h.CallStaff)
			r.Post("/continue", h.ContinueBrowsing)
			r.Post("/finalize", h.FinalizeOrder)
			r.Post("/new-order", h.StartNewOrder)
		})
	})
}

// Request / response payloads

type SessionCreateRequest struct {
	MenuID   uuid.UUID `json:"menu_id"`
	Language string    `json:"language"`
}

type ItemAddRequest struct {
	DishID    uuid.UUID `json:"dish_id"`
	VariantID uuid.UUID `json:"variant_id,omitempty"`
	Note      string    `json:"note,omitempty"`
}

type ItemQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ItemRespondRequest struct {
	Answer string `json:"answer"`
}

// SessionView is the rendered state the presentation layer draws from.
type SessionView struct {
	ID              uuid.UUID     `json:"id"`
	MenuID          uuid.UUID     `json:"menu_id"`
	Language        string        `json:"language"`
	State           WorkflowState `json:"state"`
	Items           []*LineItem   `json:"items"`
	ItemCount       int           `json:"item_count"`
	Subtotal        float64       `json:"subtotal"`
	UnansweredCount int           `json:"unanswered_count"`
	AllAnswered     bool          `json:"all_answered"`
}

func sessionView(s *Session) SessionView {
	return SessionView{
		ID:              s.ID,
		MenuID:          s.MenuID,
		Language:        string(s.Language),
		State:           s.Workflow.State(),
		Items:           s.Ledger.Items(),
		ItemCount:       s.Ledger.ItemCount(),
		Subtotal:        s.Ledger.Subtotal(),
		UnansweredCount: s.Ledger.UnansweredCount(),
		AllAnswered:     s.Ledger.AllAnswered(),
	}
}

// Session handlers

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateSession")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req SessionCreateRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if req.MenuID == uuid.Nil {
		log.Debug("missing menu id in create session request")
		apt.RespondError(w, http.StatusBadRequest, "menu_id is required")
		return
	}

	menu, err := h.provider.FetchMenu(ctx, req.MenuID)
	if err != nil {
		log.Info("catalog unavailable", "menu_id", req.MenuID.String(), "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Catalog unavailable")
		return
	}

	ledger := NewLedger()
	session := &Session{
		ID:        uuid.New(),
		MenuID:    menu.ID,
		Language:  catalog.ParseLanguage(req.Language),
		Menu:      menu,
		Ledger:    ledger,
		Workflow:  NewWorkflow(ledger, h.autoReturn, h.logger),
		CreatedAt: time.Now(),
	}

	if err := h.sessions.Save(session); err != nil {
		log.Error("cannot save session", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	links := apt.RESTfulLinksFor(session)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, sessionView(session), links...)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSession")
	defer finish()

	log := h.log(r)

	session, ok := h.loadSession(w, r, log)
	if !ok {
		return
	}

	apt.RespondSuccess(w, sessionView(session))
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.EndSession")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	h.sessions.Delete(id)
	apt.RespondSuccess(w, map[string]string{"id": id.String(), "status": "ended"})
}

// Line item handlers

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	log := h.log(r)

	session, ok := h.loadSession(w, r, log)
	if !ok {
		return
	}

	var req ItemAddRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if req.DishID == uuid.Nil {
		apt.RespondError(w, http.StatusBadRequest, "dish_id is required")
		return
	}
	if utf8.RuneCountInString(req.Note) > MaxNoteLength {
		log.Debug("note too long", "length", utf8.RuneCountInString(req.Note))
		apt.RespondError(w, http.StatusBadRequest, "note exceeds maximum length")
		return
	}

	dish := session.Menu.DishByID(req.DishID)
	if dish == nil {
		log.Debug("dish not on menu", "dish_id", req.DishID.String())
		apt.RespondError(w, http.StatusNotFound, "Dish not found on menu")
		return
	}

	item, err := session.Ledger.AddItem(dish, req.VariantID, req.Note, session.Language)
	if err != nil {
		log.Debug("cannot add item", "error", err, "dish_id", req.DishID.String())
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.sessions.Touch(session.ID)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, item)
}

func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemQuantity")
	defer finish()

	log := h.log(r)

	session, item, ok := h.loadSessionItem(w, r, log)
	if !ok {
		return
	}

	var req ItemQuantityRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	session.Ledger.UpdateQuantity(item.Key(), req.Quantity)
	h.sessions.Touch(session.ID)
	apt.RespondSuccess(w, sessionView(session))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveItem")
	defer finish()

	log := h.log(r)

	session, ok := h.loadSession(w, r, log)
	if !ok {
		return
	}

	// Removal is idempotent: an unknown item ID still responds with the
	// current session state.
	itemID, ok := h.parseItemIDParam(w, r, log)
	if !ok {
		return
	}
	if item := session.Ledger.FindByID(itemID); item != nil {
		session.Ledger.RemoveItem(item.Key())
	}

	h.sessions.Touch(session.ID)
	apt.RespondSuccess(w, sessionView(session))
}

func (h *Handler) RespondToItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RespondToItem")
	defer finish()

	log := h.log(r)

	session, item, ok := h.loadSessionItem(w, r, log)
	if !ok {
		return
	}

	var req ItemRespondRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	answer := Answer(req.Answer)
	switch answer {
	case AnswerYes, AnswerNo, AnswerChecking:
	default:
		apt.RespondError(w, http.StatusBadRequest, "answer must be one of: yes, no, checking")
		return
	}

	updated, err := session.Ledger.RespondByID(item.ID, answer)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			log.Debug("response rejected", "item_id", item.ID.String(), "state", string(item.Response))
			apt.RespondError(w, http.StatusConflict, "Response not allowed in current state")
			return
		}
		apt.RespondError(w, http.StatusNotFound, "Line item not found")
		return
	}

	session.Workflow.NoteAnswered()
	h.sessions.Touch(session.ID)
	apt.RespondSuccess(w, updated)
}

// Workflow handlers

func (h *Handler) CallStaff(w http.ResponseWriter, r *http.Request) {
	h.workflowAction(w, r, "Handler.CallStaff", func(s *Session) bool {
		return s.Workflow.CallStaff()
	})
}

func (h *Handler) ContinueBrowsing(w http.ResponseWriter, r *http.Request) {
	h.workflowAction(w, r, "Handler.ContinueBrowsing", func(s *Session) bool {
		return s.Workflow.ContinueBrowsing()
	})
}

func (h *Handler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	h.workflowAction(w, r, "Handler.FinalizeOrder", func(s *Session) bool {
		return s.Workflow.Finalize()
	})
}

func (h *Handler) StartNewOrder(w http.ResponseWriter, r *http.Request) {
	h.workflowAction(w, r, "Handler.StartNewOrder", func(s *Session) bool {
		return s.Workflow.StartNewOrder()
	})
}

func (h *Handler) workflowAction(w http.ResponseWriter, r *http.Request, span string, action func(*Session) bool) {
	w, r, finish := h.tlm.Start(w, r, span)
	defer finish()

	log := h.log(r)

	session, ok := h.loadSession(w, r, log)
	if !ok {
		return
	}

	if !action(session) {
		log.Debug("workflow transition rejected", "session_id", session.ID.String(), "state", string(session.Workflow.State()))
		apt.RespondError(w, http.StatusConflict, "Transition not allowed in current state")
		return
	}

	h.sessions.Touch(session.ID)
	apt.RespondSuccess(w, sessionView(session))
}

// Helpers

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request, log apt.Logger) (*Session, bool) {
	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return nil, false
	}

	session, err := h.sessions.Get(id)
	if err != nil {
		log.Debug("session not found", "id", id.String(), "error", err)
		apt.RespondError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return session, true
}

func (h *Handler) loadSessionItem(w http.ResponseWriter, r *http.Request, log apt.Logger) (*Session, *LineItem, bool) {
	session, ok := h.loadSession(w, r, log)
	if !ok {
		return nil, nil, false
	}

	itemID, ok := h.parseItemIDParam(w, r, log)
	if !ok {
		return nil, nil, false
	}

	item := session.Ledger.FindByID(itemID)
	if item == nil {
		log.Debug("line item not found", "item_id", itemID.String())
		apt.RespondError(w, http.StatusNotFound, "Line item not found")
		return nil, nil, false
	}
	return session, item, true
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) parseItemIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "itemID")
	if idStr == "" {
		log.Debug("missing itemID parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing itemID parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid itemID parameter", "item_id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid itemID parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, out interface{}, log apt.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
