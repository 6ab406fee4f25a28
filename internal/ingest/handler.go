package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/menulingua/menulingua/internal/catalog"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger   apt.Logger
	config   *apt.Config
	tlm      *telemetry.HTTP
	ingestor *Ingestor
	store    catalog.Store
}

type HandlerDeps struct {
	Ingestor *Ingestor
	Store    catalog.Store
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
		ingestor: hd.Ingestor,
		store:    hd.Store,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Post("/dishes", h.ProposeDish)
		r.Get("/dishes", h.ListDishes)
		r.Get("/names", h.ListNames)
	})
}

type DishProposalRequest struct {
	Dish     catalog.Dish `json:"dish"`
	Language string       `json:"language"`
}

// ProposeDish runs a candidate dish through the duplicate matcher and
// inserts it when no existing name scores at or above the threshold.
func (h *Handler) ProposeDish(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ProposeDish")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req DishProposalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if validationErrors := catalog.ValidateDish(&req.Dish); len(validationErrors) > 0 {
		log.Debug("dish proposal failed validation", "errors", len(validationErrors))
		w.WriteHeader(http.StatusUnprocessableEntity)
		apt.RespondSuccess(w, map[string]interface{}{"validation_errors": validationErrors})
		return
	}

	lang := catalog.ParseLanguage(req.Language)

	outcome, err := h.ingestor.Propose(ctx, &req.Dish, lang)
	if err != nil {
		if errors.Is(err, ErrDuplicateDish) {
			log.Info("duplicate dish proposal",
				"name", catalog.Localized(req.Dish.Name, lang),
				"matched_to", outcome.MatchedTo,
				"similarity", outcome.Similarity)
			w.WriteHeader(http.StatusConflict)
			apt.RespondSuccess(w, outcome)
			return
		}
		log.Error("cannot ingest dish", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not ingest dish")
		return
	}

	links := apt.RESTfulLinksFor(outcome.Dish)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, outcome, links...)
}

func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListDishes")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	dishes, err := h.store.ListDishes(ctx)
	if err != nil {
		log.Error("cannot list dishes", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not list dishes")
		return
	}

	apt.RespondSuccess(w, dishes)
}

func (h *Handler) ListNames(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListNames")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	lang := catalog.ParseLanguage(r.URL.Query().Get("lang"))

	names, err := h.store.ListNames(ctx, lang)
	if err != nil {
		log.Error("cannot list catalog names", "error", err, "language", string(lang))
		apt.RespondError(w, http.StatusInternalServerError, "Could not list catalog names")
		return
	}

	apt.RespondSuccess(w, map[string]interface{}{
		"language": string(lang),
		"names":    names,
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
