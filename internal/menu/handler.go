package menu

import (
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/menulingua/menulingua/internal/catalog"
)

type Handler struct {
	logger   apt.Logger
	config   *apt.Config
	tlm      *telemetry.HTTP
	provider catalog.Provider
}

func NewHandler(provider catalog.Provider, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
		provider: provider,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menus", func(r chi.Router) {
		r.Get("/{id}", h.GetMenuView)
	})
}

// MenuView is a filtered, grouped rendering of one menu.
type MenuView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Language string    `json:"language"`
	Sections []Section `json:"sections"`
}

// GetMenuView fetches a menu and applies the diner's allergen exclusions
// (?exclude=nuts,shellfish) and required dietary tags (?require=vegan),
// grouped by section label in the requested language (?lang=es).
func (h *Handler) GetMenuView(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenuView")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid menu id", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	m, err := h.provider.FetchMenu(ctx, id)
	if err != nil {
		log.Info("catalog unavailable", "menu_id", id.String(), "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Catalog unavailable")
		return
	}

	lang := catalog.ParseLanguage(r.URL.Query().Get("lang"))
	excluded := splitParam(r.URL.Query().Get("exclude"))
	required := splitParam(r.URL.Query().Get("require"))

	visible := Filter(m.Dishes, excluded, required)

	view := MenuView{
		ID:       m.ID,
		Name:     m.Name,
		Language: string(lang),
		Sections: GroupBySection(visible, lang),
	}

	apt.RespondSuccess(w, view)
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
