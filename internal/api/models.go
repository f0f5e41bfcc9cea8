package api

import (
	"net/http"
	"strconv"

	"github.com/set-night/mindcoach/internal/domain"
)

type modelView struct {
	domain.AIModel
	Free bool `json:"free"`
}

// Models lists the provider's models; ?free=true keeps only free ones.
// Without a provider client the list is empty.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	freeOnly := false
	if v := r.URL.Query().Get("free"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			Error(w, http.StatusBadRequest, "free must be a boolean")
			return
		}
		freeOnly = b
	}

	views := []modelView{}
	if h.models == nil {
		JSON(w, http.StatusOK, views)
		return
	}
	models, err := h.models.ListModels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, m := range models {
		if freeOnly && !m.IsFree() {
			continue
		}
		views = append(views, modelView{AIModel: m, Free: m.IsFree()})
	}
	JSON(w, http.StatusOK, views)
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	if h.usage == nil {
		Error(w, http.StatusNotFound, "usage metering disabled")
		return
	}
	JSON(w, http.StatusOK, h.usage.Snapshot())
}
