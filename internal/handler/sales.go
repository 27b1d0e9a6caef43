package handler

import (
	"net/http"

	"gestionstock/internal/dto"
	"gestionstock/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// List godoc
// @Summary Historique des ventes
// @Tags sales
// @Produce json
// @Param status query string false "Completed | Returned | all" default(Completed)
// @Param period query string false "today | all" default(today)
// @Success 200 {array} model.Sale
// @Security BearerAuth
// @Router /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	sales, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sale, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Return godoc
// @Summary Retourner une vente
// @Description Remet le stock de chaque ligne et passe la vente au statut Returned, atomiquement.
// @Tags sales
// @Produce json
// @Param id path string true "ID de la vente"
// @Success 200 {object} model.Sale
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/sales/{id}/return [post]
func (h *SalesHandler) Return(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sale, err := h.svc.Return(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Reprint queues the receipt again. 202: printing happens in the background.
func (h *SalesHandler) Reprint(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reprint(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Dashboard godoc
// @Summary Résumé du jour
// @Tags sales
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Security BearerAuth
// @Router /v1/dashboard [get]
func (h *SalesHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
