package handler

import (
	"net/http"

	"gestionstock/internal/dto"
	"gestionstock/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientsHandler struct{ svc service.DirectoryService }

func NewClientsHandler(svc service.DirectoryService) *ClientsHandler {
	return &ClientsHandler{svc: svc}
}

// Create godoc
// @Summary Créer un client
// @Tags clients
// @Accept json
// @Produce json
// @Param body body dto.ClientRequest true "Client"
// @Success 201 {object} model.Client
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/clients [post]
func (h *ClientsHandler) Create(c *gin.Context) {
	var req dto.ClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (h *ClientsHandler) List(c *gin.Context) {
	clients, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientsHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cl, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *ClientsHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *ClientsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
