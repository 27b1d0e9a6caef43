package handler

import (
	"net/http"

	"gestionstock/internal/dto"
	"gestionstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionsHandler exposes cart sessions: one per till, holding the staged
// cart until it is committed as a sale.
type SessionsHandler struct{ mgr *service.SessionManager }

func NewSessionsHandler(mgr *service.SessionManager) *SessionsHandler {
	return &SessionsHandler{mgr: mgr}
}

func (h *SessionsHandler) session(c *gin.Context) (*service.Session, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	s, err := h.mgr.Get(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// Open godoc
// @Summary Ouvrir une session de caisse
// @Tags sessions
// @Produce json
// @Success 201 {object} dto.SessionResponse
// @Security BearerAuth
// @Router /v1/sessions [post]
func (h *SessionsHandler) Open(c *gin.Context) {
	s, err := h.mgr.Open(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.View())
}

func (h *SessionsHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *SessionsHandler) Close(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.mgr.Close(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SelectClient godoc
// @Summary Choisir le client (vide le panier)
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "ID de session"
// @Param body body dto.SelectClientRequest true "Client"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/sessions/{id}/client [put]
func (h *SessionsHandler) SelectClient(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SelectClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.SelectClient(uuid.MustParse(req.ClientID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// AddItem godoc
// @Summary Ajouter un produit au panier
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "ID de session"
// @Param body body dto.AddItemRequest true "Produit"
// @Success 200 {object} dto.SessionResponse
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/sessions/{id}/items [post]
func (h *SessionsHandler) AddItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.AddItem(uuid.MustParse(req.ProductID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *SessionsHandler) AdjustQuantity(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	var req dto.AdjustQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.AdjustQuantity(productID, req.Delta); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *SessionsHandler) RemoveItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	if err := s.RemoveItem(productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Commit godoc
// @Summary Valider la vente
// @Description Enregistre la vente et décrémente le stock en une seule opération atomique. Le ticket est imprimé ensuite, sans jamais bloquer la réponse.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "ID de session"
// @Param body body dto.CommitRequest false "Options"
// @Success 201 {object} model.Sale
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/sessions/{id}/commit [post]
func (h *SessionsHandler) Commit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.CommitRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	sale, err := s.Commit(c.Request.Context(), service.CommitOptions{ReceiptEmail: req.ReceiptEmail})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}
