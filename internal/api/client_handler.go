package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
)

// ClientHandler serves the member records.
type ClientHandler struct {
	clientService service.ClientService
	now           func() time.Time
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService, now: time.Now}
}

// ListClients godoc
// @Summary List clients
// @Description Filters: status, membershipType, fitnessGoal, fitnessLevel, gender, assignedTrainer, createdAtFrom, createdAtTo. search matches name, email and phone.
// @Tags Clients
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Param sort query string false "e.g. -createdAt,lastName"
// @Param search query string false "Free text"
// @Success 200 {array} ClientListItem
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	page, err := pageRequest(c, "-createdAt")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.clientService.List(c.Request.Context(), listQuery(c, service.ClientFilterKeys), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       MapClientRecordsToResponse(result.Data, h.now()),
		Pagination: &result.Pagination,
	})
}

// GetClient godoc
// @Summary Get a client
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} ClientResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapClientToResponse(client, h.now()))
}

// CreateClient godoc
// @Summary Add a client
// @Tags Clients
// @Security BearerAuth
// @Accept json
// @Param client body domain.Client true "Client"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} ErrorResponse "Invalid input or email in use"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var client domain.Client
	if err := bindJSON(c, &client); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.clientService.Create(c.Request.Context(), actorID(c), &client)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, MapClientToResponse(created, h.now()))
}

// UpdateClient godoc
// @Summary Edit a client
// @Description Fields omitted from the body keep their values.
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	patch, err := jsonPatch[domain.Client](c)
	if err != nil {
		respondError(c, err)
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), actorID(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapClientToResponse(client, h.now()))
}

// DeleteClient godoc
// @Summary Delete a client with its attendance and progress history
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Client deleted", nil)
}

// ListAttendance godoc
// @Summary Attendance history of a client, newest first
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Router /clients/{id}/attendance [get]
func (h *ClientHandler) ListAttendance(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := pageRequest(c, "-checkIn")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.clientService.ListAttendance(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

// RecordAttendance godoc
// @Summary Check a client in
// @Description Only clients with an active membership can check in.
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param entry body domain.AttendanceEntry true "Visit"
// @Router /clients/{id}/attendance [post]
func (h *ClientHandler) RecordAttendance(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var entry domain.AttendanceEntry
	if err := bindJSON(c, &entry); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.clientService.RecordAttendance(c.Request.Context(), actorID(c), id, &entry)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// ListProgress godoc
// @Summary Progress entries of a client, newest first
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Router /clients/{id}/progress [get]
func (h *ClientHandler) ListProgress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := pageRequest(c, "-date")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.clientService.ListProgress(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

// AddProgress godoc
// @Summary Record measurements for a client
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param entry body domain.ProgressEntry true "Measurements"
// @Router /clients/{id}/progress [post]
func (h *ClientHandler) AddProgress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var entry domain.ProgressEntry
	if err := bindJSON(c, &entry); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.clientService.AddProgress(c.Request.Context(), actorID(c), id, &entry)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// UploadAvatar godoc
// @Summary Replace the photo of a client
// @Tags Clients
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path string true "Client ID"
// @Param avatar formData file true "JPEG, PNG, GIF or WebP image"
// @Router /clients/{id}/avatar [post]
func (h *ClientHandler) UploadAvatar(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	file, err := avatarFile(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	client, err := h.clientService.UpdateAvatar(c.Request.Context(), actorID(c), id, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapClientToResponse(client, h.now()))
}

// ClientStats godoc
// @Summary Member base summary
// @Tags Clients
// @Security BearerAuth
// @Success 200 {object} service.ClientStats
// @Router /clients/stats [get]
func (h *ClientHandler) ClientStats(c *gin.Context) {
	stats, err := h.clientService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
