package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
)

// TrainerHandler serves trainer records, their schedules and pay history.
type TrainerHandler struct {
	trainerService service.TrainerService
	now            func() time.Time
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService, now: time.Now}
}

type UpdateTrainerStatusRequest struct {
	Status domain.TrainerStatus `json:"status" binding:"required"`
}

// ListTrainers godoc
// @Summary List trainers
// @Description Filters: status, specialties, gender, hireDateFrom, hireDateTo. search matches name, email and phone.
// @Tags Trainers
// @Security BearerAuth
// @Router /trainers [get]
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	page, err := pageRequest(c, "lastName")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.trainerService.List(c.Request.Context(), listQuery(c, service.TrainerFilterKeys), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       MapTrainersToResponse(result.Data, h.now()),
		Pagination: &result.Pagination,
	})
}

// GetTrainer godoc
// @Summary Get a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} TrainerResponse
// @Router /trainers/{id} [get]
func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	trainer, err := h.trainerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapTrainerToResponse(trainer, h.now()))
}

// CreateTrainer godoc
// @Summary Add a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param trainer body domain.Trainer true "Trainer"
// @Success 201 {object} TrainerResponse
// @Router /trainers [post]
func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var trainer domain.Trainer
	if err := bindJSON(c, &trainer); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.trainerService.Create(c.Request.Context(), actorID(c), &trainer)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, MapTrainerToResponse(created, h.now()))
}

// UpdateTrainer godoc
// @Summary Edit a trainer
// @Description Schedule and salary history are managed through their own endpoints.
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Router /trainers/{id} [put]
func (h *TrainerHandler) UpdateTrainer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	patch, err := jsonPatch[domain.Trainer](c)
	if err != nil {
		respondError(c, err)
		return
	}
	trainer, err := h.trainerService.Update(c.Request.Context(), actorID(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapTrainerToResponse(trainer, h.now()))
}

// DeleteTrainer godoc
// @Summary Delete a trainer
// @Description Refused while clients are still assigned to the trainer.
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Router /trainers/{id} [delete]
func (h *TrainerHandler) DeleteTrainer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.trainerService.Delete(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Trainer deleted", nil)
}

// GetTrainerClients godoc
// @Summary Clients assigned to a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Router /trainers/{id}/clients [get]
func (h *TrainerHandler) GetTrainerClients(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	clients, err := h.trainerService.ListClients(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapClientsToResponse(clients, h.now()))
}

// GetSchedule godoc
// @Summary Weekly schedule of a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Router /trainers/{id}/schedule [get]
func (h *TrainerHandler) GetSchedule(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	trainer, err := h.trainerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	schedule := trainer.Schedule
	if schedule == nil {
		schedule = []domain.ScheduleEntry{}
	}
	respondOK(c, http.StatusOK, schedule)
}

// AddScheduleEntry godoc
// @Summary Add a weekly session slot
// @Description Slots of the same trainer may not overlap on the same day.
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param entry body domain.ScheduleEntry true "Slot"
// @Router /trainers/{id}/schedule [post]
func (h *TrainerHandler) AddScheduleEntry(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var entry domain.ScheduleEntry
	if err := bindJSON(c, &entry); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.trainerService.AddScheduleEntry(c.Request.Context(), actorID(c), id, entry)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// RemoveScheduleEntry godoc
// @Summary Remove a session slot
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param entryId path string true "Slot ID"
// @Router /trainers/{id}/schedule/{entryId} [delete]
func (h *TrainerHandler) RemoveScheduleEntry(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	entryID, err := pathID(c, "entryId")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.trainerService.RemoveScheduleEntry(c.Request.Context(), actorID(c), id, entryID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Schedule entry removed", nil)
}

// AddSalaryRecord godoc
// @Summary Append to the pay history of a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param record body domain.SalaryRecord true "Salary record"
// @Router /trainers/{id}/salary [post]
func (h *TrainerHandler) AddSalaryRecord(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var record domain.SalaryRecord
	if err := bindJSON(c, &record); err != nil {
		respondError(c, err)
		return
	}
	trainer, err := h.trainerService.AddSalaryRecord(c.Request.Context(), actorID(c), id, record)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, MapTrainerToResponse(trainer, h.now()))
}

// UpdateStatus godoc
// @Summary Change the availability of a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param body body UpdateTrainerStatusRequest true "New status"
// @Router /trainers/{id}/status [patch]
func (h *TrainerHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req UpdateTrainerStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	trainer, err := h.trainerService.UpdateStatus(c.Request.Context(), actorID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapTrainerToResponse(trainer, h.now()))
}

// UploadAvatar godoc
// @Summary Replace the photo of a trainer
// @Tags Trainers
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path string true "Trainer ID"
// @Param avatar formData file true "JPEG, PNG, GIF or WebP image"
// @Router /trainers/{id}/avatar [post]
func (h *TrainerHandler) UploadAvatar(c *gin.Context) {
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

	trainer, err := h.trainerService.UpdateAvatar(c.Request.Context(), actorID(c), id, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapTrainerToResponse(trainer, h.now()))
}
