package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/domain/job"
	"github.com/repairlab/repairhub/internal/domain/repair"
	"github.com/repairlab/repairhub/internal/http/middlewares"
	"github.com/repairlab/repairhub/internal/jobs"
)

type RepairsStore interface {
	Create(ctx context.Context, req repair.CreateRepairRequest) (repair.Repair, error)
	List(ctx context.Context) ([]repair.Repair, error)
	GetByID(ctx context.Context, id int64) (repair.Repair, error)
	Complete(ctx context.Context, id int64) (repair.Repair, error)
	Cancel(ctx context.Context, id int64) (repair.Repair, error)
}

type RepairEnqueuer interface {
	Enqueue(ctx context.Context, t jobs.JobType, payload any) (job.Job, error)
}

type RepairsHandler struct {
	repairs RepairsStore
	queue   RepairEnqueuer
	log     *slog.Logger
}

func NewRepairsHandler(repairs RepairsStore, queue RepairEnqueuer, log *slog.Logger) *RepairsHandler {
	return &RepairsHandler{
		repairs: repairs,
		queue:   queue,
		log:     log,
	}
}

// Create books a repair for the calling client.
func (h *RepairsHandler) Create(ctx *gin.Context) {
	actor, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req repair.CreateRepairRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.UserID = actor.ID

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rep, err := h.repairs.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create repair")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"repair": rep})
}

func (h *RepairsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	list, err := h.repairs.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list repairs")
		return
	}

	if list == nil {
		list = []repair.Repair{}
	}

	ctx.JSON(http.StatusOK, gin.H{"repairs": list})
}

func (h *RepairsHandler) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rep, err := h.repairs.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, repair.ErrNotFound) {
			RespondNotFound(ctx, "Repair not found")
			return
		}
		RespondInternal(ctx, "Could not fetch repair")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"repair": rep})
}

// Complete marks a pending repair as done. A repair that is already
// completed or cancelled is gone from the pending queue, so this is a 404.
func (h *RepairsHandler) Complete(ctx *gin.Context) {
	h.transition(ctx, h.repairs.Complete)
}

func (h *RepairsHandler) Cancel(ctx *gin.Context) {
	h.transition(ctx, h.repairs.Cancel)
}

func (h *RepairsHandler) transition(ctx *gin.Context, fn func(ctx context.Context, id int64) (repair.Repair, error)) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rep, err := fn(cctx, id)

	if err != nil {
		if errors.Is(err, repair.ErrNotFound) {
			RespondNotFound(ctx, "Repair not found")
			return
		}
		RespondInternal(ctx, "Could not update repair")
		return
	}

	h.notifyStatus(cctx, rep)

	ctx.JSON(http.StatusOK, gin.H{"repair": rep})
}

func (h *RepairsHandler) notifyStatus(ctx context.Context, rep repair.Repair) {
	if h.queue == nil {
		return
	}

	_, err := h.queue.Enqueue(ctx, jobs.JobRepairStatus, jobs.RepairStatusPayload{
		RepairID: rep.ID,
		UserID:   rep.UserID,
		Status:   rep.Status,
	})

	// the transition already happened; losing the notification is logged,
	// not surfaced
	if err != nil {
		h.log.WarnContext(ctx, "repair status enqueue failed", "repair_id", rep.ID, "error", err)
	}
}
