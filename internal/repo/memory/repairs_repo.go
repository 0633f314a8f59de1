package memory

import (
	"context"
	"sync"
	"time"

	"github.com/repairlab/repairhub/internal/domain/repair"
)

type RepairsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]repair.Repair
}

func NewRepairsRepo() *RepairsRepo {
	return &RepairsRepo{
		nextID: 1,
		items:  make(map[int64]repair.Repair),
	}
}

func (r *RepairsRepo) Create(ctx context.Context, req repair.CreateRepairRequest) (repair.Repair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	rep := repair.Repair{
		ID:        r.nextID,
		Date:      req.Date,
		UserID:    req.UserID,
		Status:    repair.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.items[rep.ID] = rep

	return rep, nil
}

func (r *RepairsRepo) List(ctx context.Context) ([]repair.Repair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []repair.Repair

	for id := int64(1); id < r.nextID; id++ {
		rep, ok := r.items[id]
		if ok && rep.Status == repair.StatusPending {
			out = append(out, rep)
		}
	}

	return out, nil
}

func (r *RepairsRepo) GetByID(ctx context.Context, id int64) (repair.Repair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.items[id]

	if !ok || rep.Status != repair.StatusPending {
		return repair.Repair{}, repair.ErrNotFound
	}

	return rep, nil
}

func (r *RepairsRepo) Complete(ctx context.Context, id int64) (repair.Repair, error) {
	return r.transition(id, repair.StatusCompleted)
}

func (r *RepairsRepo) Cancel(ctx context.Context, id int64) (repair.Repair, error) {
	return r.transition(id, repair.StatusCancelled)
}

func (r *RepairsRepo) transition(id int64, to string) (repair.Repair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.items[id]

	if !ok || rep.Status != repair.StatusPending {
		return repair.Repair{}, repair.ErrNotFound
	}

	rep.Status = to
	rep.UpdatedAt = time.Now()
	r.items[id] = rep

	return rep, nil
}
