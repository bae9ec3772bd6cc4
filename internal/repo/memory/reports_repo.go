package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
)

type ReportsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]report.Report
}

func NewReportsRepo() *ReportsRepo {
	return &ReportsRepo{
		items: make(map[int64]report.Report),
	}
}

func (r *ReportsRepo) Create(_ context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error) {
	rep := report.NewFromCreateRequest(req, owner)

	r.mu.Lock()
	r.nextID++
	rep.ID = r.nextID
	r.items[rep.ID] = rep
	r.mu.Unlock()

	return rep, nil
}

func (r *ReportsRepo) ChangeApproval(_ context.Context, id int64, approved bool) (report.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.items[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}

	rep.Approved = approved
	r.items[id] = rep

	return rep, nil
}

func (r *ReportsRepo) Estimate(_ context.Context, p report.EstimateParams) (*float64, error) {
	r.mu.RLock()
	snapshot := make([]report.Report, 0, len(r.items))
	for _, rep := range r.items {
		snapshot = append(snapshot, rep)
	}
	r.mu.RUnlock()

	// ties on mileage distance resolve by id, as in the SQL stores
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })

	return report.Estimate(snapshot, p), nil
}
