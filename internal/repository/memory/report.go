package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/report"
)

type reportRepository struct {
	store *Store
}

func (r *reportRepository) ListSchoolPresence(ctx context.Context, day time.Time, filter report.DistrictFilter) ([]report.SchoolPresence, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []report.SchoolPresence
	for _, sch := range r.store.schools {
		if !sch.IsActive {
			continue
		}
		if filter.District != nil && !strings.EqualFold(sch.Address.District, *filter.District) {
			continue
		}
		if filter.Block != nil && !strings.EqualFold(sch.Address.Block, *filter.Block) {
			continue
		}
		out = append(out, report.SchoolPresence{
			SchoolID:        sch.ID,
			Name:            sch.Name,
			Code:            sch.Code,
			Block:           sch.Address.Block,
			District:        sch.Address.District,
			TotalTeachers:   r.store.activeTeachers(sch.ID),
			PresentTeachers: r.store.presentTeachers(sch.ID, day),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].District != out[j].District {
			return out[i].District < out[j].District
		}
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
