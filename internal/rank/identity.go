package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"DatasetCatalog/internal/auth"
)

var roleSeverity = map[string]int{
	"USER":       1,
	"MANAGER":    2,
	"ADMIN":      3,
	"SUPERADMIN": 4,
}

// identityRanker orders records by a field of their owning identity.
// Records whose owner cannot be resolved go last in either direction;
// ties keep the storage order.
type identityRanker struct {
	users  UserDirectory
	byRole bool
	desc   bool
}

func (r *identityRanker) Rank(ctx context.Context, records []Ranked) ([]string, error) {
	seen := make(map[string]struct{}, len(records))
	var owners []string
	for _, rec := range records {
		if rec.OwnerID == "" {
			continue
		}
		if _, ok := seen[rec.OwnerID]; ok {
			continue
		}
		seen[rec.OwnerID] = struct{}{}
		owners = append(owners, rec.OwnerID)
	}

	byID := map[string]auth.User{}
	if len(owners) > 0 {
		users, err := r.users.FindUsers(ctx, owners)
		if err != nil {
			return nil, fmt.Errorf("sort by owner: %w", err)
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	sorted := make([]Ranked, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ui, oki := byID[sorted[i].OwnerID]
		uj, okj := byID[sorted[j].OwnerID]
		if !oki || !okj {
			return oki && !okj
		}
		c := r.compare(ui, uj)
		if r.desc {
			return c > 0
		}
		return c < 0
	})

	ids := make([]string, len(sorted))
	for i, rec := range sorted {
		ids[i] = rec.ID
	}
	return ids, nil
}

func (r *identityRanker) compare(a, b auth.User) int {
	if r.byRole {
		return roleSeverity[strings.ToUpper(a.Role)] - roleSeverity[strings.ToUpper(b.Role)]
	}
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}
