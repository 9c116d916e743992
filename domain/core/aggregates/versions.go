package aggregates

import (
	"sort"

	"github.com/samber/lo"
)

// IsNewerVersion reports whether a is a more recent version than b of the
// same publication. Equal modified dates are ordered by the DOI request date
// and then by the DOI request status, so any two versions are ordered.
func IsNewerVersion(a, b *Publication) bool {
	if !a.modifiedDate.Equal(b.modifiedDate) {
		return a.modifiedDate.After(b.modifiedDate)
	}

	aDate, aStatus := a.doiRequestSortKey()
	bDate, bStatus := b.doiRequestSortKey()
	if !aDate.Equal(bDate) {
		return aDate.After(bDate)
	}
	return aStatus > bStatus
}

// LatestVersion returns the most recent of versions, nil for none
func LatestVersion(versions []*Publication) *Publication {
	if len(versions) == 0 {
		return nil
	}
	return lo.Reduce(versions[1:], func(latest *Publication, candidate *Publication, _ int) *Publication {
		if IsNewerVersion(candidate, latest) {
			return candidate
		}
		return latest
	}, versions[0])
}

// LatestVersions reduces versions of many publications to the most recent
// version of each, ordered by identifier.
func LatestVersions(versions []*Publication) []*Publication {
	grouped := lo.GroupBy(versions, func(p *Publication) string {
		return p.id.String()
	})

	latest := make([]*Publication, 0, len(grouped))
	for _, group := range grouped {
		latest = append(latest, LatestVersion(group))
	}

	sort.Slice(latest, func(i, j int) bool {
		return latest[i].id.String() < latest[j].id.String()
	})
	return latest
}
