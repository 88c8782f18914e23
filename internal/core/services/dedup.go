package services

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"model-mirror-service/internal/core/domain"
)

// Reduce keeps one descriptor per logical name, sorted by name.
//
// On a collision within the same region the newer training job wins; job
// names embed a YYYYMMDDHHMMSS timestamp so string order is age order. On a
// collision across regions the first descriptor seen is kept. Whether that is
// the intended policy is still open; until it is settled the behavior is
// preserved as is.
func Reduce(descs []domain.ModelDescriptor) []domain.ModelDescriptor {
	byName := make(map[string]int, len(descs))
	out := make([]domain.ModelDescriptor, 0, len(descs))

	for _, d := range descs {
		i, seen := byName[d.LogicalName]
		if !seen {
			byName[d.LogicalName] = len(out)
			out = append(out, d)
			continue
		}

		existing := out[i]
		if existing.Region != d.Region {
			log.WithFields(log.Fields{
				"model": d.LogicalName,
				"kept":  existing.Region,
				"other": d.Region,
			}).Warn("duplicate model name across regions, keeping first seen")
			continue
		}
		if d.JobIdentifier > existing.JobIdentifier {
			out[i] = d
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].LogicalName < out[b].LogicalName
	})
	return out
}
