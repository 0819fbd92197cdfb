package estimator

import (
	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/models"
)

// tierFor buckets a player by popularity rank, falling back to experience
// when the roster index carries no rank.
func tierFor(p *models.Player) calibration.Tier {
	if p.PopularityRank > 0 {
		switch {
		case p.PopularityRank <= 12:
			return calibration.TierElite
		case p.PopularityRank <= 72:
			return calibration.TierStarter
		default:
			return calibration.TierDepth
		}
	}

	if p.ExperienceYears >= 3 {
		return calibration.TierStarter
	}
	return calibration.TierDepth
}

// remainingSeasons estimates how many seasons a player has left, bounded
// by the calibration horizon.
func remainingSeasons(p *models.Player, decay calibration.DecayParams) int {
	remaining := decay.TypicalCareerLength - p.ExperienceYears
	if remaining < 1 {
		remaining = 1
	}
	if remaining > decay.HorizonSeasons {
		remaining = decay.HorizonSeasons
	}
	return remaining
}
