package injury

import (
	"strings"
	"time"
)

// Report is one player line from the league injury report.
type Report struct {
	Team       string
	PlayerName string
	Status     string
	ReportDate time.Time
}

// PlayerStat is one player's per-game scoring line, used to rank each
// team's key scorers when weighting injuries.
type PlayerStat struct {
	Player string
	Team   string
	PPG    float64
}

// StatusWeight maps an injury status to its impact weight. Unknown
// statuses weigh zero.
func StatusWeight(status string) float64 {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "out":
		return 1.0
	case "doubtful":
		return 0.5
	case "questionable":
		return 0.25
	case "probable":
		return 0.1
	default:
		return 0
	}
}
