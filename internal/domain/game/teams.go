package game

import "strings"

// NBA stats API team IDs to tricodes. Stable since the 2014 Charlotte
// rename; new franchises require a code change.
var teamIDToCode = map[int64]string{
	1610612737: "ATL",
	1610612738: "BOS",
	1610612739: "CLE",
	1610612740: "NOP",
	1610612741: "CHI",
	1610612742: "DAL",
	1610612743: "DEN",
	1610612744: "GSW",
	1610612745: "HOU",
	1610612746: "LAC",
	1610612747: "LAL",
	1610612748: "MIA",
	1610612749: "MIL",
	1610612750: "MIN",
	1610612751: "BKN",
	1610612752: "NYK",
	1610612753: "ORL",
	1610612754: "IND",
	1610612755: "PHI",
	1610612756: "PHX",
	1610612757: "POR",
	1610612758: "SAC",
	1610612759: "SAS",
	1610612760: "OKC",
	1610612761: "TOR",
	1610612762: "UTA",
	1610612763: "MEM",
	1610612764: "WAS",
	1610612765: "DET",
	1610612766: "CHA",
}

var teamNameToCode = map[string]string{
	"ATLANTA HAWKS":          "ATL",
	"BOSTON CELTICS":         "BOS",
	"BROOKLYN NETS":          "BKN",
	"CHARLOTTE HORNETS":      "CHA",
	"CHICAGO BULLS":          "CHI",
	"CLEVELAND CAVALIERS":    "CLE",
	"DALLAS MAVERICKS":       "DAL",
	"DENVER NUGGETS":         "DEN",
	"DETROIT PISTONS":        "DET",
	"GOLDEN STATE WARRIORS":  "GSW",
	"HOUSTON ROCKETS":        "HOU",
	"INDIANA PACERS":         "IND",
	"LOS ANGELES CLIPPERS":   "LAC",
	"LOS ANGELES LAKERS":     "LAL",
	"MEMPHIS GRIZZLIES":      "MEM",
	"MIAMI HEAT":             "MIA",
	"MILWAUKEE BUCKS":        "MIL",
	"MINNESOTA TIMBERWOLVES": "MIN",
	"NEW ORLEANS PELICANS":   "NOP",
	"NEW YORK KNICKS":        "NYK",
	"OKLAHOMA CITY THUNDER":  "OKC",
	"ORLANDO MAGIC":          "ORL",
	"PHILADELPHIA 76ERS":     "PHI",
	"PHOENIX SUNS":           "PHX",
	"PORTLAND TRAIL BLAZERS": "POR",
	"SACRAMENTO KINGS":       "SAC",
	"SAN ANTONIO SPURS":      "SAS",
	"TORONTO RAPTORS":        "TOR",
	"UTAH JAZZ":              "UTA",
	"WASHINGTON WIZARDS":     "WAS",

	// Short forms the scoreboard and odds feeds use interchangeably.
	"LA CLIPPERS":   "LAC",
	"LA LAKERS":     "LAL",
	"GOLDEN STATE":  "GSW",
	"OKLAHOMA CITY": "OKC",
	"NEW ORLEANS":   "NOP",
	"SAN ANTONIO":   "SAS",
	"PORTLAND":      "POR",
}

var eastTeams = map[string]bool{
	"ATL": true, "BOS": true, "BKN": true, "CHA": true, "CHI": true,
	"CLE": true, "DET": true, "IND": true, "MIA": true, "MIL": true,
	"NYK": true, "ORL": true, "PHI": true, "TOR": true, "WAS": true,
}

// CodeForTeamID resolves an NBA stats numeric team ID to its tricode.
func CodeForTeamID(id int64) (string, bool) {
	code, ok := teamIDToCode[id]
	return code, ok
}

// CodeForTeamName resolves a full team name (or a known short form) to
// its tricode, case-insensitively. Unknown names return ok=false; the
// caller decides whether a degraded fallback is acceptable.
func CodeForTeamName(name string) (string, bool) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}
	if code, ok := teamNameToCode[key]; ok {
		return code, true
	}
	if len(key) == 3 {
		if _, ok := eastTeams[key]; ok {
			return key, true
		}
		for _, code := range teamIDToCode {
			if code == key {
				return key, true
			}
		}
	}
	return "", false
}

// DegradedCode is the last-resort truncation for names nothing else
// resolved. Callers must log its use; it can produce wrong codes.
func DegradedCode(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	if len(key) > 3 {
		key = key[:3]
	}
	return key
}

// IsEasternConference reports whether a tricode belongs to the East.
func IsEasternConference(code string) bool {
	return eastTeams[strings.ToUpper(code)]
}

// KnownCodes returns all thirty tricodes, unordered.
func KnownCodes() []string {
	out := make([]string, 0, len(teamIDToCode))
	for _, code := range teamIDToCode {
		out = append(out, code)
	}
	return out
}
