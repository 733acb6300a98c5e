package feature

// augmentFatigue scores schedule load from the rest and density columns
// the earlier augmenters produced. Negative is tired, positive rested.
func augmentFatigue(rows []Row) {
	for i := range rows {
		rows[i].Home.Fatigue = fatigueScore(rows[i].Home)
		rows[i].Away.Fatigue = fatigueScore(rows[i].Away)
	}
}

func fatigueScore(side SideFeatures) int {
	score := 0
	if side.BackToBack {
		score--
	}
	if side.ThreeInFour {
		score -= 2
	}
	if side.FourInSix {
		score -= 3
	}
	if side.RestDays != nil {
		switch {
		case *side.RestDays >= 3:
			score += 2
		case *side.RestDays == 2:
			score++
		}
	}
	switch {
	case side.RoadTripLength >= 5:
		score -= 2
	case side.RoadTripLength >= 3:
		score--
	}
	return score
}
