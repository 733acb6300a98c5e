package override

import "time"

// Row is one human-supplied correction. GameID is preferred; when it is
// absent the (Date, HomeTeam, AwayTeam) triple is the fallback key.
// Point fields only ever fill nulls in the canonical table.
type Row struct {
	GameID      *int64     `validate:"omitempty,gt=0"`
	Date        *time.Time `validate:"required_without=GameID"`
	HomeTeam    string     `validate:"required_without=GameID,omitempty,len=3,uppercase"`
	AwayTeam    string     `validate:"required_without=GameID,omitempty,len=3,uppercase"`
	HomePoints  *int       `validate:"omitempty,gte=0"`
	AwayPoints  *int       `validate:"omitempty,gte=0"`
	TotalPoints *int       `validate:"omitempty,gte=0"`
}

// Empty reports whether the row carries nothing to apply.
func (r Row) Empty() bool {
	return r.HomePoints == nil && r.AwayPoints == nil && r.TotalPoints == nil
}
