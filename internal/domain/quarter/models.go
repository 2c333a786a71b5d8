package quarter

import (
	"fmt"
	"time"
)

const TableName = "quarters"

type Quarter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ID returns the identifier of quarter n (1-4) of year.
func ID(year, n int) string {
	return fmt.Sprintf("%d-Q%d", year, n)
}

// Calendar returns the four calendar quarters of year, none active.
func Calendar(year int, now time.Time) []Quarter {
	out := make([]Quarter, 0, 4)
	for n := 1; n <= 4; n++ {
		start := time.Date(year, time.Month(3*(n-1)+1), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, Quarter{
			ID:        ID(year, n),
			Name:      fmt.Sprintf("Q%d", n),
			Year:      year,
			StartDate: start,
			EndDate:   start.AddDate(0, 3, -1),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

func sampleQuarters() []Quarter {
	now := time.Now().UTC()
	rows := Calendar(now.Year(), now)
	rows[0].IsActive = true
	return rows
}
