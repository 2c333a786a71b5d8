package questions

import (
	"strconv"
	"strings"
	"time"
)

const (
	QualitativeTable  = "qualitative_questions"
	QuantitativeTable = "quantitative_questions"
)

type Scale string

const (
	ScaleOneToFive  Scale = "1-5"
	ScaleOneToTen   Scale = "1-10"
	ScaleHundred    Scale = "0-100"
	ScalePercentage Scale = "Percentage"
)

var Scales = []Scale{ScaleOneToFive, ScaleOneToTen, ScaleHundred, ScalePercentage}

// Bounds returns the inclusive range of answers the scale accepts.
func (s Scale) Bounds() (lo, hi float64) {
	switch s {
	case ScaleOneToFive:
		return 1, 5
	case ScaleOneToTen:
		return 1, 10
	default:
		return 0, 100
	}
}

// Accepts reports whether answer is a number inside the scale.
// Percentage answers may carry a trailing percent sign.
func (s Scale) Accepts(answer string) bool {
	answer = strings.TrimSpace(answer)
	if s == ScalePercentage {
		answer = strings.TrimSpace(strings.TrimSuffix(answer, "%"))
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return false
	}
	lo, hi := s.Bounds()
	return v >= lo && v <= hi
}

type Qualitative struct {
	ID        string    `json:"id"`
	Question  string    `json:"question" validate:"required,max=500"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Quantitative struct {
	ID        string    `json:"id"`
	Question  string    `json:"question" validate:"required,max=500"`
	Scale     Scale     `json:"scale" validate:"required,oneof=1-5 1-10 0-100 Percentage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type QualitativeStats struct {
	Total int `json:"total"`
}

type QuantitativeStats struct {
	Total          int           `json:"total"`
	ScaleBreakdown map[Scale]int `json:"scaleBreakdown"`
}
