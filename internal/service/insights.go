package service

import (
	"fmt"
	"math"
)

// InsightInput is one product snapshot submitted for analysis.
type InsightInput struct {
	Name   string   `json:"name" validate:"required"`
	Price  float64  `json:"price" validate:"min=0"`
	Rating *float64 `json:"rating" validate:"omitempty,min=0,max=5"`
	Stock  int      `json:"stock" validate:"min=0"`
}

// InsightStats holds aggregate statistics over a product set. Averages are
// nil when no data was available to compute them.
type InsightStats struct {
	Count     int      `json:"count"`
	AvgPrice  *float64 `json:"avg_price"`
	AvgRating *float64 `json:"avg_rating"`
	InStock   int      `json:"in_stock"`
}

// InsightReport pairs the statistics with a human-readable summary.
type InsightReport struct {
	Summary string       `json:"summary"`
	Stats   InsightStats `json:"stats"`
}

// InsightService computes aggregate product insights.
type InsightService struct{}

// NewInsightService creates a new InsightService.
func NewInsightService() *InsightService {
	return &InsightService{}
}

// Calculate aggregates the given products. The average rating only counts
// products that carry a rating; an empty input yields a zero report.
func (s *InsightService) Calculate(products []InsightInput) InsightReport {
	if len(products) == 0 {
		return InsightReport{
			Summary: "No products provided for analysis.",
			Stats:   InsightStats{},
		}
	}

	var (
		totalPrice  float64
		totalRating float64
		rated       int
		inStock     int
	)
	for _, p := range products {
		totalPrice += p.Price
		if p.Rating != nil {
			totalRating += *p.Rating
			rated++
		}
		if p.Stock > 0 {
			inStock++
		}
	}

	stats := InsightStats{
		Count:    len(products),
		AvgPrice: round2(totalPrice / float64(len(products))),
		InStock:  inStock,
	}
	if rated > 0 {
		stats.AvgRating = round2(totalRating / float64(rated))
	}

	return InsightReport{
		Summary: buildSummary(stats),
		Stats:   stats,
	}
}

func buildSummary(stats InsightStats) string {
	summary := fmt.Sprintf("Analyzed %d product%s.", stats.Count, plural(stats.Count))

	if stats.AvgPrice != nil {
		summary += fmt.Sprintf(" Average price is %.2f.", *stats.AvgPrice)
	} else {
		summary += " No price data available."
	}

	if stats.AvgRating != nil {
		summary += fmt.Sprintf(" Average rating is %.1f.", *stats.AvgRating)
	} else {
		summary += " No rating data available."
	}

	if stats.InStock == 1 {
		summary += " 1 item is currently in stock"
	} else {
		summary += fmt.Sprintf(" %d items are currently in stock", stats.InStock)
	}

	outOfStock := stats.Count - stats.InStock
	if outOfStock > 0 {
		summary += fmt.Sprintf(", %d out of stock.", outOfStock)
	} else {
		summary += "."
	}

	return summary
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
