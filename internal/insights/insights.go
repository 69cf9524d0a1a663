// Package insights derives the cosmetic diligence numbers shown on listing
// cards and detail pages: simulated churn, traffic, CAC/LTV, risk flags and the
// "revive potential" score. Everything here is a pure function of the listing
// id and its disclosed financials; nothing is persisted and nothing downstream
// makes decisions based on these values.
package insights

import (
	"fmt"
	"math"

	"github.com/adrianstroescu/saasrevive/internal/models"
)

// RiskTone classifies how a risk flag should be rendered.
type RiskTone string

const (
	ToneAmber RiskTone = "amber"
	ToneRose  RiskTone = "rose"
)

// RiskFlag is a short diligence warning attached to a listing card.
type RiskFlag struct {
	Label string   `json:"label"`
	Tone  RiskTone `json:"tone"`
}

// Summary is the per-card metric bundle.
type Summary struct {
	Churn           float64    `json:"churn"`     // monthly, fraction in [0.03, 0.22]
	TrafficK        int        `json:"traffic_k"` // thousands of visits per month
	CAC             int        `json:"cac"`       // dollars
	LTV             int        `json:"ltv"`       // dollars
	Margin          *float64   `json:"margin,omitempty"`
	Multiple        *float64   `json:"multiple,omitempty"` // askingPrice / ARR
	ARR             *int64     `json:"arr,omitempty"`
	RiskFlags       []RiskFlag `json:"risk_flags"`
	RevivePotential int        `json:"revive_potential"` // [12, 95]
}

// Channel is one synthetic acquisition channel with a normalized share.
type Channel struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

// Detail extends Summary with the detail-page extras.
type Detail struct {
	Summary
	Channels      []Channel   `json:"channels"`
	SupportLoad   int         `json:"support_load"`   // tickets per week
	TechDebt      int         `json:"tech_debt"`      // percent
	OpsComplexity int         `json:"ops_complexity"` // percent
	RevenueSeries []float64   `json:"revenue_series"` // 12 normalized monthly points
	CohortGrid    [][]float64 `json:"cohort_grid"`    // 6 cohorts x 12 periods, retention fractions
}

// hashToUnit folds a string into [0, 1) deterministically. Same fold the
// frontend uses, so numbers match across surfaces.
func hashToUnit(input string) float64 {
	var h uint32
	for i := 0; i < len(input); i++ {
		h = h*31 + uint32(input[i])
	}
	return float64(h%10000) / 10000
}

func clamp(n, min, max float64) float64 {
	return math.Max(min, math.Min(max, n))
}

// Summarize derives the card metrics for a listing.
func Summarize(l *models.Listing) Summary {
	churn := clamp(0.03+hashToUnit(l.ID+"ch")*0.18, 0.03, 0.22)
	trafficK := int(math.Round(12 + hashToUnit(l.ID+"tr")*140))
	cac := int(math.Round(120 + hashToUnit(l.ID+"cac")*480))
	ltv := int(math.Round(900 + hashToUnit(l.ID+"ltv")*4200))
	return summarize(l, churn, trafficK, cac, ltv)
}

// Detailed derives the full detail-page bundle. CAC skews slightly higher on
// the detail page, matching the card/detail split the product shipped with.
func Detailed(l *models.Listing) Detail {
	churn := clamp(0.03+hashToUnit(l.ID+"ch")*0.18, 0.03, 0.22)
	trafficK := int(math.Round(12 + hashToUnit(l.ID+"tr")*140))
	cac := int(math.Round(140 + hashToUnit(l.ID+"cac")*520))
	ltv := int(math.Round(900 + hashToUnit(l.ID+"ltv")*4200))

	d := Detail{
		Summary:       summarize(l, churn, trafficK, cac, ltv),
		Channels:      channels(l.ID),
		SupportLoad:   int(math.Round(8 + hashToUnit(l.ID+"sup")*32)),
		TechDebt:      int(math.Round(18 + hashToUnit(l.ID+"debt")*62)),
		OpsComplexity: int(math.Round(22 + hashToUnit(l.ID+"ops")*65)),
		RevenueSeries: revenueSeries(l.ID),
		CohortGrid:    cohortGrid(l.ID),
	}
	return d
}

func summarize(l *models.Listing, churn float64, trafficK, cac, ltv int) Summary {
	s := Summary{
		Churn:    churn,
		TrafficK: trafficK,
		CAC:      cac,
		LTV:      ltv,
	}

	var margin, multiple *float64
	if l.MonthlyRevenue != nil && *l.MonthlyRevenue > 0 {
		mrr := float64(*l.MonthlyRevenue)
		if l.MonthlyCosts != nil {
			m := (mrr - float64(*l.MonthlyCosts)) / mrr
			margin = &m
		}
		if l.AskingPrice != nil {
			x := float64(*l.AskingPrice) / (mrr * 12)
			multiple = &x
		}
		arr := *l.MonthlyRevenue * 12
		s.ARR = &arr
	}
	s.Margin = margin
	s.Multiple = multiple

	if l.TechStack == "" {
		s.RiskFlags = append(s.RiskFlags, RiskFlag{Label: "Unknown stack", Tone: ToneAmber})
	}
	if margin != nil && *margin < 0.25 {
		s.RiskFlags = append(s.RiskFlags, RiskFlag{Label: "Low margin", Tone: ToneAmber})
	}
	if margin != nil && *margin < 0 {
		s.RiskFlags = append(s.RiskFlags, RiskFlag{Label: "Cashflow negative", Tone: ToneRose})
	}
	if multiple != nil && *multiple > 4 {
		s.RiskFlags = append(s.RiskFlags, RiskFlag{Label: "Pricey multiple", Tone: ToneAmber})
	}
	if churn > 0.14 {
		s.RiskFlags = append(s.RiskFlags, RiskFlag{Label: "Churn risk", Tone: ToneAmber})
	}
	if len(s.RiskFlags) == 0 {
		s.RiskFlags = append(s.RiskFlags, RiskFlag{Label: "Clean", Tone: ToneAmber})
	}

	score := 58.0
	if margin != nil {
		score += *margin * 35
	} else {
		score += 4
	}
	if multiple != nil {
		score += (4 - *multiple) * 8
	}
	score -= churn * 50
	if l.TechStack != "" {
		score += 4
	} else {
		score -= 2
	}
	s.RevivePotential = int(clamp(math.Round(score), 12, 95))

	return s
}

func channels(id string) []Channel {
	raw := []Channel{
		{Name: "SEO", Share: clamp(0.25+hashToUnit(id+"seo")*0.45, 0.18, 0.7)},
		{Name: "Paid", Share: clamp(0.05+hashToUnit(id+"paid")*0.25, 0.05, 0.35)},
		{Name: "Partnerships", Share: clamp(0.03+hashToUnit(id+"part")*0.18, 0.03, 0.22)},
	}
	var total float64
	for _, c := range raw {
		total += c.Share
	}
	normalized := make([]Channel, len(raw))
	for i, c := range raw {
		normalized[i] = Channel{Name: c.Name, Share: c.Share / total}
	}
	return normalized
}

// cohortGrid simulates monthly cohort retention. Retention decays down the
// rows (older cohorts) and across the columns (later periods), with a small
// deterministic wobble per cell.
func cohortGrid(id string) [][]float64 {
	grid := make([][]float64, 6)
	for row := range grid {
		cells := make([]float64, 12)
		for col := range cells {
			base := clamp(0.9-float64(row)*0.07-float64(col)*0.045, 0.05, 0.9)
			noise := (hashToUnit(fmt.Sprintf("%s:%d:%d", id, row, col)) - 0.5) * 0.08
			cells[col] = clamp(base+noise, 0.05, 0.9)
		}
		grid[row] = cells
	}
	return grid
}

func revenueSeries(id string) []float64 {
	series := make([]float64, 12)
	for i := range series {
		base := 0.65 + float64(i)*0.03
		wobble := (hashToUnit(id+fmt.Sprintf("%d", i)) - 0.5) * 0.12
		series[i] = clamp(base+wobble, 0.5, 1.15)
	}
	return series
}
