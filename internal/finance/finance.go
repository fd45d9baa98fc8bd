// Package finance runs the deterministic monthly projection over the
// saved model inputs. The simulation seeds 100 users in the first month
// and compounds growth from there; all figures are pre-tax.
package finance

import (
	"fmt"
	"math"

	"github.com/koopa0/pocketexpert/internal/store"
)

// ProjectionMonths is the simulation horizon.
const ProjectionMonths = 24

// Row is one line item across the projection horizon.
type Row struct {
	Item   string    `json:"item"`
	Values []float64 `json:"values"`
}

// KPI is a headline metric derived from the simulation.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Projections is the full simulation output.
type Projections struct {
	KPIs []KPI `json:"kpiData"`
	Rows []Row `json:"financialData"`

	// Runway is the first month the cash balance goes negative, 0 when
	// cash never runs out within the horizon. BreakEven is the first
	// profitable month, 0 when never reached.
	Runway    int `json:"-"`
	BreakEven int `json:"-"`
}

// Project simulates ProjectionMonths of operations from the inputs.
func Project(inputs store.FinancialInputs) Projections {
	var (
		totalUsers float64
		cash       = inputs.InitialInvestment
		cumProfit  float64
		breakEven  int
		runway     int
	)

	rows := map[string][]float64{
		"revenue": nil, "cogs": nil, "grossMargin": nil,
		"opEx": nil, "netProfit": nil, "cashBalance": nil,
	}

	for month := 1; month <= ProjectionMonths; month++ {
		newUsers := 100.0
		if totalUsers > 0 {
			newUsers = totalUsers * inputs.MonthlyUserGrowth / 100
		}
		totalUsers += newUsers

		revenue := totalUsers * (inputs.ConversionRate / 100) * inputs.ARPU
		cogs := revenue * inputs.COGSPercentage / 100
		grossMargin := revenue - cogs
		opEx := inputs.MarketingSpend + inputs.Salaries + inputs.SoftwareCosts
		netProfit := grossMargin - opEx
		cash += netProfit
		cumProfit += netProfit

		if breakEven == 0 && netProfit > 0 {
			breakEven = month
		}
		if runway == 0 && cash < 0 {
			runway = month - 1
		}

		rows["revenue"] = append(rows["revenue"], revenue)
		rows["cogs"] = append(rows["cogs"], cogs)
		rows["grossMargin"] = append(rows["grossMargin"], grossMargin)
		rows["opEx"] = append(rows["opEx"], opEx)
		rows["netProfit"] = append(rows["netProfit"], netProfit)
		rows["cashBalance"] = append(rows["cashBalance"], cash)
	}

	runwayLabel := fmt.Sprintf("> %d Months", ProjectionMonths)
	if runway > 0 {
		runwayLabel = fmt.Sprintf("%d Months", runway)
	}
	breakEvenLabel := "N/A"
	if breakEven > 0 {
		breakEvenLabel = fmt.Sprintf("Month %d", breakEven)
	}
	burnLabel := formatCurrency(math.Abs(cumProfit/ProjectionMonths)) + "/mo"

	return Projections{
		KPIs: []KPI{
			{Label: "Projected Runway", Value: runwayLabel},
			{Label: "Break-Even Point", Value: breakEvenLabel},
			{Label: "Avg. Burn Rate", Value: burnLabel},
		},
		Rows: []Row{
			{Item: "Revenue", Values: rows["revenue"]},
			{Item: "COGS", Values: rows["cogs"]},
			{Item: "Gross Margin", Values: rows["grossMargin"]},
			{Item: "Operating Expenses", Values: rows["opEx"]},
			{Item: "Net Profit/Loss", Values: rows["netProfit"]},
			{Item: "Ending Cash Balance", Values: rows["cashBalance"]},
		},
		Runway:    runway,
		BreakEven: breakEven,
	}
}

// KPIValue returns the value of a labelled KPI, empty when absent.
func (p Projections) KPIValue(label string) string {
	for _, k := range p.KPIs {
		if k.Label == label {
			return k.Value
		}
	}
	return ""
}

// formatCurrency renders a dollar amount with thousands separators and
// no cents, matching the app's display format.
func formatCurrency(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			parts = append(parts, ',')
		}
		parts = append(parts, d)
	}
	return sign + "$" + string(parts)
}
