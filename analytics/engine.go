// Package analytics computes the dashboard snapshot from a validated record
// set. Everything here is a pure function over the records; callers are
// responsible for not invoking the engine with an empty set.
package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"ledgerlight/backend/models"
)

// Analyze produces the full analytics snapshot for a non-empty record set.
func Analyze(records []models.Record) models.Analytics {
	totalRevenue := 0.0
	for _, r := range records {
		totalRevenue += price(r)
	}
	totalTransactions := len(records)

	customers := distinct(records, "Customer_ID")
	products := distinct(records, "Product_Service_Name")
	categories := distinct(records, "Category")
	brands := distinct(records, "Brand")

	return models.Analytics{
		TotalRevenue:               totalRevenue,
		TotalTransactions:          totalTransactions,
		AverageTransaction:         totalRevenue / float64(totalTransactions),
		RevenueGrowth:              revenueGrowth(records),
		UniqueCustomers:            customers,
		AvgTransactionsPerCustomer: float64(totalTransactions) / float64(customers),
		UniqueProducts:             products,
		BusinessCategories:         categories,
		UniqueBrands:               brands,
		TopCategories:              topCategories(records),
		TopProducts:                topProducts(records),
		DailyRevenue:               dailyRevenue(records),
		CategoryBreakdown:          categoryBreakdown(records, totalRevenue),
		CustomerAnalytics:          customerAnalytics(records),
	}
}

// revenueGrowth compares the first and second half of the records in their
// given order (upload order, not date order). The split point is floor(n/2),
// so odd-length sets give the smaller share to the first half.
func revenueGrowth(records []models.Record) float64 {
	mid := len(records) / 2
	var first, second float64
	for i, r := range records {
		if i < mid {
			first += price(r)
		} else {
			second += price(r)
		}
	}
	if first <= 0 {
		return 0
	}
	return (second - first) / first * 100
}

// group accumulates count and revenue per key, remembering first-seen key
// order so revenue ties rank in discovery order after the stable sort.
type group struct {
	key     string
	count   int
	revenue float64
}

func groupBy(records []models.Record, field string) []group {
	index := make(map[string]int)
	var groups []group
	for _, r := range records {
		key := r[field]
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].count++
		groups[i].revenue += price(r)
	}
	return groups
}

func sortByRevenue(groups []group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].revenue > groups[j].revenue
	})
}

func topCategories(records []models.Record) []models.CategoryStat {
	groups := groupBy(records, "Category")
	sortByRevenue(groups)
	if len(groups) > 6 {
		groups = groups[:6]
	}

	stats := make([]models.CategoryStat, len(groups))
	for i, g := range groups {
		stats[i] = models.CategoryStat{Name: g.key, Value: g.count, Revenue: g.revenue}
	}
	return stats
}

func topProducts(records []models.Record) []models.ProductStat {
	groups := groupBy(records, "Product_Service_Name")
	sortByRevenue(groups)
	if len(groups) > 5 {
		groups = groups[:5]
	}

	stats := make([]models.ProductStat, len(groups))
	for i, g := range groups {
		stats[i] = models.ProductStat{Name: g.key, Count: g.count, Revenue: g.revenue}
	}
	return stats
}

// dailyRevenue groups by the exact Date string (no normalization) and then
// sorts ascending by the parsed calendar date.
func dailyRevenue(records []models.Record) []models.DailyRevenue {
	groups := groupBy(records, "Date")

	days := make([]models.DailyRevenue, len(groups))
	for i, g := range groups {
		days[i] = models.DailyRevenue{Date: g.key, Revenue: g.revenue, Transactions: g.count}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return parseDate(days[i].Date).Before(parseDate(days[j].Date))
	})
	return days
}

func categoryBreakdown(records []models.Record, totalRevenue float64) []models.CategoryBreakdown {
	top := topCategories(records)
	breakdown := make([]models.CategoryBreakdown, len(top))
	for i, cat := range top {
		breakdown[i] = models.CategoryBreakdown{
			Category:   cat.Name,
			Revenue:    cat.Revenue,
			Percentage: cat.Revenue / totalRevenue * 100,
		}
	}
	return breakdown
}

func customerAnalytics(records []models.Record) []models.CustomerStat {
	groups := groupBy(records, "Customer_ID")

	stats := make([]models.CustomerStat, len(groups))
	for i, g := range groups {
		stats[i] = models.CustomerStat{
			CustomerID:       g.key,
			TransactionCount: g.count,
			TotalSpent:       g.revenue,
			AvgTransaction:   g.revenue / float64(g.count),
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].AvgTransaction > stats[j].AvgTransaction
	})
	return stats
}

func distinct(records []models.Record, field string) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r[field]] = struct{}{}
	}
	return len(seen)
}

// price reads a record's Price field. Records reach the engine validated, so
// a parse failure counts as zero rather than poisoning the totals.
func price(r models.Record) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r["Price"]), 64)
	if err != nil {
		return 0
	}
	return v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02T15:04:05Z07:00",
	"02-01-2006",
}

// parseDate tries the date formats seen in uploads; unparseable strings sort
// first via the zero time.
func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
