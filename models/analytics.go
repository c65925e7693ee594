package models

// Analytics is the full dashboard snapshot computed from a record set.
type Analytics struct {
	TotalRevenue               float64             `json:"totalRevenue"`
	TotalTransactions          int                 `json:"totalTransactions"`
	AverageTransaction         float64             `json:"averageTransaction"`
	RevenueGrowth              float64             `json:"revenueGrowth"`
	UniqueCustomers            int                 `json:"uniqueCustomers"`
	AvgTransactionsPerCustomer float64             `json:"avgTransactionsPerCustomer"`
	UniqueProducts             int                 `json:"uniqueProducts"`
	BusinessCategories         int                 `json:"businessCategories"`
	UniqueBrands               int                 `json:"uniqueBrands"`
	TopCategories              []CategoryStat      `json:"topCategories"`
	TopProducts                []ProductStat       `json:"topProducts"`
	DailyRevenue               []DailyRevenue      `json:"dailyRevenue"`
	CategoryBreakdown          []CategoryBreakdown `json:"categoryBreakdown"`
	CustomerAnalytics          []CustomerStat      `json:"customerAnalytics"`
}

// CategoryStat is one entry of the top-categories ranking. Value is the
// transaction count; the ranking itself is by revenue.
type CategoryStat struct {
	Name    string  `json:"name"`
	Value   int     `json:"value"`
	Revenue float64 `json:"revenue"`
}

// ProductStat is one entry of the top-products ranking.
type ProductStat struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DailyRevenue is revenue and transaction count for one Date value.
type DailyRevenue struct {
	Date         string  `json:"date"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// CategoryBreakdown is a top category's share of total revenue.
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// CustomerStat is per-customer spend, ranked by average transaction size.
type CustomerStat struct {
	CustomerID       string  `json:"customerId"`
	TransactionCount int     `json:"transactionCount"`
	TotalSpent       float64 `json:"totalSpent"`
	AvgTransaction   float64 `json:"avgTransaction"`
}
