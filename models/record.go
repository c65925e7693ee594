package models

// Record is one parsed row of an uploaded file, keyed by header name.
type Record map[string]string

// RequiredColumns are the columns every uploaded file must provide,
// case-sensitive, in reporting order.
var RequiredColumns = []string{
	"Date",
	"Time",
	"Transaction_ID",
	"Customer_ID",
	"Product_Service_Name",
	"Category",
	"Subcategory",
	"Brand",
	"Price",
}

// StoredTransaction is the persisted envelope for one record. The id is the
// per-user counter value assigned when the record was saved.
type StoredTransaction struct {
	ID                 int    `json:"id"`
	UserID             string `json:"userId"`
	UserEmail          string `json:"userEmail"`
	Date               string `json:"Date"`
	Time               string `json:"Time"`
	TransactionID      string `json:"Transaction_ID"`
	CustomerID         string `json:"Customer_ID"`
	ProductServiceName string `json:"Product_Service_Name"`
	Category           string `json:"Category"`
	Subcategory        string `json:"Subcategory"`
	Brand              string `json:"Brand"`
	Price              string `json:"Price"`
	SavedAt            string `json:"savedAt"`
}

// Record projects the stored envelope back to the nine upload columns.
func (t StoredTransaction) Record() Record {
	return Record{
		"Date":                 t.Date,
		"Time":                 t.Time,
		"Transaction_ID":       t.TransactionID,
		"Customer_ID":          t.CustomerID,
		"Product_Service_Name": t.ProductServiceName,
		"Category":             t.Category,
		"Subcategory":          t.Subcategory,
		"Brand":                t.Brand,
		"Price":                t.Price,
	}
}
