package models

// Product is a catalog entry sold by the school store.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Status   string  `json:"status"`
}

func (p Product) RecordID() int64 { return p.ID }
func (p Product) WithID(id int64) Product { p.ID = id; return p }

// ProductSummary aggregates the products collection.
type ProductSummary struct {
	Total        int     `json:"total"`
	AveragePrice float64 `json:"averagePrice"`
	TotalStock   int     `json:"totalStock"`
	ByCategory   CountBy `json:"byCategory"`
}
