package domain

import (
	"time"
)

// Region identifies one of the fixed sales regions.
type Region string

const (
	RegionNorth Region = "North"
	RegionSouth Region = "South"
	RegionEast  Region = "East"
	RegionWest  Region = "West"
)

// Regions lists all regions in enumeration order.
var Regions = []Region{RegionNorth, RegionSouth, RegionEast, RegionWest}

// Product identifies one of the fixed product lines.
type Product string

const (
	ProductA Product = "Product A"
	ProductB Product = "Product B"
	ProductC Product = "Product C"
)

// Products lists all products in enumeration order.
var Products = []Product{ProductA, ProductB, ProductC}

// Record represents a single day of sales activity.
type Record struct {
	Date      time.Time `json:"date"`
	Sales     float64   `json:"sales"`
	Customers int       `json:"customers"`
	Region    Region    `json:"region"`
	Product   Product   `json:"product"`
}

// Dataset is one simulated year of daily sales records. It is generated
// once per run (batch) or per session (dashboard) and treated as
// read-only by every downstream consumer, so concurrent reads need no
// locking.
type Dataset struct {
	Seed    uint64   `json:"seed"`
	Records []Record `json:"records"`
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Sales returns the sales column as a slice in record order.
func (d *Dataset) Sales() []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Sales
	}
	return out
}

// Customers returns the customers column as a float slice in record order.
func (d *Dataset) Customers() []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = float64(r.Customers)
	}
	return out
}

// TotalSales returns the sum of sales over every record.
func (d *Dataset) TotalSales() float64 {
	var total float64
	for _, r := range d.Records {
		total += r.Sales
	}
	return total
}

// RegionSummary holds aggregated sales statistics for one region.
type RegionSummary struct {
	Region       Region  `json:"region"`
	RecordCount  int     `json:"record_count"`
	TotalSales   float64 `json:"total_sales"`
	AvgCustomers float64 `json:"avg_customers"`
}

// ProductSummary holds aggregated sales statistics for one product line.
type ProductSummary struct {
	Product      Product `json:"product"`
	RecordCount  int     `json:"record_count"`
	TotalSales   float64 `json:"total_sales"`
	AvgCustomers float64 `json:"avg_customers"`
}

// FieldStats holds descriptive statistics for one numeric field.
type FieldStats struct {
	Field  string  `json:"field"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}
