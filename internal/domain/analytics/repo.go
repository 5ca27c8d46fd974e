package analytics

import (
	"context"
	"time"
)

// DoctorStats summarizes one doctor's appointment workload.
type DoctorStats struct {
	DoctorID         string         `json:"doctorId"`
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"byStatus"`
	DistinctPatients int            `json:"distinctPatients"`
}

// Dashboard holds the live aggregates shown on the landing page. Every
// figure is computed from the store; a figure with no rows is zero, never a
// placeholder constant.
type Dashboard struct {
	Patients struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		NewToday int `json:"newToday"`
	} `json:"patients"`
	Appointments struct {
		Today     int `json:"today"`
		Pending   int `json:"pending"`
		Completed int `json:"completed"`
	} `json:"appointments"`
	LabOrders struct {
		Open      int `json:"open"`
		Completed int `json:"completed"`
	} `json:"labOrders"`
	Pharmacies struct {
		Active   int `json:"active"`
		LowStock int `json:"lowStockProducts"`
	} `json:"pharmacies"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Repository interface {
	DoctorStats(ctx context.Context, from, to time.Time) ([]*DoctorStats, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}
