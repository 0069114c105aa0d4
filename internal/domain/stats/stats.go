package stats

// Read-side aggregation results for the dashboards. All maps are keyed by the
// appointment date formatted as YYYY-MM-DD.

// GenderCounts holds per-date appointment counts split by the patient's
// gender. Only exact 'Male' / 'Female' values are counted, anything else is
// excluded from both maps.
type GenderCounts struct {
	Male   map[string]int `json:"male"`
	Female map[string]int `json:"female"`
}

// DepartmentVolume is one row of the top-departments ranking.
type DepartmentVolume struct {
	DepartmentID string `json:"departmentId"`
	Name         string `json:"name"`
	Appointments int    `json:"appointments"`
}

// Totals are the headline counters on the admin dashboard.
type Totals struct {
	Patients     int `json:"patients"`
	Doctors      int `json:"doctors"`
	Appointments int `json:"appointments"`
}
