package model

// Allocation is the answer to a table search.
type Allocation struct {
	Kind        string   `json:"kind"`
	Tables      []*Table `json:"tables"`
	Capacity    int      `json:"capacity"`
	PartySize   int      `json:"party_size"`
	Zone        Zone     `json:"zone"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	DurationMin int      `json:"duration_min"`
}

type TableAvailability struct {
	TableID     int    `json:"table_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DurationMin int    `json:"duration_min"`
	Available   bool   `json:"available"`
}
