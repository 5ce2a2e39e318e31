package model

type OpeningHours struct {
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	ClosedDay string `json:"closed_day"`
	Hours     string `json:"hours"`
	Days      string `json:"days"`
}

type OpenStatus struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Open   bool   `json:"open"`
	Reason string `json:"reason,omitempty"`
}
