package model

type Holiday struct {
	Date string `json:"date" bson:"date"`
	Name string `json:"name" bson:"name"`
}
