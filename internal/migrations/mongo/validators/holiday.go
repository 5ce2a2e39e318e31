package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	timePattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
)

var HolidayValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"date", "name"},
		"properties": bson.M{
			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
		},
	},
}
