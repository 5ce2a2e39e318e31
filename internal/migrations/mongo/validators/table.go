package validators

import "go.mongodb.org/mongo-driver/bson"

var TableValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "capacity", "zone"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  50,
			},
			"zone": bson.M{
				"bsonType": "string",
				"enum":     []string{"interior", "terrace"},
			},
		},
	},
}
