package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"table_id",
			"name",
			"party_size",
			"date",
			"time",
			"phone",
			"duration_min",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"table_id": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"merged_tables": bson.M{
				"bsonType": "array",
				"maxItems": 2,
				"items": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  1,
				},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"party_size": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  50,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9][0-9]{6,14}$`,
			},

			"duration_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"calendar_event_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
