package validators

import "go.mongodb.org/mongo-driver/bson"

var clockPattern = "^(([01][0-9]|2[0-3]):[0-5][0-9]|24:00)$"

var WorkingHoursValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"tenant_id",
			"provider_id",
			"hours",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"tenant_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			// empty for the tenant default
			"provider_id": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
			},

			"hours": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "object",
					"required": []string{"start", "end"},
					"properties": bson.M{
						"start": bson.M{"bsonType": "string", "pattern": clockPattern},
						"end":   bson.M{"bsonType": "string", "pattern": clockPattern},
						"breaks": bson.M{
							"bsonType": "array",
							"maxItems": 12,
						},
					},
				},
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
