package validators

import "go.mongodb.org/mongo-driver/bson"

// ScopeLockValidator describes the per-scope lock document. The _id is the
// scope key, e.g. "clinic-1|provider:dr-cohen".
var ScopeLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"version",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
