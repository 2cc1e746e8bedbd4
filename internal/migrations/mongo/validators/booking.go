package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"buyer_id",
			"service_id",
			"seller_id",
			"event_date",
			"event_type",
			"duration",
			"number_of_guests",
			"total_amount",
			"status",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"buyer_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"seller_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"event_date": bson.M{
				"bsonType": "date",
			},

			"event_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"duration": bson.M{
				"bsonType": "object",
				"required": []string{"value", "unit"},
				"properties": bson.M{
					"value": bson.M{
						"bsonType":         "number",
						"exclusiveMinimum": true,
						"minimum":          0,
					},
					"unit": bson.M{
						"bsonType": "string",
						"enum":     []string{"hours", "days"},
					},
				},
			},

			"number_of_guests": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"total_amount": bson.M{
				"bsonType":         "number",
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"in-progress",
					"completed",
					"cancelled",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"advance-paid",
					"fully-paid",
					"refunded",
				},
			},

			"cancellation_reason": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
