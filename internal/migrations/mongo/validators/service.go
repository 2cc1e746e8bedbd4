package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"seller_id",
			"name",
			"category",
			"description",
			"pricing",
			"location",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"seller_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"category": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Flowers",
					"Décor",
					"Priest Services",
					"Music/Band",
					"Tent & Furniture",
					"Chairs & Basic Necessities",
				},
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 10,
				"maxLength": 2000,
			},

			"pricing": bson.M{
				"bsonType": "object",
				"required": []string{"base_price"},
				"properties": bson.M{
					"base_price": bson.M{
						"bsonType":         "number",
						"exclusiveMinimum": true,
						"minimum":          0,
					},
					"price_type": bson.M{
						"bsonType": "string",
						"enum": []string{
							"per hour",
							"per day",
							"per event",
							"per item",
						},
					},
				},
			},

			"availability": bson.M{
				"bsonType": "bool",
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"city"},
				"properties": bson.M{
					"city": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
