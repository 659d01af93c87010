package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsValidID reports whether id is structurally a storage identifier
// (a 24 character hex ObjectID). It never touches storage.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
