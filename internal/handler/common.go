package handler

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/model"
)

// parseObjectID converts a path parameter into an ObjectID, reporting
// malformed ids as a 400 the way the store would for a failed cast.
func parseObjectID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, apperr.BadRequest("Cast to ObjectId failed for value " + hex)
	}
	return id, nil
}

// authorizeOwnership allows the resource owner and any admin through;
// everyone else is rejected.
func authorizeOwnership(u model.User, ownerID bson.ObjectID) error {
	if u.ID == ownerID || u.IsAdmin() {
		return nil
	}
	return apperr.Forbidden("Not authorized to delete comment")
}

func nowUTC() time.Time { return time.Now().UTC() }
