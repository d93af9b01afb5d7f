package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRef is a single relationship edge: one entry in a followers, following
// or likes list. Edges are compared by the referenced user id, never by
// position in the list.
type UserRef struct {
	User primitive.ObjectID `bson:"user" json:"user"`
}

// User is one document in the users collection. Followers and following are
// embedded in the document itself; there is no separate join collection.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Avatar     string             `bson:"avatar" json:"avatar"`
	Bio        string             `bson:"bio" json:"bio"`
	Occupation string             `bson:"occupation" json:"occupation"`
	Followers  []UserRef          `bson:"followers" json:"followers"`
	Following  []UserRef          `bson:"following" json:"following"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsFollowedBy reports whether id already has a follower edge on u.
func (u *User) IsFollowedBy(id primitive.ObjectID) bool {
	for _, ref := range u.Followers {
		if ref.User == id {
			return true
		}
	}
	return false
}

// IsFollowing reports whether u has a following edge to id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, ref := range u.Following {
		if ref.User == id {
			return true
		}
	}
	return false
}

// FollowCounts is the result of a follow/unfollow operation.
type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}
