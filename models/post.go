package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment lives embedded in its parent post. Name and Avatar are the author's
// display fields captured when the comment was written; they are deliberately
// not refreshed when the author later edits their profile.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	Name      string             `bson:"name" json:"name"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Post is one document in the posts collection. Comments (newest first),
// likes and the view counter are embedded, so a single document update covers
// the whole aggregate.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Title     string             `bson:"title" json:"title"`
	Image     string             `bson:"image" json:"image"`
	Text      string             `bson:"text" json:"text"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	Likes     []UserRef          `bson:"likes" json:"likes"`
	Views     int64              `bson:"views" json:"views"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// LikedBy reports whether userID already has an entry in the like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, ref := range p.Likes {
		if ref.User == userID {
			return true
		}
	}
	return false
}

// FindComment returns the embedded comment with the given id, or nil.
func (p *Post) FindComment(commentID primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// PostWithAuthor is a read-time join of a post with its author's current
// display fields, used by the homepage feed.
type PostWithAuthor struct {
	Post         `bson:",inline"`
	AuthorName   string `bson:"authorName" json:"authorName"`
	AuthorAvatar string `bson:"authorAvatar" json:"authorAvatar"`
}

// RankedUser is one row of the top-users ranking.
type RankedUser struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Avatar         string             `json:"avatar"`
	FollowersCount int                `json:"followersCount"`
}
