package post

import "time"

// Post is a single blog entry. ID and CreatedDate are assigned by the store
// and never change afterwards; only Title and Text are mutable.
type Post struct {
	ID          int64     `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Text        string    `json:"text" bson:"text"`
	Author      string    `json:"author" bson:"author"` // subject of the authoring user
	CreatedDate time.Time `json:"createdDate" bson:"createdDate"`
}

// Input is the typed form submission accepted by the create and update handlers.
type Input struct {
	Title string `form:"title" json:"title"`
	Text  string `form:"text" json:"text"`
}
