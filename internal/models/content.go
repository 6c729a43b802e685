package models

import "fmt"

// ContentType discriminates the two kinds of likeable, mentionable content.
type ContentType string

const (
	ContentTypePost    ContentType = "post"
	ContentTypeComment ContentType = "comment"
	// ContentTypeMessage appears only as a notification target; messages
	// cannot be liked or mentioned in.
	ContentTypeMessage ContentType = "message"
)

// Valid reports whether t is a likeable, mentionable content type.
func (t ContentType) Valid() bool {
	return t == ContentTypePost || t == ContentTypeComment
}

// ContentRef identifies a single post or comment.
type ContentRef struct {
	Type ContentType
	ID   uint
}

// PostRef builds a ContentRef for a post.
func PostRef(id uint) ContentRef { return ContentRef{Type: ContentTypePost, ID: id} }

// CommentRef builds a ContentRef for a comment.
func CommentRef(id uint) ContentRef { return ContentRef{Type: ContentTypeComment, ID: id} }

func (r ContentRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}
