package birthday

// AddComment appends a comment by author.
//
// The new comment's id is the length of the comment list at insertion time,
// not a counter. After a removal the next id can collide with one still held
// by another comment; RemoveComment then acts on the first match.
func (e Event) AddComment(author Identity, content string) (Event, error) {
	if n := len(content); n < 1 || n > MaxCommentBytes {
		return Event{}, ErrInvalidComment
	}
	if len(e.comments) >= MaxComments {
		return Event{}, ErrTooManyComments
	}

	next := e.clone()
	next.comments = append(next.comments, Comment{
		CommentAuthor: author,
		CommentID:     uint64(len(e.comments)),
		Content:       content,
	})
	return next, nil
}

// RemoveComment deletes the first comment with the given id. Only its author
// may do so. Remaining comments keep their ids.
func (e Event) RemoveComment(caller Identity, commentID uint64) (Event, error) {
	pos := e.commentPosition(commentID)
	switch {
	case pos < 0:
		return Event{}, ErrCommentNotFound
	case e.comments[pos].CommentAuthor != caller:
		return Event{}, ErrUnauthorized
	}

	next := e.clone()
	next.comments = append(next.comments[:pos], next.comments[pos+1:]...)
	return next, nil
}
