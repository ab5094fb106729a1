package forms

import "strings"

// CommentForm is the comment submission form under a post.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

func (f *CommentForm) Clean(v Validator) Errors {
	f.Text = strings.TrimSpace(f.Text)
	return collect(v, f)
}
