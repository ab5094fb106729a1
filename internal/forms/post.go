package forms

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/anonto42/yatube/internal/models"
)

// PostForm is the create/edit form of a post. The image travels as a
// separate multipart file.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,numeric"`
	// ImageClear is the "image-clear" checkbox of the edit form.
	ImageClear string `form:"image-clear"`
}

// NewPostForm pre-fills the form from an existing post.
func NewPostForm(post *models.Post) PostForm {
	f := PostForm{Text: post.Text}
	if post.GroupID != nil {
		f.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return f
}

// Clean trims input and validates it against the available groups and the
// optional uploaded image.
func (f *PostForm) Clean(v Validator, groups []models.Group, image *multipart.FileHeader) Errors {
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)

	errs := collect(v, f)

	if f.Group != "" && !errs.Has("group") && f.groupIn(groups) == nil {
		errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	if image != nil {
		if msg := imageError(image); msg != "" {
			errs.Add("image", msg)
		}
	}
	return errs
}

// GroupID returns the selected group id, nil when none was chosen.
// Only meaningful after a successful Clean.
func (f *PostForm) GroupID() *uint {
	if f.Group == "" {
		return nil
	}
	n, err := strconv.ParseUint(f.Group, 10, 64)
	if err != nil {
		return nil
	}
	id := uint(n)
	return &id
}

// ClearImage reports whether the edit form asked to drop the image.
func (f *PostForm) ClearImage() bool {
	return f.ImageClear != ""
}

// Selected reports whether groupID is the chosen group, for templates.
func (f *PostForm) Selected(groupID uint) bool {
	id := f.GroupID()
	return id != nil && *id == groupID
}

func (f *PostForm) groupIn(groups []models.Group) *models.Group {
	id := f.GroupID()
	if id == nil {
		return nil
	}
	for i := range groups {
		if groups[i].ID == *id {
			return &groups[i]
		}
	}
	return nil
}

// imageError returns why fh is not an acceptable image, or "".
func imageError(fh *multipart.FileHeader) string {
	if fh.Size == 0 {
		return "The submitted file is empty."
	}
	file, err := fh.Open()
	if err != nil {
		return "Upload a valid image."
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil || !strings.HasPrefix(mt.String(), "image/") {
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	}
	return ""
}
