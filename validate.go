package restblog

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Form field names shared by the handlers and the form template.
const (
	FieldTitle    = "title"
	FieldSubtitle = "subtitle"
	FieldAuthor   = "author"
	FieldImgURL   = "img_url"
	FieldBody     = "body"
)

// PostForm holds the raw values of a submitted post form.
type PostForm struct {
	Title    string
	Subtitle string
	Author   string
	ImgURL   string
	Body     string
}

// BindPostForm reads the post form fields from the request.
func BindPostForm(c echo.Context) PostForm {
	return PostForm{
		Title:    c.FormValue(FieldTitle),
		Subtitle: c.FormValue(FieldSubtitle),
		Author:   c.FormValue(FieldAuthor),
		ImgURL:   c.FormValue(FieldImgURL),
		Body:     c.FormValue(FieldBody),
	}
}

// FormFromFields builds a prefilled form from stored values.
func FormFromFields(f PostFields) PostForm {
	return PostForm{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		Author:   f.Author,
		ImgURL:   f.ImgURL,
		Body:     f.Body,
	}
}

// Validate checks every field and returns either the cleaned field set or the
// per-field errors. It never returns both.
func (f PostForm) Validate() (PostFields, ValidationErrors) {
	errs := ValidationErrors{}
	required := func(name, value string) string {
		v := strings.TrimSpace(value)
		if v == "" {
			errs[name] = ErrRequiredField
		}
		return v
	}

	fields := PostFields{
		Title:    required(FieldTitle, f.Title),
		Subtitle: required(FieldSubtitle, f.Subtitle),
		Author:   required(FieldAuthor, f.Author),
		ImgURL:   required(FieldImgURL, f.ImgURL),
		Body:     f.Body,
	}
	if strings.TrimSpace(f.Body) == "" {
		errs[FieldBody] = ErrRequiredField
	}
	if _, missing := errs[FieldImgURL]; !missing && !IsAbsoluteURL(fields.ImgURL) {
		errs[FieldImgURL] = ErrInvalidURL
	}

	if len(errs) > 0 {
		return PostFields{}, errs
	}
	return fields, nil
}

// IsAbsoluteURL reports whether s parses as a URL with both a scheme and a host.
func IsAbsoluteURL(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
