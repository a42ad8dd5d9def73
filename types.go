package restblog

// BlogPost is the single persisted entity: one row of the posts table.
type BlogPost struct {
	ID       int64
	Title    string
	Subtitle string
	Date     string // creation date, e.g. "April 05, 2024"
	Body     string
	Author   string
	ImgURL   string
}

// Fields returns the mutable part of the post, used to prefill the edit form.
func (p BlogPost) Fields() PostFields {
	return PostFields{
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Body:     p.Body,
		Author:   p.Author,
		ImgURL:   p.ImgURL,
	}
}

// PostFields is a validated field set accepted by the store on create and update.
// ID and Date are owned by the store and never travel in this struct.
type PostFields struct {
	Title    string
	Subtitle string
	Body     string
	Author   string
	ImgURL   string
}

// PostFormView carries everything the post form template needs, for both the
// "new post" and "edit post" flows.
type PostFormView struct {
	Heading   string
	Action    string // form action, including ?post_id= when editing
	PostID    int64  // 0 for a new post
	Form      PostForm
	Errors    ValidationErrors
	CSRFToken string
}
