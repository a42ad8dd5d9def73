package restblog

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// PostPath is the site-relative URL of a post's detail page.
func PostPath(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10)
}

// EditPath is the site-relative URL of a post's edit form.
func EditPath(id int64) string {
	return "/edit?post_id=" + strconv.FormatInt(id, 10)
}

// DeletePath is the site-relative URL that deletes a post.
func DeletePath(id int64) string {
	return "/delete?post_id=" + strconv.FormatInt(id, 10)
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) == 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
