package restblog

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(posts, popFlashes(c)))
}

func (a *App) handlePost(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	post, err := a.Cache.GetPost(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	return Render(c, a.Views.Post(post))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About())
}

func (a *App) handleContact(c echo.Context) error {
	return Render(c, a.Views.Contact())
}

func (a *App) handleNewPostForm(c echo.Context) error {
	return a.renderPostForm(c, 0, PostForm{}, nil)
}

func (a *App) handleNewPost(c echo.Context) error {
	form := BindPostForm(c)
	fields, verrs := form.Validate()
	if verrs != nil {
		return a.renderPostForm(c, 0, form, verrs)
	}
	post, err := a.Store.CreatePost(c.Request().Context(), fields)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return a.renderPostForm(c, 0, form, ValidationErrors{FieldTitle: ErrConflict})
		}
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info().Int64("post_id", post.ID).Str("title", post.Title).Msg("post created")
	if err := addFlash(c, "Post published."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleEditForm(c echo.Context) error {
	id, ok := parseID(c.QueryParam("post_id"))
	if !ok {
		return a.renderNotFound(c)
	}
	post, err := a.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	return a.renderPostForm(c, id, FormFromFields(post.Fields()), nil)
}

func (a *App) handleEdit(c echo.Context) error {
	id, ok := parseID(c.QueryParam("post_id"))
	if !ok {
		return a.renderNotFound(c)
	}
	form := BindPostForm(c)
	fields, verrs := form.Validate()
	if verrs != nil {
		return a.renderPostForm(c, id, form, verrs)
	}
	post, err := a.Store.UpdatePost(c.Request().Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return a.renderNotFound(c)
		case errors.Is(err, ErrConflict):
			return a.renderPostForm(c, id, form, ValidationErrors{FieldTitle: ErrConflict})
		}
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info().Int64("post_id", post.ID).Msg("post updated")
	if err := addFlash(c, "Post updated."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, PostPath(post.ID))
}

// handleDelete removes a post from a plain GET link. There is no ownership
// check: any caller who knows an id can delete it.
func (a *App) handleDelete(c echo.Context) error {
	id, ok := parseID(c.QueryParam("post_id"))
	if !ok {
		return a.renderNotFound(c)
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info().Int64("post_id", id).Msg("post deleted")
	if err := addFlash(c, "Post deleted."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) renderPostForm(c echo.Context, id int64, form PostForm, errs ValidationErrors) error {
	view := PostFormView{
		Heading:   "New Post",
		Action:    "/new-post",
		Form:      form,
		Errors:    errs,
		CSRFToken: CsrfToken(c),
	}
	if id != 0 {
		view.Heading = "Edit Post"
		view.Action = EditPath(id)
		view.PostID = id
	}
	return Render(c, a.Views.PostForm(view))
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /edit\nDisallow: /delete\nDisallow: /new-post\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// parseID accepts only positive decimal ids.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
