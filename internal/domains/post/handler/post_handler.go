package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/service"
	"yatube-backend/internal/shared/auth"
	"yatube-backend/internal/shared/pagination"
	"yatube-backend/internal/shared/response"
	"yatube-backend/internal/shared/utils"
)

const (
	pageIndex      = "index.html"
	pageGroup      = "group_list.html"
	pageProfile    = "profile.html"
	pageDetail     = "post_detail.html"
	pageFollow     = "follow.html"
	pageCreatePost = "create_post.html"
)

// PostHandler serves the feeds, the post pages and the create/edit forms.
type PostHandler struct {
	service service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Index handles GET /
func (h *PostHandler) Index(c *gin.Context) {
	feed, err := h.service.Index(c.Request.Context(), c.Query(pagination.QueryParam))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Render(c, http.StatusOK, pageIndex, gin.H{
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

// GroupPosts handles GET /group/:slug/
func (h *PostHandler) GroupPosts(c *gin.Context) {
	view, err := h.service.GroupFeed(c.Request.Context(), c.Param("slug"), c.Query(pagination.QueryParam))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Render(c, http.StatusOK, pageGroup, gin.H{
		"Group": view.Group,
		"Posts": view.Feed.Posts,
		"Page":  view.Feed.Page,
	})
}

// Profile handles GET /profile/:username/
func (h *PostHandler) Profile(c *gin.Context) {
	view, err := h.service.Profile(c.Request.Context(), auth.ViewerFrom(c), c.Param("username"), c.Query(pagination.QueryParam))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Render(c, http.StatusOK, pageProfile, gin.H{
		"Author":     view.Author,
		"PostsCount": view.PostsCount,
		"Following":  view.Following,
		"Posts":      view.Feed.Posts,
		"Page":       view.Feed.Page,
	})
}

// PostDetail handles GET /posts/:id/
func (h *PostHandler) PostDetail(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.NotFoundPage(c)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	data := gin.H{
		"Post":             detail.Post,
		"AuthorPostsCount": detail.AuthorPostsCount,
		"Comments":         detail.Comments,
	}
	if auth.ViewerFrom(c).IsAuthenticated() {
		data["CommentForm"] = &model.CommentForm{}
	}
	response.Render(c, http.StatusOK, pageDetail, data)
}

// FollowIndex handles GET /follow/
func (h *PostHandler) FollowIndex(c *gin.Context) {
	feed, err := h.service.FollowFeed(c.Request.Context(), auth.ViewerFrom(c), c.Query(pagination.QueryParam))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Render(c, http.StatusOK, pageFollow, gin.H{
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

// CreateForm handles GET /create/
func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, model.PostForm{}, map[string]string{}, 0)
}

// Create handles POST /create/
func (h *PostHandler) Create(c *gin.Context) {
	viewer := auth.ViewerFrom(c)
	form := bindPostForm(c)

	_, err := h.service.Create(c.Request.Context(), viewer, form)
	if err != nil {
		if fields, ok := response.FieldErrors(err); ok {
			h.renderForm(c, form, fields, 0)
			return
		}
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, profileURL(viewer.Username))
}

// EditForm handles GET /posts/:id/edit/
func (h *PostHandler) EditForm(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.NotFoundPage(c)
		return
	}

	post, err := h.service.GetForEdit(c.Request.Context(), auth.ViewerFrom(c), id)
	if err != nil {
		if errors.Is(err, model.ErrNotAuthor) {
			c.Redirect(http.StatusFound, postURL(id))
			return
		}
		handleError(c, err)
		return
	}

	h.renderForm(c, model.FormFromPost(post), map[string]string{}, id)
}

// Edit handles POST /posts/:id/edit/; non-authors are sent back to the post untouched.
func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.NotFoundPage(c)
		return
	}

	form := bindPostForm(c)
	_, err := h.service.Edit(c.Request.Context(), auth.ViewerFrom(c), id, form)
	if err != nil {
		if errors.Is(err, model.ErrNotAuthor) {
			c.Redirect(http.StatusFound, postURL(id))
			return
		}
		if fields, ok := response.FieldErrors(err); ok {
			h.renderForm(c, form, fields, id)
			return
		}
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(id))
}

// renderForm shows the create form, or the edit form when postID is set.
func (h *PostHandler) renderForm(c *gin.Context, form model.PostForm, errs map[string]string, postID int64) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Render(c, http.StatusOK, pageCreatePost, gin.H{
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"IsEdit": postID != 0,
		"PostID": postID,
	})
}

func bindPostForm(c *gin.Context) model.PostForm {
	form := model.PostForm{
		Text:    c.PostForm("text"),
		GroupID: c.PostForm("group"),
	}
	if fh, err := c.FormFile("image"); err == nil {
		form.Image = fh
	}
	return form
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
