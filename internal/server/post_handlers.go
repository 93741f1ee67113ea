package server

import (
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postPayload struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	ImageRef    string            `json:"image_ref"`
	Status      models.PostStatus `json:"status"`
	CategoryIDs *[]uint           `json:"category_ids"`
	TagIDs      *[]uint           `json:"tag_ids"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description List posts visible to the viewer, with filtering and sorting
// @Tags posts
// @Produce json
// @Param status query string false "Filter by status (draft/published)"
// @Param category query string false "Filter by category slug"
// @Param tag query string false "Filter by tag slug"
// @Param author_id query int false "Filter by author"
// @Param search query string false "Search in title and content"
// @Param sort query string false "Sort key: created_at, updated_at, title (prefix '-' for descending)"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Viewer:       s.principal(c),
		Status:       models.PostStatus(c.Query("status")),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		AuthorID:     uint(c.QueryInt("author_id", 0)),
		Search:       c.Query("search"),
		Sort:         repository.PostSort(c.Query("sort")),
		Limit:        p.Limit,
		Offset:       p.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetPopularPosts handles GET /api/posts/popular
// @Summary List popular posts
// @Description List visible posts ordered by like count
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/popular [get]
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.PopularPosts(c.Context(), s.principal(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:slug
// @Summary Get a post
// @Description Fetch a single post by slug; drafts are only visible to their author and admins
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.Context(), c.Params("slug"), s.principal(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Create a post owned by the caller; requires the author role
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body postPayload true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostInput{
		Principal: s.principal(c),
		Title:     req.Title,
		Content:   req.Content,
		ImageRef:  req.ImageRef,
		Status:    req.Status,
	}
	if req.CategoryIDs != nil {
		in.CategoryIDs = *req.CategoryIDs
	}
	if req.TagIDs != nil {
		in.TagIDs = *req.TagIDs
	}

	post, err := s.postService.CreatePost(c.Context(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug
// @Summary Update a post
// @Description Partially update a post; only the owner or an admin may edit
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param slug path string true "Post slug"
// @Param request body postPayload true "Fields to update"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req postPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Principal:   s.principal(c),
		Slug:        c.Params("slug"),
		Title:       req.Title,
		Content:     req.Content,
		ImageRef:    req.ImageRef,
		Status:      req.Status,
		CategoryIDs: req.CategoryIDs,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug
// @Summary Delete a post
// @Description Delete a post with its comments, likes and saves
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.Context(), s.principal(c), c.Params("slug")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetMyPosts handles GET /api/posts/mine
// @Summary List own posts
// @Description List the caller's posts, drafts included
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/mine [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.MyPosts(c.Context(), s.principal(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetSavedPosts handles GET /api/posts/saved
// @Summary List saved posts
// @Description List the caller's saved posts, most recently saved first
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/saved [get]
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.interactionService.SavedPosts(c.Context(), s.principal(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// LikePost handles POST /api/posts/:slug/like
// @Summary Toggle a post like
// @Description Like the post, or remove the like if it already exists
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} service.ToggleResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	result, err := s.interactionService.TogglePostLike(c.Context(), s.principal(c), c.Params("slug"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// SavePost handles POST /api/posts/:slug/save
// @Summary Toggle a saved post
// @Description Save the post for later, or remove it from the saved list
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} service.ToggleResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/save [post]
func (s *Server) SavePost(c *fiber.Ctx) error {
	result, err := s.interactionService.ToggleSave(c.Context(), s.principal(c), c.Params("slug"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}
