package server

import (
	"io"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. The body is multipart form data with a
// "text" field and an optional "image" file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	username := c.Locals("username").(string)

	text := c.FormValue("text")

	imageRef := ""
	if file, err := c.FormFile("image"); err == nil && file != nil {
		src, openErr := file.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded image"))
		}
		content, readErr := io.ReadAll(src)
		src.Close()
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded image"))
		}

		ref, saveErr := s.imageService.Save(service.UploadImageInput{
			Filename: file.Filename,
			Content:  content,
		})
		if saveErr != nil {
			return s.respondServiceError(c, saveErr)
		}
		imageRef = ref
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID:   userID,
		AuthorName: username,
		Text:       text,
		ImageRef:   imageRef,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created",
		"post":    post,
	})
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	page := c.QueryInt("page", service.DefaultPage)
	limit := c.QueryInt("limit", service.DefaultPageSize)

	feed, err := s.postService.ListPosts(ctx, page, limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// GetPost handles GET /api/posts/:postId
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.Context(), c.Params("postId"))
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:postId
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.EditText(ctx, c.Params("postId"), userID, req.Text)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated",
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	postID := c.Params("postId")

	if err := s.postService.DeletePost(ctx, postID, userID); err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted",
		"postId":  postID,
	})
}

// LikePost handles POST /api/posts/:postId/like. It toggles the caller's
// like on the post and returns the updated post.
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Locals("username").(string)

	post, err := s.postService.ToggleLike(ctx, c.Params("postId"), username)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CommentPost handles POST /api/posts/:postId/comment
func (s *Server) CommentPost(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Locals("username").(string)

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.AddComment(ctx, c.Params("postId"), username, req.Text)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(post)
}
