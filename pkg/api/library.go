package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/james-see/wavetone/pkg/library"
)

// SaveRequest stores score text in the library
type SaveRequest struct {
	Title  string `json:"title"`
	Source string `json:"source" binding:"required"`
}

func libraryStatus(err error) int {
	switch {
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrExists):
		return http.StatusConflict
	case errors.Is(err, library.ErrInvalidScore):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// listLibrary godoc
// @Summary List saved scores
// @Tags library
// @Produce json
// @Failure 503 {object} map[string]string
// @Router /library [get]
func (s *Server) listLibrary(c *gin.Context) {
	entries, err := s.opts.Library.List(c.Request.Context())
	if err != nil {
		c.JSON(libraryStatus(err), gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []library.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"scores": entries})
}

// saveToLibrary godoc
// @Summary Save score text
// @Tags library
// @Accept json
// @Produce json
// @Param request body SaveRequest true "Score to save"
// @Success 201 {object} library.Entry
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /library [post]
func (s *Server) saveToLibrary(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	entry, err := s.opts.Library.Save(c.Request.Context(), req.Title, req.Source)
	if err != nil {
		c.JSON(libraryStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// getFromLibrary godoc
// @Summary Get a saved score by id or title
// @Tags library
// @Produce json
// @Param id path string true "Score id or title"
// @Failure 404 {object} map[string]string
// @Router /library/{id} [get]
func (s *Server) getFromLibrary(c *gin.Context) {
	entry, err := s.opts.Library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(libraryStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteFromLibrary godoc
// @Summary Delete a saved score
// @Tags library
// @Param id path string true "Score id or title"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /library/{id} [delete]
func (s *Server) deleteFromLibrary(c *gin.Context) {
	if err := s.opts.Library.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(libraryStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
