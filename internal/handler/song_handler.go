package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/internal/middleware"
	"github.com/mkdirlove/song-server/internal/repository"
	"github.com/mkdirlove/song-server/pkg/errors"
	"github.com/mkdirlove/song-server/pkg/httputil"
	"github.com/mkdirlove/song-server/pkg/logger"
)

// SongHandler serves the catalog actions.
type SongHandler struct {
	songs    repository.SongRepository
	pageSize int
	log      logger.Logger
}

// NewSongHandler creates the song handler.
func NewSongHandler(songs repository.SongRepository, pageSize int, log logger.Logger) *SongHandler {
	return &SongHandler{songs: songs, pageSize: pageSize, log: log}
}

type addSongRequest struct {
	Name       string `json:"name" binding:"required"`
	CoverURL   string `json:"cover_url" binding:"required"`
	SourceURL  string `json:"source_url" binding:"required"`
	IsExplicit bool   `json:"is_explicit"`
}

type removeSongRequest struct {
	Name      string `json:"name" binding:"required"`
	SourceURL string `json:"source_url" binding:"required"`
}

type songIDRequest struct {
	SongID string `json:"song_id" binding:"required"`
}

type listSongsRequest struct {
	PageNumber       int  `form:"page_number,default=1"`
	IsFilterExplicit bool `form:"is_filter_explicit,default=false"`
}

// GetSongs returns one page of the catalog ordered by name. Listing is
// public; no token is required.
func (h *SongHandler) GetSongs(c *gin.Context) {
	var req listSongsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}
	if req.PageNumber <= 0 {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	songs, err := h.songs.List(c.Request.Context(), req.IsFilterExplicit, req.PageNumber, h.pageSize)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusOK, "success", songs)
}

// AddSong inserts a new catalog entry. Admin and maintenance callers only.
func (h *SongHandler) AddSong(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.Fail(c, errors.ErrUserParseError)
		return
	}

	var req addSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	if !caller.Role.CanAddSongs() {
		httputil.Fail(c, errors.ErrPrivilegeError)
		return
	}

	song := domain.NewSong(req.Name, req.CoverURL, req.SourceURL, req.IsExplicit)
	if !song.Validate() {
		httputil.Fail(c, errors.ErrInvalidSongDetails)
		return
	}

	if err := h.songs.Insert(c.Request.Context(), song); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusCreated, "New song added", nil)
}

// LikeSong increments the like counter of the referenced song.
func (h *SongHandler) LikeSong(c *gin.Context) {
	h.incrementCounter(c, domain.FieldNumLikes, "Song liked")
}

// PlaySong increments the play counter of the referenced song.
func (h *SongHandler) PlaySong(c *gin.Context) {
	h.incrementCounter(c, domain.FieldTimesPlayed, "Song played")
}

// RemoveSong deletes the catalog entry identified by name and source URL.
// Admin and maintenance callers only.
func (h *SongHandler) RemoveSong(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.Fail(c, errors.ErrUserParseError)
		return
	}

	var req removeSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	if !caller.Role.CanAddSongs() {
		httputil.Fail(c, errors.ErrPrivilegeError)
		return
	}

	if err := h.songs.Remove(c.Request.Context(), req.Name, req.SourceURL); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusOK, "Song removed", nil)
}

func (h *SongHandler) incrementCounter(c *gin.Context, counterField, message string) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.Fail(c, errors.ErrUserParseError)
		return
	}

	var req songIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, errors.ErrInvalidDataFormat)
		return
	}

	if !caller.Role.CanLikeSongs() {
		httputil.Fail(c, errors.ErrPrivilegeError)
		return
	}

	if len(req.SongID) > domain.MaxSongIDLen {
		httputil.Fail(c, errors.ErrInvalidSongDetails)
		return
	}

	if err := h.songs.IncrementCounter(c.Request.Context(), req.SongID, counterField); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, http.StatusCreated, message, nil)
}
