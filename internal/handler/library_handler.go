package handler

import (
	"srmdb/internal/model"
	"srmdb/internal/service"
	"srmdb/pkg/jwt"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	library *service.LibraryService
}

func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// Get 获取自己的片单（按分类分组，附带评分）
func (h *LibraryHandler) Get(c *gin.Context) {
	library, err := h.library.GetLibrary(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, library)
}

// GetPartner 获取伴侣的片单
func (h *LibraryHandler) GetPartner(c *gin.Context) {
	library, err := h.library.GetPartnerLibrary(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, library)
}

// GetShared 获取共享片单（含兼容度列表）
func (h *LibraryHandler) GetShared(c *gin.Context) {
	view, err := h.library.GetSharedLibrary(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// Add 向指定分类添加内容，返回更新后的完整片单
func (h *LibraryHandler) Add(c *gin.Context) {
	var in service.ContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := jwt.GetUserID(c)
	if err := h.library.AddToCategory(userID, c.Param("category"), &in); err != nil {
		fail(c, err)
		return
	}
	h.respondWithLibrary(c, userID, "已添加", nil)
}

// Remove 从指定分类移除内容，返回更新后的完整片单
func (h *LibraryHandler) Remove(c *gin.Context) {
	userID := jwt.GetUserID(c)
	if err := h.library.RemoveFromCategory(userID, c.Param("category"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	h.respondWithLibrary(c, userID, "已移除", nil)
}

// MarkWatched 标记观看状态（watchedType: user/together/remove）
// 路径携带媒体类型与内容ID，内容详情随movieData提交
func (h *LibraryHandler) MarkWatched(c *gin.Context) {
	type req struct {
		WatchedType string                `json:"watchedType"`
		MovieData   *service.ContentInput `json:"movieData"`
		Item        *service.ContentInput `json:"item"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	mediaType := c.Param("type")
	if !model.IsValidMediaType(mediaType) {
		response.BadRequest(c, "无效的媒体类型: "+mediaType)
		return
	}

	in := r.MovieData
	if in == nil {
		in = r.Item
	}
	if in == nil || in.ID == "" {
		response.BadRequest(c, "缺少内容数据")
		return
	}
	if in.ID != c.Param("id") {
		response.BadRequest(c, "内容ID与路径不一致")
		return
	}
	if in.Type == "" {
		in.Type = mediaType
	}
	if r.WatchedType == "" {
		r.WatchedType = service.WatchedModeUser
	}

	userID := jwt.GetUserID(c)
	status, err := h.library.MarkWatched(userID, r.WatchedType, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondWithLibrary(c, userID, "观看状态已更新", gin.H{"watchedStatus": status})
}

// respondWithLibrary 片单写操作的统一响应：携带更新后的完整片单
func (h *LibraryHandler) respondWithLibrary(c *gin.Context, userID uint, message string, extra gin.H) {
	library, err := h.library.GetLibrary(userID)
	if err != nil {
		fail(c, err)
		return
	}
	data := gin.H{"library": library}
	for k, v := range extra {
		data[k] = v
	}
	response.SuccessWithMessage(c, message, data)
}
