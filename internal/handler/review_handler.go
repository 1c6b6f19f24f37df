package handler

import (
	"srmdb/internal/model"
	"srmdb/internal/service"
	"srmdb/pkg/jwt"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Save 保存评分（重复保存时覆盖），媒体类型与内容ID走路径参数
func (h *ReviewHandler) Save(c *gin.Context) {
	type req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
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

	result, err := h.reviews.Save(jwt.GetUserID(c), c.Param("id"), mediaType, r.Rating, r.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "评分已保存", result)
}

// Get 查询自己与伴侣对某内容的评分及观看状态
func (h *ReviewHandler) Get(c *gin.Context) {
	mediaType := c.Param("type")
	if !model.IsValidMediaType(mediaType) {
		response.BadRequest(c, "无效的媒体类型: "+mediaType)
		return
	}

	result, err := h.reviews.Get(jwt.GetUserID(c), c.Param("id"), mediaType)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}
