package handler

import (
	"srmdb/internal/service"
	"srmdb/pkg/jwt"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service      *service.UserService
	jwtService   *jwt.JWTService
	cookieSecure bool
}

func NewUserHandler(s *service.UserService, jwtService *jwt.JWTService, cookieSecure bool) *UserHandler {
	return &UserHandler{service: s, jwtService: jwtService, cookieSecure: cookieSecure}
}

// setAuthCookie 下发httpOnly的token cookie，有效期与JWT一致
func (h *UserHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetCookie(jwt.CookieName, token, int(h.jwtService.ExpireAfter().Seconds()), "/", "", h.cookieSecure, true)
}

func (h *UserHandler) clearAuthCookie(c *gin.Context) {
	c.SetCookie(jwt.CookieName, "", -1, "/", "", h.cookieSecure, true)
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(r.Username, r.Name, r.Email, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	h.setAuthCookie(c, token)
	response.Created(c, "注册成功", &response.RegisterResponse{
		User:        response.FilterUserInfo(user, nil),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(r.Username, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	_, partnerUser, _ := h.service.GetWithPartner(user.ID)

	h.setAuthCookie(c, token)
	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterUserInfo(user, partnerUser),
		AccessToken: token,
	})
}

// Me 获取当前登录用户（含伴侣信息）
func (h *UserHandler) Me(c *gin.Context) {
	user, partner, err := h.service.GetWithPartner(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user, partner))
}

// Refresh 基于仍有效的token换发新token
func (h *UserHandler) Refresh(c *gin.Context) {
	user, _, err := h.service.GetWithPartner(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	claims := jwt.GetClaims(c)
	if claims == nil {
		response.Unauthorized(c, "用户未认证")
		return
	}
	token, err := h.jwtService.GenerateToken(
		claims.Subject,
		map[string]interface{}{"username": user.Username},
	)
	if err != nil {
		fail(c, err)
		return
	}
	h.setAuthCookie(c, token)
	response.SuccessWithMessage(c, "token已刷新", gin.H{"access_token": token})
}

// Logout 登出：清除token cookie
func (h *UserHandler) Logout(c *gin.Context) {
	h.clearAuthCookie(c)
	response.SuccessWithMessage(c, "已登出", nil)
}

// Update 更新个人资料
func (h *UserHandler) Update(c *gin.Context) {
	type req struct {
		Username       *string `json:"username"`
		Name           *string `json:"name"`
		Email          *string `json:"email"`
		Password       *string `json:"password"`
		ProfilePicture *string `json:"profilePicture"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, partner, err := h.service.Update(jwt.GetUserID(c), service.UpdateInput{
		Username:       r.Username,
		Name:           r.Name,
		Email:          r.Email,
		Password:       r.Password,
		ProfilePicture: r.ProfilePicture,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", response.FilterUserInfo(user, partner))
}

// Search 搜索其他用户
func (h *UserHandler) Search(c *gin.Context) {
	results, err := h.service.Search(jwt.GetUserID(c), c.Query("query"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, results)
}

// Profile 按用户名查看公开主页
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}
