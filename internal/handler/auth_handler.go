package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wikimasters/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionUserIDKey = "user_id"
	sessionNameKey   = "user_name"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup 注册新用户并建立会话。
func (a *API) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req, "invalid signup payload") {
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		respondError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	var existing db.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "an account with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	user := db.User{Name: name, Email: email, Password: string(hashed)}
	if err := a.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	if !saveSession(c, &user) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": gin.H{"id": user.ID, "name": user.Name, "email": user.Email}})
}

// Signin 校验邮箱与密码并建立会话。
func (a *API) Signin(c *gin.Context) {
	var req signinRequest
	if !bindJSON(c, &req, "invalid signin payload") {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user db.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !saveSession(c, &user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": user.ID, "name": user.Name, "email": user.Email}})
}

// Signout 清除当前会话。
func (a *API) Signout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me 返回当前会话对应的用户信息。
func (a *API) Me(c *gin.Context) {
	userID := currentUserID(c)

	var user db.User
	if err := a.db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": user.ID, "name": user.Name, "email": user.Email}})
}

// AuthRequired 是一个简单的认证中间件，未登录请求返回 401。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func saveSession(c *gin.Context, user *db.User) bool {
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionNameKey, user.Name)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return false
	}
	return true
}

func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionUserIDKey).(uint); ok {
		return id
	}
	return 0
}
