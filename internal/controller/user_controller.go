package controller

import (
	"aicourse_backend/internal/service"
	"aicourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

type createUserRequest struct {
	ID string `json:"id"`
}

// @Summary Create a user
// @Description First-contact registration; an empty ID gets a generated one
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} util.Response
// @Router /api/users [post]
func (ct *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	// Body is optional; anonymous clients send nothing.
	_ = c.ShouldBindJSON(&req)

	user, err := ct.UserService.CreateUser(req.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Created(c, user)
}

// @Summary Get a user with aggregate stats
// @Tags users
// @Produce json
// @Param id path string true "user ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [get]
func (ct *UserController) GetUser(c *gin.Context) {
	user, err := ct.UserService.GetUser(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// @Summary Delete a user
// @Description Cascades to the user's courses, modules and questions
// @Tags users
// @Param id path string true "user ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [delete]
func (ct *UserController) DeleteUser(c *gin.Context) {
	if err := ct.UserService.DeleteUser(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	util.NoContent(c)
}
