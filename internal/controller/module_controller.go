package controller

import (
	"aicourse_backend/internal/service"
	"aicourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	CourseService   *service.CourseService
	QuestionService *service.QuestionService
}

func NewModuleController(courseService *service.CourseService, questionService *service.QuestionService) *ModuleController {
	return &ModuleController{CourseService: courseService, QuestionService: questionService}
}

// @Summary Get a module
// @Tags modules
// @Produce json
// @Param id path string true "module ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [get]
func (ct *ModuleController) GetModule(c *gin.Context) {
	mod, err := ct.CourseService.GetModule(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, mod)
}

// @Summary Update module fields
// @Description Partial update; absent fields keep their previous values
// @Tags modules
// @Accept json
// @Produce json
// @Param id path string true "module ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [patch]
func (ct *ModuleController) UpdateModule(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	var patch service.ModulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	mod, err := ct.CourseService.UpdateModule(owner, c.Param("id"), patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, mod)
}

// @Summary List a module's questions
// @Tags modules
// @Produce json
// @Param id path string true "module ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{id}/questions [get]
func (ct *ModuleController) ListQuestions(c *gin.Context) {
	questions, err := ct.QuestionService.ListByModule(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, questions)
}
