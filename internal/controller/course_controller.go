package controller

import (
	"aicourse_backend/internal/service"
	"aicourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary Create a course
// @Description Persists a placeholder course and starts asynchronous generation
// @Tags courses
// @Accept json
// @Produce json
// @Param course body service.CreateCourseRequest true "course parameters"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/courses [post]
func (ct *CourseController) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	course, err := ct.CourseService.CreateCourse(req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Created(c, course)
}

// @Summary Regenerate a course
// @Description Resumes or restarts generation; responds before the work finishes
// @Tags courses
// @Produce json
// @Param id path string true "course ID"
// @Success 202 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/regenerate [post]
func (ct *CourseController) RegenerateCourse(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	if err := ct.CourseService.RegenerateCourse(owner, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	util.Accepted(c, gin.H{"courseId": c.Param("id")})
}

// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (ct *CourseController) ListCourses(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	courses, err := ct.CourseService.ListCourses(owner)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, courses)
}

// @Summary Get a course with its modules
// @Tags courses
// @Produce json
// @Param id path string true "course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (ct *CourseController) GetCourse(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	course, modules, err := ct.CourseService.GetCourse(owner, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"course": course, "modules": modules})
}

// @Summary Update course fields
// @Description Partial update; absent fields keep their previous values
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [patch]
func (ct *CourseController) UpdateCourse(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	var patch service.CoursePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	course, err := ct.CourseService.UpdateCourse(owner, c.Param("id"), patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, course)
}

// @Summary Delete a course
// @Description Cascades to the course's modules and their questions
// @Tags courses
// @Param id path string true "course ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (ct *CourseController) DeleteCourse(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	if err := ct.CourseService.DeleteCourse(owner, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	util.NoContent(c)
}
