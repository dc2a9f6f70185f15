package controller

import (
	"aicourse_backend/internal/service"
	"aicourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

type submitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type rateQuestionRequest struct {
	Rating string `json:"rating" binding:"required"`
}

// @Summary List due questions
// @Description Learned questions whose next review time has passed, soonest first
// @Tags questions
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/questions/due [get]
func (ct *QuestionController) GetDueQuestions(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	due, err := ct.QuestionService.GetDueQuestions(c.Request.Context(), owner)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, due)
}

// @Summary Get a question
// @Tags questions
// @Produce json
// @Param id path string true "question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (ct *QuestionController) GetQuestion(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	q, err := ct.QuestionService.GetQuestion(owner, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, q)
}

// @Summary Submit an answer for judgment
// @Description The verdict comes from the generator; SRS state is not touched
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "question ID"
// @Param answer body submitAnswerRequest true "submitted answer"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id}/answer [post]
func (ct *QuestionController) SubmitAnswer(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	verdict, err := ct.QuestionService.SubmitAnswer(c.Request.Context(), owner, c.Param("id"), req.Answer)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, verdict)
}

// @Summary Rate a question
// @Description Applies the spaced-repetition scheduler; rating must be Again, Hard, Good, Easy or Known
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "question ID"
// @Param rating body rateQuestionRequest true "review rating"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id}/rate [post]
func (ct *QuestionController) RateQuestion(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	var req rateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	state, err := ct.QuestionService.RateQuestion(c.Request.Context(), owner, c.Param("id"), req.Rating)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"srsData": state})
}

// @Summary Mark a question as learned
// @Description Idempotent; the owner's questionsLearned counter increments at most once
// @Tags questions
// @Produce json
// @Param id path string true "question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id}/learn [post]
func (ct *QuestionController) MarkLearned(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		util.BadRequest(c, "ownerId required")
		return
	}

	if err := ct.QuestionService.MarkQuestionAsLearned(c.Request.Context(), owner, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"learned": true})
}
