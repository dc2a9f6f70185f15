package service

import "fmt"

const outlineSystemPrompt = "You are an expert curriculum designer. " +
	"You produce course outlines as strict JSON conforming to the supplied schema. " +
	"Module ordering must follow a sensible learning progression. " +
	"Write courseName, description and all module fields in the requested language."

const contentSystemPrompt = "You are an expert educator writing one module of a course. " +
	"You produce the module body and its quiz as strict JSON conforming to the supplied schema. " +
	"The contentText is markdown. Quiz questions must be answerable from the contentText alone. " +
	"For true-false questions the correctAnswer is always the literal string \"True\" or \"False\", " +
	"regardless of the content language. For open-ended questions leave options empty."

func outlinePrompt(topic, language, length, level string) string {
	return fmt.Sprintf(
		"Design a course outline.\nTopic: %s\nLanguage: %s\nCourse length: %s\nTarget level: %s",
		topic, language, length, level,
	)
}

func contentPrompt(moduleName, moduleDescription, topic, language, length, level string) string {
	return fmt.Sprintf(
		"Write the full content for one course module.\nModule: %s\nModule description: %s\n"+
			"Course topic: %s\nLanguage: %s\nCourse length: %s\nTarget level: %s",
		moduleName, moduleDescription, topic, language, length, level,
	)
}

const judgeSystemPrompt = "You are grading a learner's answer to a quiz question. " +
	"Judge semantic correctness, not wording. Reply as strict JSON conforming to the supplied schema, " +
	"with short, encouraging feedback in the language of the question."

func judgePrompt(questionText, correctAnswer, submitted string) string {
	return fmt.Sprintf(
		"Question: %s\nReference answer: %s\nLearner's answer: %s",
		questionText, correctAnswer, submitted,
	)
}

var outlineSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"courseName", "description", "modules"},
	"properties": map[string]interface{}{
		"courseName":  map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"modules": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"moduleName", "description"},
				"properties": map[string]interface{}{
					"moduleName":  map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}

var contentSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"contentText", "moduleQuiz"},
	"properties": map[string]interface{}{
		"contentText": map[string]interface{}{"type": "string"},
		"moduleQuiz": map[string]interface{}{
			"type":     "array",
			"minItems": 3,
			"maxItems": 9,
			"items": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"questionText", "type", "correctAnswer", "star"},
				"properties": map[string]interface{}{
					"questionText": map[string]interface{}{"type": "string"},
					"type": map[string]interface{}{
						"type": "string",
						"enum": []string{"mcq", "open-ended", "true-false"},
					},
					"options": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"correctAnswer": map[string]interface{}{"type": "string"},
					"star": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
						"maximum": 5,
					},
				},
			},
		},
	},
}

var judgeSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"isCorrect", "correctAnswer", "feedback"},
	"properties": map[string]interface{}{
		"isCorrect":     map[string]interface{}{"type": "boolean"},
		"correctAnswer": map[string]interface{}{"type": "string"},
		"feedback":      map[string]interface{}{"type": "string"},
	},
}
