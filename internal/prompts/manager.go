package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"mockmate/internal/models"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

const (
	GenerationTemplate = "generation"
	EvaluationTemplate = "evaluation"
)

// PromptProvider builds the two prompts sent to the AI gateway.
type PromptProvider interface {
	BuildGenerationPrompt(profile *models.InterviewProfile) (string, error)
	BuildEvaluationPrompt(question, referenceAnswer, userAnswer string) (string, error)
	GetTemplates() []string
}

var _ PromptProvider = (*PromptManager)(nil)

type PromptManager struct {
	templates    map[string]*template.Template
	instructions map[models.QuestionType]string
}

// loaded prompt template file
type PromptTemplate struct {
	Description  string            `yaml:"description"`
	Instructions map[string]string `yaml:"instructions"`
	Template     string            `yaml:"template"`
}

type generationData struct {
	Count        int
	Position     string
	Description  string
	Experience   int
	TechStack    string
	Instructions []string
}

type evaluationData struct {
	Question        string
	ReferenceAnswer string
	UserAnswer      string
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		templates:    make(map[string]*template.Template),
		instructions: make(map[models.QuestionType]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	for _, name := range []string{GenerationTemplate, EvaluationTemplate} {
		if _, ok := pm.templates[name]; !ok {
			return nil, fmt.Errorf("template %s is missing", name)
		}
	}
	for _, qt := range models.QuestionTypesList() {
		if _, ok := pm.instructions[qt]; !ok {
			return nil, fmt.Errorf("instruction line for question type %s is missing", qt)
		}
	}

	return pm, nil
}

// BuildGenerationPrompt embeds the profile and adds one instruction line per selected category.
func (pm *PromptManager) BuildGenerationPrompt(profile *models.InterviewProfile) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is required")
	}
	data := generationData{
		Count:       models.QuestionsPerInterview,
		Position:    profile.Position,
		Description: profile.Description,
		Experience:  profile.Experience,
		TechStack:   profile.TechStack,
	}
	for _, qt := range models.QuestionTypesList() {
		if profile.HasQuestionType(qt) {
			data.Instructions = append(data.Instructions, pm.instructions[qt])
		}
	}
	return pm.execute(GenerationTemplate, data)
}

func (pm *PromptManager) BuildEvaluationPrompt(question, referenceAnswer, userAnswer string) (string, error) {
	return pm.execute(EvaluationTemplate, evaluationData{
		Question:        question,
		ReferenceAnswer: referenceAnswer,
		UserAnswer:      userAnswer,
	})
}

// GetTemplates lists loaded template names, used by the readiness check.
func (pm *PromptManager) GetTemplates() []string {
	names := make([]string, 0, len(pm.templates))
	for name := range pm.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pm *PromptManager) execute(name string, data any) (string, error) {
	tmpl, exists := pm.templates[name]
	if !exists {
		return "", fmt.Errorf("template not found: %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		tmpl, err := template.New(name).Option("missingkey=error").Parse(promptTemplate.Template)
		if err != nil {
			return fmt.Errorf("failed to compile template %s: %w", name, err)
		}
		pm.templates[name] = tmpl

		for qt, line := range promptTemplate.Instructions {
			pm.instructions[models.QuestionType(qt)] = line
		}
	}

	return nil
}
