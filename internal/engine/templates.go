package engine

import (
	"sort"
	"strings"

	"github.com/taskcrusade/crusader/internal/domain"
)

// taskTemplate is a predefined task shape: title, description, type,
// priority, and starter acceptance criteria.
type taskTemplate struct {
	Title       string
	Description string
	Type        string
	Priority    string
	Criteria    []string
}

var taskTemplates = map[string]taskTemplate{
	"bug-fix": {
		Title:       "Bug Fix",
		Description: "Fix reported bug",
		Type:        "code",
		Priority:    domain.PriorityHigh,
		Criteria: []string{
			"Bug is reproducible before fix",
			"Fix resolves the reported issue",
			"No regressions introduced",
			"Tests added for the fix",
		},
	},
	"feature": {
		Title:       "New Feature",
		Description: "Implement new feature",
		Type:        "code",
		Priority:    domain.PriorityMedium,
		Criteria: []string{
			"Feature implemented per requirements",
			"Unit tests written",
			"Documentation updated",
		},
	},
	"refactor": {
		Title:       "Code Refactoring",
		Description: "Refactor code for improved quality",
		Type:        "refactor",
		Priority:    domain.PriorityLow,
		Criteria: []string{
			"Code refactored successfully",
			"All existing tests pass",
			"No functional changes",
		},
	},
	"research": {
		Title:       "Research Task",
		Description: "Research and document findings",
		Type:        "research",
		Priority:    domain.PriorityMedium,
		Criteria: []string{
			"Research completed",
			"Findings documented",
			"Recommendations provided",
		},
	},
	"test": {
		Title:       "Testing Task",
		Description: "Write or improve tests",
		Type:        "test",
		Priority:    domain.PriorityMedium,
		Criteria: []string{
			"Tests written",
			"Tests pass",
			"Coverage improved",
		},
	},
	"documentation": {
		Title:       "Documentation",
		Description: "Write or update documentation",
		Type:        "documentation",
		Priority:    domain.PriorityLow,
		Criteria: []string{
			"Documentation written",
			"Documentation reviewed",
			"Documentation published",
		},
	},
}

// TemplateOverrides adjusts template fields at creation time.
type TemplateOverrides struct {
	Description *string
	Priority    *string
	Type        *string
}

// CreateFromTemplate creates a task from a named template, applying the
// optional title and field overrides, then delegates to Create.
func (s *TaskService) CreateFromTemplate(templateName, campaignID, title string, overrides TemplateOverrides) domain.Result {
	tpl, ok := taskTemplates[templateName]
	if !ok {
		names := make([]string, 0, len(taskTemplates))
		for name := range taskTemplates {
			names = append(names, name)
		}
		sort.Strings(names)
		return domain.NotFound("Template", templateName,
			"Available templates: "+strings.Join(names, ", "))
	}

	if title == "" {
		title = tpl.Title
	}
	description := tpl.Description
	if overrides.Description != nil {
		description = *overrides.Description
	}
	priority := tpl.Priority
	if overrides.Priority != nil {
		priority = *overrides.Priority
	}
	taskType := tpl.Type
	if overrides.Type != nil {
		taskType = *overrides.Type
	}

	return s.Create(CreateTaskInput{
		Title:              title,
		CampaignID:         campaignID,
		Description:        description,
		Priority:           priority,
		Type:               taskType,
		AcceptanceCriteria: tpl.Criteria,
	})
}
