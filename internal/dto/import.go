package dto

import "github.com/noah-isme/exam-planner-api/internal/models"

// ImportRequest describes one import run. DryRun defaults to true at the HTTP layer.
type ImportRequest struct {
	Source  models.ImportSource `validate:"required,oneof=live static upload csv"`
	Campus  string              `validate:"omitempty,campus"`
	Subject string              `validate:"omitempty,max=16"`
	Course  string              `validate:"omitempty,max=16"`
	Term    string              `validate:"omitempty,max=16"`
	DryRun  bool
}
