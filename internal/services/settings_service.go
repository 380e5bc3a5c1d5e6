package services

import (
	"context"
	"log/slog"

	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/validator"
)

// SettingsService exposes the persisted application settings.
type SettingsService interface {
	Get(ctx context.Context) *config.Config
	Update(ctx context.Context, req *UpdateSettingsRequest) (*config.Config, error)
}

type UpdateSettingsRequest struct {
	Theme          *string  `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
	FontSize       *int     `json:"font_size,omitempty" validate:"omitempty,min=6,max=32"`
	FuzzyThreshold *float64 `json:"fuzzy_threshold,omitempty" validate:"omitempty,min=0,max=1"`
	RepeatPolicy   *string  `json:"repeat_policy,omitempty" validate:"omitempty,repeat_policy"`
}

type settingsService struct {
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSettingsService(cfg *config.Config, logger *slog.Logger, validator *validator.Validator) SettingsService {
	return &settingsService{
		cfg:       cfg,
		logger:    logger,
		validator: validator,
	}
}

func (s *settingsService) Get(ctx context.Context) *config.Config {
	return s.cfg
}

// Update applies the recognized settings and persists the whole file.
// Unknown settings never get this far: the request struct enumerates
// what exists.
func (s *settingsService) Update(ctx context.Context, req *UpdateSettingsRequest) (*config.Config, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Theme != nil {
		s.cfg.UI.Theme = *req.Theme
	}
	if req.FontSize != nil {
		s.cfg.UI.FontSize = *req.FontSize
	}
	if req.FuzzyThreshold != nil {
		s.cfg.Scoring.FuzzyThreshold = *req.FuzzyThreshold
	}
	if req.RepeatPolicy != nil {
		s.cfg.Scoring.RepeatPolicy = config.RepeatPolicy(*req.RepeatPolicy)
	}

	if err := s.cfg.Save(); err != nil {
		return nil, err
	}
	s.logger.Info("Updated settings")
	return s.cfg, nil
}
