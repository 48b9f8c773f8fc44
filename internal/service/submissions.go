package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"monthlymix/internal/extract"
	"monthlymix/internal/model"

	"go.uber.org/zap"
)

// SubmissionService принимает отправки участников в хранилище текущего месяца
type SubmissionService struct {
	links  model.LinkRepository
	opts   extract.Options
	now    func() time.Time
	logger *zap.Logger
}

// NewSubmissionService создает сервис отправок
func NewSubmissionService(links model.LinkRepository, opts extract.Options, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		links:  links,
		opts:   opts,
		now:    time.Now,
		logger: logger,
	}
}

// SubmitResult итог приема отправок
type SubmitResult struct {
	Month    string `json:"month"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// Accepts сообщает, похожа ли отправка на музыку
func (s *SubmissionService) Accepts(text string) bool {
	return len(extract.BuildCandidates(text, s.opts)) > 0
}

// Submit сохраняет подходящие отправки в текущий месяц
func (s *SubmissionService) Submit(ctx context.Context, texts []string) (*SubmitResult, error) {
	month := model.CurrentMonth(s.now())
	result := &SubmitResult{Month: month.Key}

	accepted := make([]string, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" || !s.Accepts(text) {
			result.Rejected++
			continue
		}
		accepted = append(accepted, text)
	}

	if len(accepted) == 0 {
		return result, nil
	}

	if err := s.links.AppendSubmittedLinks(ctx, month.Key, accepted); err != nil {
		return nil, fmt.Errorf("failed to store submissions: %w", err)
	}
	result.Accepted = len(accepted)

	s.logger.Info("Stored submissions",
		zap.String("month", month.Key),
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected))

	return result, nil
}

// Count возвращает число отправок за месяц
func (s *SubmissionService) Count(ctx context.Context, month model.TargetMonth) (int, error) {
	links, err := s.links.GetSubmittedLinks(ctx, month.Key)
	if err != nil {
		return 0, err
	}
	return len(links), nil
}

// CurrentMonth возвращает месяц, в который попадают новые отправки
func (s *SubmissionService) CurrentMonth() model.TargetMonth {
	return model.CurrentMonth(s.now())
}
