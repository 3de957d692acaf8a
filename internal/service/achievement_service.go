package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/clock"
	"dashboard/internal/model"
	"dashboard/internal/repository"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type CreateAchievementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
}

type AchievementResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	AddedBy     string `json:"added_by"`
}

type AchievementService interface {
	Add(ctx context.Context, id authz.Identity, req CreateAchievementRequest) (AchievementResponse, error)
	List(ctx context.Context) ([]AchievementResponse, error)
}

type achievementService struct {
	tm        repository.TransactionManager
	repo      repository.AchievementRepository
	auditRepo repository.AuditRepository
	clock     clock.Clock
	log       logrus.FieldLogger
}

func NewAchievementService(tm repository.TransactionManager, repo repository.AchievementRepository, auditRepo repository.AuditRepository, clk clock.Clock, log logrus.FieldLogger) AchievementService {
	return &achievementService{tm: tm, repo: repo, auditRepo: auditRepo, clock: clk, log: log}
}

func (s *achievementService) Add(ctx context.Context, id authz.Identity, req CreateAchievementRequest) (AchievementResponse, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return AchievementResponse{}, apperror.Validation("title is required")
	}
	if description == "" {
		return AchievementResponse{}, apperror.Validation("description is required")
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return AchievementResponse{}, apperror.Validation("date must be formatted as YYYY-MM-DD")
	}

	now := clock.Seconds(s.clock)
	a := model.Achievement{
		Title:       title,
		Description: description,
		Date:        date,
		AddedBy:     id.DisplayName,
		CreatedAt:   now,
	}
	err = s.tm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &a); err != nil {
			return apperror.Infrastructure(err, "failed to create achievement")
		}
		return writeAudit(txCtx, s.auditRepo, now, id.Username, model.ActionAddAchievement,
			fmt.Sprint(a.ID), a.Title, map[string]interface{}{"date": req.Date})
	})
	if err != nil {
		return AchievementResponse{}, err
	}

	s.log.WithFields(logrus.Fields{"achievement_id": a.ID, "username": id.Username}).Info("achievement added")
	return toAchievementResponse(a), nil
}

func (s *achievementService) List(ctx context.Context) ([]AchievementResponse, error) {
	achievements, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to list achievements")
	}
	res := make([]AchievementResponse, 0, len(achievements))
	for _, a := range achievements {
		res = append(res, toAchievementResponse(a))
	}
	return res, nil
}

func toAchievementResponse(a model.Achievement) AchievementResponse {
	return AchievementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date.Format(dateLayout),
		AddedBy:     a.AddedBy,
	}
}
