package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidVote      = errors.New("invalid vote")
)

const (
	VoteUp   = "up"
	VoteDown = "down"

	TargetQuestion = "question"
	TargetAnswer   = "answer"
)

// CommunityStore holds the community Q&A: farmer-posted questions,
// answers (human or AI), and per-user votes.
type CommunityStore struct {
	db *gorm.DB
}

func NewCommunityStore(db *gorm.DB) *CommunityStore {
	return &CommunityStore{db: db}
}

func (s *CommunityStore) CreateQuestion(ctx context.Context, q *CommunityQuestion) error {
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (s *CommunityStore) ListQuestions(ctx context.Context, category string, limit int) ([]CommunityQuestion, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var questions []CommunityQuestion
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *CommunityStore) GetQuestion(ctx context.Context, id uint) (*CommunityQuestion, error) {
	var q CommunityQuestion
	err := s.db.WithContext(ctx).First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (s *CommunityStore) CreateAnswer(ctx context.Context, a *CommunityAnswer) error {
	if _, err := s.GetQuestion(ctx, a.QuestionID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (s *CommunityStore) ListAnswers(ctx context.Context, questionID uint) ([]CommunityAnswer, error) {
	var answers []CommunityAnswer
	err := s.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("upvotes - downvotes DESC, created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// Vote records one vote per user per target. Voting again with the same
// direction is a no-op; the opposite direction switches the vote.
func (s *CommunityStore) Vote(ctx context.Context, userID, targetType string, targetID uint, voteType string) error {
	if voteType != VoteUp && voteType != VoteDown {
		return ErrInvalidVote
	}
	if targetType != TargetQuestion && targetType != TargetAnswer {
		return ErrInvalidVote
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing UserVote
		err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&UserVote{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				VoteType:   voteType,
			}).Error; err != nil {
				return err
			}
			return s.adjustCounters(tx, targetType, targetID, voteType, 1)
		case err != nil:
			return err
		case existing.VoteType == voteType:
			return nil
		default:
			// Switch direction: undo the old vote, apply the new one.
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return err
			}
			if err := s.adjustCounters(tx, targetType, targetID, existing.VoteType, -1); err != nil {
				return err
			}
			return s.adjustCounters(tx, targetType, targetID, voteType, 1)
		}
	})
}

func (s *CommunityStore) adjustCounters(tx *gorm.DB, targetType string, targetID uint, voteType string, delta int) error {
	column := "upvotes"
	if voteType == VoteDown {
		column = "downvotes"
	}

	var model any
	if targetType == TargetQuestion {
		model = &CommunityQuestion{}
	} else {
		model = &CommunityAnswer{}
	}

	return tx.Model(model).Where("id = ?", targetID).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}
