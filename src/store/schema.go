package store

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Relational rows. The knowledge base is read-only from the pipeline's
// perspective; only the seeding tool writes it.

type User struct {
	ID             uint      `gorm:"primaryKey"`
	Username       string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Email          string    `gorm:"uniqueIndex"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

type CommunityQuestion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null" json:"user_id"`
	UserName  string    `gorm:"not null" json:"user_name"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Category  string    `gorm:"not null" json:"category"`
	Language  string    `gorm:"default:en" json:"language"`
	ImageData string    `gorm:"type:text" json:"image_data,omitempty"`
	Upvotes   int       `gorm:"default:0" json:"upvotes"`
	Downvotes int       `gorm:"default:0" json:"downvotes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type CommunityAnswer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	UserID     string    `gorm:"not null" json:"user_id"`
	UserName   string    `gorm:"not null" json:"user_name"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	IsAIAnswer bool      `gorm:"default:false" json:"is_ai_answer"`
	Upvotes    int       `gorm:"default:0" json:"upvotes"`
	Downvotes  int       `gorm:"default:0" json:"downvotes"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type UserVote struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"not null;index:idx_user_target,unique"`
	TargetType string    `gorm:"not null;index:idx_user_target,unique"`
	TargetID   uint      `gorm:"not null;index:idx_user_target,unique"`
	VoteType   string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"uniqueIndex;not null" json:"session_id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	UserID    string    `gorm:"not null" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Response  string    `gorm:"type:text;not null" json:"response"`
	Language  string    `gorm:"default:en" json:"language"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type KnowledgeRow struct {
	ID        uint            `gorm:"primaryKey"`
	Question  string          `gorm:"type:text;not null"`
	Answer    string          `gorm:"type:text;not null"`
	Language  string          `gorm:"default:en"`
	// Column width matches the embedding.dimension default. Running with a
	// different dimension needs a column migration; CheckEmbeddingDimension
	// refuses to start on a mismatch.
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	Source    string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KnowledgeRow) TableName() string { return "knowledge_base" }
