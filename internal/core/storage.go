package core

import "context"

type FactsRepository interface {
	Insert(ctx context.Context, fact Fact) (int64, error)
	Update(ctx context.Context, fact Fact) error
	ListAll(ctx context.Context) ([]Fact, error)
	Search(ctx context.Context, substring string) ([]Fact, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type MessagesRepository interface {
	Insert(ctx context.Context, msg Message) (int64, error)
	// List returns the last limit messages of the session in chronological
	// order. limit <= 0 returns everything.
	List(ctx context.Context, sessionID string, limit int) ([]Message, error)
	DeleteAll(ctx context.Context, sessionID string) error
}
