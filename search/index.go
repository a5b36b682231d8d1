//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_search_index.go -package=mocks
// Package search maintains a full-text index over the local message
// history. The index is derivable state: losing it never loses messages,
// it only disables the find command until re-indexing.
package search

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"messenger-lab/domain"
)

type ISearchIndex interface {
	Index(ctx context.Context, conversationKey string, message domain.Message) error
	Search(ctx context.Context, conversationKey, terms string, limit int) ([]domain.Message, error)
	Close() error
}

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Index adds one message document. The conversation key is a keyword field
// so searches can be scoped to the active chat; id and timestamp are stored
// only, never searched.
func (i *Index) Index(ctx context.Context, conversationKey string, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("conversation", conversationKey).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.Sender).StoreValue()).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewStoredOnlyField("at", []byte(strconv.FormatInt(message.At.UnixNano(), 10))))
	return i.writer.Update(doc.ID(), doc)
}

// Search returns up to limit messages of one conversation matching terms,
// most relevant first.
func (i *Index) Search(ctx context.Context, conversationKey, terms string, limit int) ([]domain.Message, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Error("closing index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text")).
		AddMust(bluge.NewTermQuery(conversationKey).SetField("conversation"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var results []domain.Message
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var message domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					message.ID = id
				}
			case "sender":
				message.Sender = string(value)
			case "text":
				message.Text = string(value)
			case "at":
				if nanos, parseErr := strconv.ParseInt(string(value), 10, 64); parseErr == nil {
					message.At = time.Unix(0, nanos).UTC()
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		results = append(results, message)
	}
	return results, nil
}
