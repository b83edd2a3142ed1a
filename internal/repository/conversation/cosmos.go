package conversation

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/convsearch/internal/db"
	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
)

// historyQuery binds the conversation id as a parameter; it is never spliced
// into the query text.
const historyQuery = "SELECT * FROM c WHERE c.conversation_id = @conversation_id"

// documentStore is the consumer interface for the Cosmos DB driver (ISP).
type documentStore interface {
	Ping(ctx context.Context) error
	CreateItem(ctx context.Context, partitionKey string, item []byte) error
	QueryItems(ctx context.Context, partitionKey, query string, params ...db.QueryParam) ([][]byte, error)
}

// Supported container partition key paths.
const (
	PartitionByConversation = "/conversation_id"
	PartitionByID           = "/id"
)

// CosmosRepo stores one document per turn.
type CosmosRepo struct {
	store         documentStore
	partitionPath string
}

// NewCosmos creates a Cosmos DB-backed conversation repository for a container
// partitioned by /conversation_id.
func NewCosmos(s documentStore) *CosmosRepo {
	return &CosmosRepo{store: s, partitionPath: PartitionByConversation}
}

// WithPartitionKeyPath sets the container's partition key path.
// With PartitionByID, History runs a cross-partition query.
func (r *CosmosRepo) WithPartitionKeyPath(path string) *CosmosRepo {
	r.partitionPath = path
	return r
}

func (r *CosmosRepo) partitionOf(turn domconv.Turn) string {
	if r.partitionPath == PartitionByID {
		return turn.ID()
	}
	return turn.ConversationID()
}

// historyPartition returns "" when turns of one conversation span partitions.
func (r *CosmosRepo) historyPartition(conversationID string) string {
	if r.partitionPath == PartitionByID {
		return ""
	}
	return conversationID
}

// Name implements usecase/conversation.Store.
func (r *CosmosRepo) Name() string { return "Cosmos DB" }

// Ping checks connectivity.
func (r *CosmosRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx) //nolint:wrapcheck // driver errors carry op context
}

// Append creates a new document for the turn.
func (r *CosmosRepo) Append(ctx context.Context, turn domconv.Turn) error {
	data, err := marshalTurn(turn)
	if err != nil {
		return err
	}
	if err := r.store.CreateItem(ctx, r.partitionOf(turn), data); err != nil {
		return fmt.Errorf("create turn %s: %w", turn.ID(), err)
	}
	return nil
}

// History returns all turns of a conversation ordered by creation time.
// Documents without created_at sort by their system timestamp; ties keep server order.
func (r *CosmosRepo) History(ctx context.Context, conversationID string) ([]domconv.Turn, error) {
	items, err := r.store.QueryItems(ctx, r.historyPartition(conversationID), historyQuery,
		db.QueryParam{Name: "@conversation_id", Value: conversationID},
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation %s: %w", conversationID, err)
	}

	turns := make([]domconv.Turn, 0, len(items))
	for _, it := range items {
		t, err := unmarshalTurn(it)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}

	slices.SortStableFunc(turns, func(a, b domconv.Turn) int {
		return cmp.Compare(a.CreatedAt().UnixMicro(), b.CreatedAt().UnixMicro())
	})
	return turns, nil
}
