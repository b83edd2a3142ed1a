package cosmos

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/kailas-cloud/convsearch/internal/db"
)

// Compile-time check: Store implements db.DocumentStore.
var _ db.DocumentStore = (*Store)(nil)

// Config holds Cosmos DB connection parameters.
type Config struct {
	Endpoint  string
	Key       string
	Database  string
	Container string
}

// Store implements db.DocumentStore over a single Cosmos DB container.
type Store struct {
	container *azcosmos.ContainerClient
}

// NewStore creates a container-scoped Cosmos DB store using key authentication.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	cred, err := azcosmos.NewKeyCredential(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("create key credential: %w", err)
	}

	client, err := azcosmos.NewClientWithKey(cfg.Endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	container, err := client.NewContainer(cfg.Database, cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("open container %s/%s: %w", cfg.Database, cfg.Container, err)
	}

	return &Store{container: container}, nil
}

// Ping reads the container properties.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.container.Read(ctx, nil); err != nil {
		return &db.Error{Op: db.OpReadItems, Err: err}
	}
	return nil
}

// CreateItem inserts a JSON document into the given logical partition.
func (s *Store) CreateItem(ctx context.Context, partitionKey string, item []byte) error {
	pk := azcosmos.NewPartitionKeyString(partitionKey)
	if _, err := s.container.CreateItem(ctx, pk, item, nil); err != nil {
		return &db.Error{Op: db.OpCreateItem, Err: err}
	}
	return nil
}

// QueryItems runs a parametrized SQL query and returns every page of results
// in server order. An empty partitionKey fans the query out across partitions;
// such queries must not use ORDER BY or aggregates.
func (s *Store) QueryItems(
	ctx context.Context, partitionKey, query string, params ...db.QueryParam,
) ([][]byte, error) {
	qp := make([]azcosmos.QueryParameter, len(params))
	for i, p := range params {
		qp[i] = azcosmos.QueryParameter{Name: p.Name, Value: p.Value}
	}

	pk := azcosmos.NewPartitionKey()
	if partitionKey != "" {
		pk = azcosmos.NewPartitionKeyString(partitionKey)
	}
	pager := s.container.NewQueryItemsPager(query, pk, &azcosmos.QueryOptions{
		QueryParameters: qp,
	})

	items := make([][]byte, 0)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &db.Error{Op: db.OpQueryItems, Err: err}
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
