// Package semanticindex mirrors node names into a Qdrant vector
// collection so queries can be answered by nearest-neighbor similarity in
// addition to AtomStore's exact-match pattern query. The index is purely
// additive: AtomStore remains the source of truth, and a Qdrant outage
// degrades semantic_query to an error without affecting any syscall.
package semanticindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nidhogg/cogkernel/internal/atomspace"
)

// Embedder generates vector embeddings from text. Satisfied by the
// dependency-free HashEmbedder or, in principle, an API-backed provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Config holds connection settings for the Qdrant-backed index.
type Config struct {
	Host       string
	Port       int
	Collection string // default "cogkernel_atoms"
}

func (c Config) withDefaults() Config {
	if c.Collection == "" {
		c.Collection = "cogkernel_atoms"
	}
	return c
}

// Client wraps the gRPC connection to Qdrant's collections and points
// services.
type Client struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
	cfg         Config
	embedder    Embedder
	logger      *zap.Logger
}

// NewClient dials the Qdrant endpoint and ensures the target collection
// exists, sized to the embedder's dimension.
func NewClient(ctx context.Context, cfg Config, embedder Embedder, logger *zap.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semanticindex: connect %s: %w", addr, err)
	}

	c := &Client{
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
		cfg:         cfg,
		embedder:    embedder,
		logger:      logger,
	}
	if err := c.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureCollection(ctx context.Context) error {
	_, err := c.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: c.cfg.Collection})
	if err == nil {
		return nil
	}
	_, err = c.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: c.cfg.Collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(c.embedder.Dimension()),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semanticindex: create collection %s: %w", c.cfg.Collection, err)
	}
	return nil
}

// OnAtomMutated implements atomspace.Observer. Nodes are embedded by name;
// links are skipped since they carry no text content of their own.
func (c *Client) OnAtomMutated(atom *atomspace.Atom) {
	if atom.Kind != atomspace.NodeKind || atom.Name == "" {
		return
	}
	go func() {
		if err := c.Index(context.Background(), atom); err != nil {
			c.logger.Warn("semanticindex: index failed", zap.String("atom", atom.ID.String()), zap.Error(err))
		}
	}()
}

// Index embeds and upserts a single atom's name into the collection.
func (c *Client) Index(ctx context.Context, atom *atomspace.Atom) error {
	vectors, err := c.embedder.Embed(ctx, []string{atom.Name})
	if err != nil {
		return fmt.Errorf("semanticindex: embed: %w", err)
	}
	payload := map[string]*pb.Value{
		"type": {Kind: &pb.Value_StringValue{StringValue: atom.Type}},
		"name": {Kind: &pb.Value_StringValue{StringValue: atom.Name}},
	}
	_, err = c.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: c.cfg.Collection,
		Points: []*pb.PointStruct{
			{
				Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: atom.ID.String()}},
				Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vectors[0]}}},
				Payload: payload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semanticindex: upsert %s: %w", atom.ID, err)
	}
	return nil
}

// SemanticMatch is a single nearest-neighbor hit.
type SemanticMatch struct {
	AtomID uuid.UUID
	Type   string
	Name   string
	Score  float32
}

// Query embeds text and returns the topK nearest atoms by cosine similarity.
// This is the handler behind the /api/semantic_query route in internal/api
// — it is never reachable from the closed syscall surface.
func (c *Client) Query(ctx context.Context, text string, topK int) ([]SemanticMatch, error) {
	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("semanticindex: embed query: %w", err)
	}
	resp, err := c.points.Search(ctx, &pb.SearchPoints{
		CollectionName: c.cfg.Collection,
		Vector:         vectors[0],
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semanticindex: search: %w", err)
	}

	matches := make([]SemanticMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		id, parseErr := uuid.Parse(r.Id.GetUuid())
		if parseErr != nil {
			continue
		}
		m := SemanticMatch{AtomID: id, Score: r.Score}
		if tv, found := r.Payload["type"]; found {
			m.Type = tv.GetStringValue()
		}
		if nv, found := r.Payload["name"]; found {
			m.Name = nv.GetStringValue()
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Close tears down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
