package vector

import (
	"context"
	"fmt"

	"docqa/internal/models"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantIndex stores passages in a Qdrant collection over grpc. Qdrant point
// ids must be UUIDs or integers, so the composite passage id is mapped to a
// deterministic UUIDv5 and the original id is kept in the payload.
type QdrantIndex struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
}

func NewQdrantIndex(addr, collection string) (*QdrantIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantIndex{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
	}, nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(r.ID)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: r.Vector}}},
			Payload: map[string]*pb.Value{
				"_id":         {Kind: &pb.Value_StringValue{StringValue: r.ID}},
				"document_id": {Kind: &pb.Value_StringValue{StringValue: r.Metadata.DocumentID}},
				"file_name":   {Kind: &pb.Value_StringValue{StringValue: r.Metadata.FileName}},
				"chunk_index": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(r.Metadata.ChunkIndex)}},
				"text":        {Kind: &pb.Value_StringValue{StringValue: r.Metadata.Text}},
			},
		}
	}
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]Match, error) {
	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: includeMetadata}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	out := make([]Match, 0, len(resp.Result))
	for _, pt := range resp.Result {
		match := Match{ID: pt.Id.GetUuid(), Score: float64(pt.GetScore())}
		if includeMetadata {
			if id := pt.Payload["_id"].GetStringValue(); id != "" {
				match.ID = id
			}
			match.Metadata = models.PassageMetadata{
				DocumentID: pt.Payload["document_id"].GetStringValue(),
				FileName:   pt.Payload["file_name"].GetStringValue(),
				ChunkIndex: int(pt.Payload["chunk_index"].GetIntegerValue()),
				Text:       pt.Payload["text"].GetStringValue(),
			}
		}
		out = append(out, match)
	}
	return out, nil
}

func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}

func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}
