package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// serviceIDKey - поле payload с id записи каталога.
const serviceIDKey = "service_id"

// pointNamespace - пространство имен UUIDv5 для id точек Qdrant.
var pointNamespace = uuid.MustParse("6f0d2c1e-4b8a-5e3f-9a71-2d4c8b1e7f30")

type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// QdrantStorage хранит эмбеддинги записей каталога в коллекции Qdrant.
type QdrantStorage struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
}

// NewQdrantStorage подключается к Qdrant по gRPC.
func NewQdrantStorage(addr, collection string) (*QdrantStorage, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial qdrant %s: %w", addr, err)
	}
	return &QdrantStorage{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

func newQdrantStorageWithClients(points pointsAPI, collections collectionsAPI, collection string) *QdrantStorage {
	return &QdrantStorage{points: points, collections: collections, collection: collection}
}

// Close закрывает gRPC соединение.
func (q *QdrantStorage) Close() error {
	if q.conn == nil {
		return nil
	}
	return q.conn.Close()
}

// PointID возвращает детерминированный UUID точки для id записи каталога.
func PointID(serviceID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(serviceID)).String()
}

// EnsureCollection создает коллекцию с косинусной метрикой, если ее еще нет.
func (q *QdrantStorage) EnsureCollection(ctx context.Context, dims int) error {
	list, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == q.collection {
			return nil
		}
	}

	_, err = q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", q.collection, err)
	}
	return nil
}

// UpsertServices сохраняет эмбеддинги записей. Повторная загрузка перезаписывает точки.
func (q *QdrantStorage) UpsertServices(ctx context.Context, services []models.IndexedService) error {
	if len(services) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(services))
	for i, s := range services {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(s.Record.ID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: s.Embedding},
				},
			},
			Payload: servicePayload(s),
		}
	}

	wait := true
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(services), err)
	}
	return nil
}

func servicePayload(s models.IndexedService) map[string]*pb.Value {
	str := func(v string) *pb.Value {
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
	}
	payload := map[string]*pb.Value{
		serviceIDKey: str(s.Record.ID),
		"name":       str(s.Record.Name),
		"category":   str(s.Record.Category),
		"city":       str(s.Record.City),
		"document":   str(s.Document),
	}
	if s.Record.Rating != nil {
		payload["rating"] = &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: *s.Record.Rating}}
	}
	if s.Record.Price != nil {
		payload["price"] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(*s.Record.Price)}}
	}
	return payload
}

// SearchVector выполняет поиск ближайших точек и возвращает id записей из payload.
func (q *QdrantStorage) SearchVector(ctx context.Context, vector []float32, k int) ([]models.Match, error) {
	if k <= 0 {
		k = 10
	}
	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{Fields: []string{serviceIDKey}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	matches := make([]models.Match, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		id := p.GetPayload()[serviceIDKey].GetStringValue()
		if id == "" {
			continue
		}
		matches = append(matches, models.Match{ID: id, Score: float64(p.GetScore())})
	}
	return matches, nil
}
