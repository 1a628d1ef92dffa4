package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoBucketsCollection = "buckets"

type bucketDocument struct {
	Bucket    string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend stores each bucket as one document keyed by bucket name.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoBackend{
		client: client,
		coll:   client.Database(dbName).Collection(mongoBucketsCollection),
	}, nil
}

func (m *MongoBackend) Load(ctx context.Context, bucket string) ([]byte, error) {
	var doc bucketDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": bucket}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bucket %s: %w", bucket, err)
	}
	return []byte(doc.Payload), nil
}

func (m *MongoBackend) Save(ctx context.Context, bucket string, payload []byte) error {
	doc := bucketDocument{Bucket: bucket, Payload: string(payload), UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": bucket}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace bucket %s: %w", bucket, err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
