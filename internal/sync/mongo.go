package sync

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTransport stores backup payloads in a MongoDB collection, one
// document per vault, upserted on every push.
type MongoTransport struct {
	client  *mongo.Client
	coll    *mongo.Collection
	vaultID string
}

// NewMongoTransport connects, pings with a short timeout, and binds to the
// backups collection.
func NewMongoTransport(ctx context.Context, uri, dbName, collName, vaultID string) (*MongoTransport, error) {
	if uri == "" {
		return nil, errors.New("sync: mongo uri is empty")
	}
	if vaultID == "" {
		return nil, errors.New("sync: vault id is empty")
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return &MongoTransport{
		client:  cli,
		coll:    cli.Database(dbName).Collection(collName),
		vaultID: vaultID,
	}, nil
}

func (t *MongoTransport) Upload(ctx context.Context, encryptedBlob, iv, salt []byte) error {
	_, err := t.coll.UpdateByID(
		ctx,
		t.vaultID,
		bson.M{
			"$set": bson.M{
				"encrypted_data": encryptedBlob,
				"iv":             iv,
				"salt":           salt,
				"uploadedAt":     time.Now().UTC(),
			},
			"$setOnInsert": bson.M{
				"createdAt": time.Now().UTC(),
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (t *MongoTransport) Close(ctx context.Context) error {
	return t.client.Disconnect(ctx)
}
