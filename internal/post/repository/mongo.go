package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/gogoblog/internal/post"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores posts in a collection keyed by an integer _id. Ids come
// from a per-collection sequence document in the counters collection, so
// detail URLs stay numeric across store drivers.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col, counters *mongo.Collection) (*MongoRepo, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "createdDate", Value: -1}, {Key: "_id", Value: -1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("ensure posts index: %w", err)
	}
	return &MongoRepo{col: col, counters: counters}, nil
}

func (m *MongoRepo) nextID(ctx context.Context) (int64, error) {
	var seq struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": m.col.Name()},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next post id: %w", err)
	}
	return seq.Seq, nil
}

func (m *MongoRepo) Create(ctx context.Context, p *post.Post) (int64, error) {
	id, err := m.nextID(ctx)
	if err != nil {
		return 0, err
	}
	p.ID = id
	// Mongo stores milliseconds; truncate so the returned value matches what is read back.
	p.CreatedDate = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := m.col.InsertOne(ctx, p); err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return p.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id int64) (*post.Post, error) {
	var p post.Post
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, post.ErrNotFound
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	p.CreatedDate = p.CreatedDate.UTC()
	return &p, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*post.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdDate", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)
	out := []*post.Post{}
	for cur.Next(ctx) {
		var p post.Post
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		p.CreatedDate = p.CreatedDate.UTC()
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, id int64, title, text string) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"title": title, "text": text}})
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return post.ErrNotFound
	}
	return nil
}
