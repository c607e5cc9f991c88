package repository

import (
	"context"
	"time"

	models "github.com/fathima-sithara/media-service/internal/media"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"go.mongodb.org/mongo-driver/mongo"
)

// MediaRepo stores videos in a Mongo collection. Each Acquire opens a client
// session that Release ends.
type MediaRepo struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMediaRepo(client *mongo.Client, col *mongo.Collection) *MediaRepo {
	return &MediaRepo{client: client, col: col}
}

func (r *MediaRepo) Acquire(ctx context.Context) (Conn, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	return &mongoConn{sess: sess, col: r.col}, nil
}

type mongoConn struct {
	sess mongo.Session
	col  *mongo.Collection
}

func (c *mongoConn) InsertVideo(ctx context.Context, v *models.Video) error {
	if v.ID == "" {
		v.ID = utils.NewID()
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	_, err := c.col.InsertOne(mongo.NewSessionContext(ctx, c.sess), v)
	return err
}

func (c *mongoConn) Release(ctx context.Context) {
	c.sess.EndSession(ctx)
}
