package audit

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
)

const DefaultCollection = "adminClaimAudit"

type Repo struct {
	fs         *firestore.Client
	collection string
}

func NewRepo(fs *firestore.Client, collection string) *Repo {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Repo{fs: fs, collection: collection}
}

func (r *Repo) Record(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	_, _, err := r.fs.Collection(r.collection).Add(ctx, ev)
	return err
}

// Latest returns the newest events for uid, most recent first.
func (r *Repo) Latest(ctx context.Context, uid string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	docs, err := r.fs.Collection(r.collection).
		Where("uid", "==", uid).
		OrderBy("at", firestore.Desc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(docs))
	for _, d := range docs {
		var ev Event
		if err := d.DataTo(&ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
