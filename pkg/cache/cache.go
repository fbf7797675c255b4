//Package cache persists the results of expensive pipeline stages so later
//runs can reuse them. A missing or unreadable artifact is always a cache
//miss, never an error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

//Key names an artifact and the stage that produces it.
type Key struct {
	Name  string
	Stage string
}

//The three artifacts the pipeline persists.
var (
	TracksKey         = Key{Name: "tracks", Stage: "tracking"}
	CameraMovementKey = Key{Name: "camera_movement", Stage: "camera_motion"}
	TeamControlKey    = Key{Name: "team_ball_control", Stage: "possession"}
)

//Status is the outcome of reading an artifact.
type Status int

const (
	//Miss: no artifact exists, or the cache was bypassed.
	Miss Status = iota
	//Hit: the artifact was read and decoded.
	Hit
	//Corrupt: an artifact exists but could not be read, decoded or validated.
	Corrupt
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Corrupt:
		return "corrupt"
	}
	return "miss"
}

//Result describes a lookup. Err is set only for Corrupt.
type Result struct {
	Status Status
	Err    error
}

//Cache reads and writes JSON-encoded artifacts through a BlobStore.
type Cache struct {
	store BlobStore
	log   *logrus.Entry
}

//New returns a Cache over store.
func New(store BlobStore) *Cache {
	return &Cache{store: store, log: logrus.WithField("component", "cache")}
}

//WithLogger returns a copy of c logging through entry.
func (c *Cache) WithLogger(entry *logrus.Entry) *Cache {
	return &Cache{store: c.store, log: entry.WithField("component", "cache")}
}

//Lookup reads and decodes the artifact for key.
func Lookup[T any](ctx context.Context, c *Cache, key Key) (T, Result) {
	var v T
	data, err := c.store.Get(ctx, key.Name)
	if errors.Is(err, ErrNotFound) {
		return v, Result{Status: Miss}
	}
	if err != nil {
		return v, Result{Status: Corrupt, Err: err}
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, Result{Status: Corrupt, Err: fmt.Errorf("decoding artifact %s: %w", key.Name, err)}
	}
	return v, Result{Status: Hit}
}

//Save encodes and persists v under key.
func (c *Cache) Save(ctx context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding artifact %s: %w", key.Name, err)
	}
	return c.store.Put(ctx, key.Name, key.Stage, data)
}

//SaveBestEffort persists v and logs, rather than returns, any failure.
func (c *Cache) SaveBestEffort(ctx context.Context, key Key, v any) {
	if err := c.Save(ctx, key, v); err != nil {
		c.log.WithFields(logrus.Fields{"stage": key.Stage, "key": key.Name}).WithError(err).
			Warn("could not persist artifact, continuing with in-memory result")
	}
}

//Delete invalidates the artifact for key.
func (c *Cache) Delete(ctx context.Context, key Key) error {
	return c.store.Delete(ctx, key.Name)
}

//Stage describes how to produce and check one artifact.
type Stage[T any] struct {
	Key     Key
	Produce func(ctx context.Context) (T, error)
	//Validate, when set, rejects a decoded artifact; a rejected artifact is
	//treated like a corrupt one.
	Validate func(T) error
}

//LoadOrCompute returns the cached artifact for st.Key when useCache is set
//and the artifact decodes (and validates). Otherwise it calls st.Produce,
//persists the result on a best-effort basis and returns it. The returned
//Status is Hit only when the value came from the cache.
//
//A producer error is returned as is and nothing is persisted.
func LoadOrCompute[T any](ctx context.Context, c *Cache, st Stage[T], useCache bool) (T, Status, error) {
	fields := logrus.Fields{"stage": st.Key.Stage, "key": st.Key.Name}
	status := Miss
	if useCache {
		v, res := Lookup[T](ctx, c, st.Key)
		if res.Status == Hit && st.Validate != nil {
			if err := st.Validate(v); err != nil {
				res = Result{Status: Corrupt, Err: fmt.Errorf("validating artifact %s: %w", st.Key.Name, err)}
			}
		}
		switch res.Status {
		case Hit:
			c.log.WithFields(fields).Debug("loaded artifact")
			return v, Hit, nil
		case Corrupt:
			status = Corrupt
			c.log.WithFields(fields).WithError(res.Err).Warn("cache miss: unusable artifact, recomputing")
		default:
			c.log.WithFields(fields).Info("cache miss: no artifact, computing")
		}
	}

	v, err := st.Produce(ctx)
	if err != nil {
		var zero T
		return zero, status, err
	}
	c.SaveBestEffort(ctx, st.Key, v)
	return v, status, nil
}
