package natskv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type KVClient struct {
	Name string
	Conn *nats.Conn
	JS   jetstream.JetStream
}

var (
	mu          sync.RWMutex
	kvInstances = make(map[string]*KVClient)
)

func Connect(url string, opts ...nats.Option) (*KVClient, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &KVClient{Conn: nc, JS: js}, nil
}

// Bucket opens the key value bucket, creating it when it does not exist.
func (c *KVClient) Bucket(ctx context.Context, bucket string) (jetstream.KeyValue, error) {
	kv, err := c.JS.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	return c.JS.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
}

func RegisterKVClient(name string, client *KVClient) {
	mu.Lock()
	defer mu.Unlock()
	client.Name = name
	kvInstances[name] = client
}

func GetKVClient(name string) (*KVClient, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := kvInstances[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("KVClient not found, name:%s", name)
}

func (c *KVClient) Close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}
