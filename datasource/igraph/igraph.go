package igraph

import (
	"fmt"
	"sync"

	aligraph "github.com/aliyun/aliyun-igraph-go-sdk"
)

type GraphClient struct {
	Name        string
	GraphClient *aligraph.Client
}

var (
	mu              sync.RWMutex
	graphInstances = make(map[string]*GraphClient)
)

func RegisterGraphClient(name string, client *aligraph.Client) {
	mu.Lock()
	defer mu.Unlock()
	graphInstances[name] = &GraphClient{Name: name, GraphClient: client}
}

func GetGraphClient(name string) (*GraphClient, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := graphInstances[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("GraphClient not found, name:%s", name)
}
