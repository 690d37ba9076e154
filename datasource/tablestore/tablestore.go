package tablestore

import (
	"fmt"
	"sync"

	"github.com/aliyun/aliyun-tablestore-go-sdk/tablestore"
)

type TableStoreClient struct {
	client *tablestore.TableStoreClient
}

var (
	mu                  sync.RWMutex
	tablestoreInstances = make(map[string]*TableStoreClient)
)

func NewTableStoreClient(endpoint, instanceName, accessKeyId, accessKeySecret string) *tablestore.TableStoreClient {
	return tablestore.NewClient(endpoint, instanceName, accessKeyId, accessKeySecret)
}

// RegisterTableStoreClient keeps the first client registered under name.
func RegisterTableStoreClient(name string, client *tablestore.TableStoreClient) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := tablestoreInstances[name]; !ok {
		tablestoreInstances[name] = &TableStoreClient{client: client}
	}
}

func GetTableStoreClient(name string) (*TableStoreClient, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := tablestoreInstances[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("TableStoreClient not found, name:%s", name)
}

func (o *TableStoreClient) GetClient() *tablestore.TableStoreClient {
	return o.client
}
