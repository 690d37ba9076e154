package featuredb

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

type FeatureDBClient struct {
	Client    *http.Client
	Address   string
	Token     string
	Signature string
}

var (
	mu                 sync.RWMutex
	featureDBInstances = make(map[string]*FeatureDBClient)
)

func NewFeatureDBClient(address, token, signature string) *FeatureDBClient {
	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1000,
			MaxIdleConns:        1000,
			MaxIdleConnsPerHost: 1000,
			DialContext: (&net.Dialer{
				Timeout: 500 * time.Millisecond,
			}).DialContext,
		},
	}
	return &FeatureDBClient{
		Client:    client,
		Address:   address,
		Token:     token,
		Signature: signature,
	}
}

// Signature builds the basic auth signature sent in the Auth header.
func Signature(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

func RegisterFeatureDBClient(name string, client *FeatureDBClient) {
	mu.Lock()
	defer mu.Unlock()
	featureDBInstances[name] = client
}

func GetFeatureDBClient(name string) (*FeatureDBClient, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := featureDBInstances[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("FeatureDB has not been provisioned, name:%s", name)
}
