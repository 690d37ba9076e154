package api

import (
	"errors"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	paifeaturestore "github.com/alibabacloud-go/paifeaturestore-20230621/v4/client"
	"github.com/alibabacloud-go/tea/tea"
)

const pageSize = 100

type APIClient struct {
	client     *paifeaturestore.Client
	instanceId string
	cfg        *Configuration
}

func NewAPIClient(cfg *Configuration) (*APIClient, error) {
	if cfg.InstanceId == "" {
		return nil, errors.New("featurestore instance id is empty")
	}
	config := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyId),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		RegionId:        tea.String(cfg.RegionId),
		Endpoint:        tea.String(cfg.GetDomain()),
	}
	if cfg.Token != "" {
		config.SecurityToken = tea.String(cfg.Token)
	}

	client, err := paifeaturestore.NewClient(config)
	if err != nil {
		return nil, err
	}
	return &APIClient{client: client, instanceId: cfg.InstanceId, cfg: cfg}, nil
}

func (c *APIClient) GetConfig() *Configuration {
	return c.cfg
}
