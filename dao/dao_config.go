package dao

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/featuredb"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/igraph"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/natskv"
	fsredis "github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/redis"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/sqldb"
	fstablestore "github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/tablestore"
)

type DaoConfig struct {
	DatasourceType string `env:"FEATURESTORE_DATASOURCE_TYPE" envDefault:"memory"`
	DatasourceName string `env:"FEATURESTORE_DATASOURCE_NAME" envDefault:"default"`

	// redis
	RedisAddr     string `env:"FEATURESTORE_REDIS_ADDR"`
	RedisPassword string `env:"FEATURESTORE_REDIS_PASSWORD"`
	RedisDB       int    `env:"FEATURESTORE_REDIS_DB" envDefault:"0"`

	// mysql, hologres, sqlite
	DSN string `env:"FEATURESTORE_SQL_DSN"`

	// tablestore
	TableStoreEndpoint string `env:"FEATURESTORE_TABLESTORE_ENDPOINT"`
	TableStoreInstance string `env:"FEATURESTORE_TABLESTORE_INSTANCE"`
	AccessKeyId        string `env:"ALIBABA_CLOUD_ACCESS_KEY_ID"`
	AccessKeySecret    string `env:"ALIBABA_CLOUD_ACCESS_KEY_SECRET"`

	// igraph, the client itself is registered by the caller
	IGraphGroupName string `env:"FEATURESTORE_IGRAPH_GROUP"`

	// featuredb
	FeatureDBAddress  string `env:"FEATURESTORE_FEATUREDB_ADDRESS"`
	FeatureDBToken    string `env:"FEATURESTORE_FEATUREDB_TOKEN"`
	FeatureDBUsername string `env:"FEATUREDB_USERNAME"`
	FeatureDBPassword string `env:"FEATUREDB_PASSWORD"`
	FeatureDBDatabase string `env:"FEATURESTORE_FEATUREDB_DATABASE"`

	// natskv
	NatsURL string `env:"FEATURESTORE_NATS_URL"`
}

func LoadDaoConfig() (DaoConfig, error) {
	var cfg DaoConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse datasource config: %w", err)
	}
	return cfg, nil
}

// NewOnlineStore builds the store for config.DatasourceType. Clients not
// described by the config must already be registered under DatasourceName.
func NewOnlineStore(ctx context.Context, config DaoConfig) (OnlineStore, error) {
	switch config.DatasourceType {
	case constants.Datasource_Type_Memory:
		return NewMemoryOnlineStore(), nil

	case constants.Datasource_Type_Redis:
		if config.RedisAddr != "" {
			client := fsredis.NewRedisClient(config.RedisAddr, config.RedisPassword, config.RedisDB)
			if err := fsredis.RegisterRedisClient(ctx, config.DatasourceName, client); err != nil {
				return nil, err
			}
		}
		client, err := fsredis.GetRedisClient(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewRedisOnlineStore(client.GetClient()), nil

	case constants.Datasource_Type_Mysql, constants.Datasource_Type_Hologres, constants.Datasource_Type_Sqlite:
		if config.DSN != "" {
			if err := sqldb.RegisterSQLDB(config.DatasourceName, config.DatasourceType, config.DSN); err != nil {
				return nil, err
			}
		}
		db, err := sqldb.GetSQLDB(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewSQLOnlineStore(db.DB, config.DatasourceType)

	case constants.Datasource_Type_TableStore:
		if config.TableStoreEndpoint != "" {
			client := fstablestore.NewTableStoreClient(config.TableStoreEndpoint, config.TableStoreInstance, config.AccessKeyId, config.AccessKeySecret)
			fstablestore.RegisterTableStoreClient(config.DatasourceName, client)
		}
		client, err := fstablestore.GetTableStoreClient(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewTableStoreOnlineStore(client.GetClient()), nil

	case constants.Datasource_Type_IGraph:
		client, err := igraph.GetGraphClient(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewIGraphOnlineStore(client.GraphClient, config.IGraphGroupName), nil

	case constants.Datasource_Type_FeatureDB:
		if config.FeatureDBAddress != "" {
			signature := featuredb.Signature(config.FeatureDBUsername, config.FeatureDBPassword)
			featuredb.RegisterFeatureDBClient(config.DatasourceName, featuredb.NewFeatureDBClient(config.FeatureDBAddress, config.FeatureDBToken, signature))
		}
		client, err := featuredb.GetFeatureDBClient(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewFeatureDBOnlineStore(client, config.FeatureDBDatabase)

	case constants.Datasource_Type_NatsKV:
		if config.NatsURL != "" {
			client, err := natskv.Connect(config.NatsURL)
			if err != nil {
				return nil, err
			}
			natskv.RegisterKVClient(config.DatasourceName, client)
		}
		client, err := natskv.GetKVClient(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewNatsKVOnlineStore(client), nil
	}

	return nil, fmt.Errorf("not supported datasource type: %s", config.DatasourceType)
}
