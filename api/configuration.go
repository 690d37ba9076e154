package api

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Configuration struct {
	RegionId        string `env:"ALIBABA_CLOUD_REGION_ID" envDefault:"cn-beijing"`
	AccessKeyId     string `env:"ALIBABA_CLOUD_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ALIBABA_CLOUD_ACCESS_KEY_SECRET"`
	Token           string `env:"ALIBABA_CLOUD_SECURITY_TOKEN"`
	InstanceId      string `env:"FEATURESTORE_INSTANCE_ID"`
	// ProjectIds maps project names to ids and skips the ListProjects lookup.
	ProjectIds map[string]string `env:"FEATURESTORE_PROJECT_IDS"`
	Domain     string            `env:"FEATURESTORE_DOMAIN"`
}

func NewConfiguration(regionId, accessKeyId, accessKeySecret, token, instanceId string) *Configuration {
	cfg := &Configuration{
		RegionId:        regionId,
		AccessKeyId:     accessKeyId,
		AccessKeySecret: accessKeySecret,
		Token:           token,
		InstanceId:      instanceId,
	}
	return cfg
}

// LoadConfiguration reads the configuration from the environment.
func LoadConfiguration() (*Configuration, error) {
	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse featurestore api config: %w", err)
	}
	return cfg, nil
}

func (c *Configuration) SetDomain(domain string) {
	c.Domain = domain
}

func (c *Configuration) GetDomain() string {
	if c.Domain == "" {
		c.Domain = fmt.Sprintf("paifeaturestore-vpc.%s.aliyuncs.com", c.RegionId)
	}

	return c.Domain
}
