package domain

import "github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"

type Entity struct {
	Name      string
	JoinKey   string
	ValueType constants.FSType
}

// DummyEntity keys tables that declare no entity at all.
var DummyEntity = Entity{
	Name:      constants.DummyEntityName,
	JoinKey:   constants.DummyEntityId,
	ValueType: constants.FS_STRING,
}

func (e *Entity) IsDummy() bool {
	return e.Name == constants.DummyEntityName
}
