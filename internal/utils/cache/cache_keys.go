package cache

import "fmt"

type EntityType string

const (
	EntityUser           EntityType = "user"
	EntityOperationType  EntityType = "optype"
	EntityActiveContract EntityType = "contract:active"
	EntityPaymentMethod  EntityType = "paymethod"
)

type KeyType string

const (
	KeyID      KeyType = "id"
	KeyCode    KeyType = "code"
	KeyPartner KeyType = "partner"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}
