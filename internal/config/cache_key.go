package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LearnerSessionKey returns the cache key holding a learner's active token id.
func (r *CacheKeyStruct) LearnerSessionKey(learnerID string) string {
	return fmt.Sprintf("login:learner:%s", learnerID)
}

// AdminSessionKey returns the cache key holding an admin's active token id.
func (r *CacheKeyStruct) AdminSessionKey(adminID int) string {
	return fmt.Sprintf("login:admin:%d", adminID)
}

// ExamDefinitionKey returns the cache key for a full exam definition.
func (r *CacheKeyStruct) ExamDefinitionKey(examID string) string {
	return fmt.Sprintf("exam:%s:definition", examID)
}

var CacheKey = NewCacheKeyStruct()
