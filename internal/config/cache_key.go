package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active session JTI.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// CourseMonitorChannel returns the Redis PubSub channel name for a course's
// enrollment monitor stream.
func (r *CacheKeyStruct) CourseMonitorChannel(courseID int) string {
	return fmt.Sprintf("course:%d:monitor", courseID)
}

var CacheKey = NewCacheKeyStruct()
