package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.Equal(t, time.UTC, e.GetCreatedAt().Location())
	assert.Equal(t, e.GetCreatedAt(), e.GetUpdatedAt())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	created := e.GetCreatedAt()
	before := e.GetUpdatedAt()

	time.Sleep(time.Millisecond)
	e.Touch()

	assert.True(t, e.GetUpdatedAt().After(before))
	assert.Equal(t, created, e.GetCreatedAt())
	assert.Equal(t, time.UTC, e.GetUpdatedAt().Location())
}
