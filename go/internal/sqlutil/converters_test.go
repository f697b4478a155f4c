package sqlutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullConverters(t *testing.T) {
	assert.False(t, ToNullInt64(nil).Valid)
	id := int64(42)
	assert.Equal(t, sql.NullInt64{Int64: 42, Valid: true}, ToNullInt64(&id))
	assert.Nil(t, FromNullInt64(sql.NullInt64{}))
	require.NotNil(t, FromNullInt64(sql.NullInt64{Int64: 7, Valid: true}))
	assert.Equal(t, int64(7), *FromNullInt64(sql.NullInt64{Int64: 7, Valid: true}))

	u := uuid.New()
	assert.Equal(t, uuid.NullUUID{UUID: u, Valid: true}, ToNullUUID(&u))
	assert.Nil(t, FromNullUUID(uuid.NullUUID{}))
	assert.Equal(t, u, *FromNullUUID(uuid.NullUUID{UUID: u, Valid: true}))

	now := time.Now()
	assert.Equal(t, now, *FromSqlTime(sql.NullTime{Time: now, Valid: true}))
	assert.Nil(t, FromSqlTime(sql.NullTime{}))

	msg := "boom"
	assert.Equal(t, "boom", *FromSqlStringPtr(ToSqlString(&msg)))
	assert.Nil(t, FromSqlStringPtr(ToSqlString(nil)))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert contract: %w", &pq.Error{Code: "23505", Constraint: "contract_one_active_per_player"})
	constraint, ok := IsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "contract_one_active_per_player", constraint)

	_, ok = IsUniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)

	_, ok = IsUniqueViolation(sql.ErrNoRows)
	assert.False(t, ok)
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", sql.ErrNoRows)))
}
