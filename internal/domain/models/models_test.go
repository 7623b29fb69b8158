package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())

	assert.Equal(t, "管理者", RoleAdmin.Label())
	assert.Equal(t, "志愿者", RoleUser.Label())
	assert.Equal(t, "志愿者", Role("").Label())
}

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("%s: %w", "op", NewConflictError("用户ID已存在"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, errors.Is(err, ErrValidation))

	msg, ok := MessageOf(err)
	require.True(t, ok)
	assert.Equal(t, "用户ID已存在", msg)

	_, ok = MessageOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestFormatTime(t *testing.T) {
	SetLocation(time.UTC)
	defer SetLocation(time.Local)

	ts := time.Date(2024, time.March, 7, 9, 5, 1, 0, time.UTC)
	assert.Equal(t, "2024/3/7 09:05:01", FormatTime(ts))
}

func TestNewImage(t *testing.T) {
	img := NewImage("cat.png", "1-2-cat.png", "/uploads/", "Alice", "image/png", 42, time.Now())

	assert.NotEqual(t, uuid.Nil, img.ID)
	assert.Equal(t, "/uploads/1-2-cat.png", img.URL)
	assert.Equal(t, "Alice", img.UploadedBy)
	require.NoError(t, img.Validate())
}

func TestImage_Validate(t *testing.T) {
	img := &Image{MimeType: "text/plain", Size: -1}

	err := img.Validate()
	require.Error(t, err)

	var verr *ImageValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 5)
}
